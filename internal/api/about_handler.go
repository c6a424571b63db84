package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"devfolio/internal/api/middleware"
	"devfolio/internal/content"
	"devfolio/internal/database"
)

// AboutHandler 负责 About 单例区块的读写。
type AboutHandler struct {
	db *gorm.DB
}

// NewAboutHandler 构造 AboutHandler。
func NewAboutHandler(db *gorm.DB) *AboutHandler {
	return &AboutHandler{db: db}
}

type aboutUpdateRequest struct {
	Name              *string               `json:"name"`
	Headline          *string               `json:"headline"`
	ShortSummary      *string               `json:"shortSummary"`
	LongDescription   *string               `json:"longDescription"`
	Location          *string               `json:"location"`
	YearsOfExperience *int                  `json:"yearsOfExperience"`
	ProfilePhotoURL   *string               `json:"profilePhotoUrl"`
	ResumeFileURL     *string               `json:"resumeFileUrl"`
	SocialLinks       *[]content.SocialLink `json:"socialLinks"`
}

type aboutResponse struct {
	ID                uint           `json:"id"`
	Name              string         `json:"name"`
	Headline          string         `json:"headline"`
	ShortSummary      string         `json:"shortSummary"`
	LongDescription   string         `json:"longDescription"`
	Location          string         `json:"location"`
	YearsOfExperience int            `json:"yearsOfExperience"`
	ProfilePhotoURL   string         `json:"profilePhotoUrl"`
	ResumeFileURL     string         `json:"resumeFileUrl"`
	SocialLinks       datatypes.JSON `json:"socialLinks"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

func newAboutResponse(about database.AboutSection) aboutResponse {
	return aboutResponse{
		ID:                about.ID,
		Name:              about.Name,
		Headline:          about.Headline,
		ShortSummary:      about.ShortSummary,
		LongDescription:   about.LongDescription,
		Location:          about.Location,
		YearsOfExperience: about.YearsOfExperience,
		ProfilePhotoURL:   about.ProfilePhotoURL,
		ResumeFileURL:     about.ResumeFileURL,
		SocialLinks:       rawOrEmptyArray(about.SocialLinks),
		UpdatedAt:         about.UpdatedAt,
	}
}

// GetForAdmin 返回 About 记录；尚未配置时返回空对象而不是 404，方便后台表单初始化。
func (h *AboutHandler) GetForAdmin(c *gin.Context) {
	var about database.AboutSection
	err := h.db.WithContext(c.Request.Context()).First(&about, database.AboutSectionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{})
			return
		}
		middleware.LoggerFromContext(c).Error("load about failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, newAboutResponse(about))
}

// Update 对 About 单例执行 upsert：不存在则以固定主键创建，存在则覆盖提交的字段。
func (h *AboutHandler) Update(c *gin.Context) {
	var req aboutUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if req.SocialLinks != nil {
		for _, link := range *req.SocialLinks {
			if !content.ValidSocialLinkType(link.Type) {
				BadRequest(c, "invalid social link type: "+link.Type)
				return
			}
			if link.Label == "" || link.URL == "" {
				BadRequest(c, "social link label and url are required")
				return
			}
		}
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	var about database.AboutSection
	err := h.db.WithContext(ctx).First(&about, database.AboutSectionID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		about = database.AboutSection{Model: gorm.Model{ID: database.AboutSectionID}}
		about.SocialLinks = emptyJSONArray()
	case err != nil:
		logger.Error("load about failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	if req.Name != nil {
		about.Name = *req.Name
	}
	if req.Headline != nil {
		about.Headline = *req.Headline
	}
	if req.ShortSummary != nil {
		about.ShortSummary = *req.ShortSummary
	}
	if req.LongDescription != nil {
		about.LongDescription = *req.LongDescription
	}
	if req.Location != nil {
		about.Location = *req.Location
	}
	if req.YearsOfExperience != nil {
		about.YearsOfExperience = *req.YearsOfExperience
	}
	if req.ProfilePhotoURL != nil {
		about.ProfilePhotoURL = *req.ProfilePhotoURL
	}
	if req.ResumeFileURL != nil {
		about.ResumeFileURL = *req.ResumeFileURL
	}
	if req.SocialLinks != nil {
		about.SocialLinks = toJSON(*req.SocialLinks)
	}

	if err := h.db.WithContext(ctx).Save(&about).Error; err != nil {
		logger.Error("save about failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, newAboutResponse(about))
}
