package api

import (
	"context"
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

// ExperienceHandler 负责工作经历的增删改查。
type ExperienceHandler struct {
	db *gorm.DB
}

// NewExperienceHandler 构造 ExperienceHandler。
func NewExperienceHandler(db *gorm.DB) *ExperienceHandler {
	return &ExperienceHandler{db: db}
}

type createExperienceRequest struct {
	CompanyName        string   `json:"companyName" binding:"required"`
	RoleTitle          string   `json:"roleTitle" binding:"required"`
	EmploymentType     string   `json:"employmentType"`
	Location           string   `json:"location"`
	StartDate          string   `json:"startDate" binding:"required"`
	EndDate            *string  `json:"endDate"`
	IsCurrent          bool     `json:"isCurrent"`
	DescriptionBullets []string `json:"descriptionBullets"`
	TechUsed           []string `json:"techUsed"`
	Order              int      `json:"order"`
}

type updateExperienceRequest struct {
	CompanyName        *string   `json:"companyName"`
	RoleTitle          *string   `json:"roleTitle"`
	EmploymentType     *string   `json:"employmentType"`
	Location           *string   `json:"location"`
	StartDate          *string   `json:"startDate"`
	EndDate            *string   `json:"endDate"`
	IsCurrent          *bool     `json:"isCurrent"`
	DescriptionBullets *[]string `json:"descriptionBullets"`
	TechUsed           *[]string `json:"techUsed"`
	Order              *int      `json:"order"`
}

type experienceResponse struct {
	ID                 uint           `json:"id"`
	CompanyName        string         `json:"companyName"`
	RoleTitle          string         `json:"roleTitle"`
	EmploymentType     string         `json:"employmentType"`
	Location           string         `json:"location"`
	StartDate          time.Time      `json:"startDate"`
	EndDate            *time.Time     `json:"endDate,omitempty"`
	IsCurrent          bool           `json:"isCurrent"`
	DescriptionBullets datatypes.JSON `json:"descriptionBullets"`
	TechUsed           datatypes.JSON `json:"techUsed"`
	Order              int            `json:"order"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

func newExperienceResponse(entry database.ExperienceEntry) experienceResponse {
	return experienceResponse{
		ID:                 entry.ID,
		CompanyName:        entry.CompanyName,
		RoleTitle:          entry.RoleTitle,
		EmploymentType:     entry.EmploymentType,
		Location:           entry.Location,
		StartDate:          entry.StartDate,
		EndDate:            entry.EndDate,
		IsCurrent:          entry.IsCurrent,
		DescriptionBullets: rawOrEmptyArray(entry.DescriptionBullets),
		TechUsed:           rawOrEmptyArray(entry.TechUsed),
		Order:              entry.Order,
		CreatedAt:          entry.CreatedAt,
		UpdatedAt:          entry.UpdatedAt,
	}
}

// List 返回全部经历，按展示顺序升序、开始时间降序排列。
func (h *ExperienceHandler) List(c *gin.Context) {
	var entries []database.ExperienceEntry
	if err := h.db.WithContext(c.Request.Context()).
		Order("sort_order ASC, start_date DESC").
		Find(&entries).Error; err != nil {
		middleware.LoggerFromContext(c).Error("list experience failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	items := make([]experienceResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, newExperienceResponse(entry))
	}

	c.JSON(http.StatusOK, items)
}

// Create 新建一段工作经历。
// isCurrent 与 endDate 不做联动校验，两者可以同时出现。
func (h *ExperienceHandler) Create(c *gin.Context) {
	var req createExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "company name, role title and start date are required")
		return
	}

	employmentType := req.EmploymentType
	if employmentType == "" {
		employmentType = "full-time"
	}
	if !content.ValidEmploymentType(employmentType) {
		BadRequest(c, "invalid employment type: "+employmentType)
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		BadRequest(c, "invalid start date")
		return
	}

	var endDate *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		parsed, err := parseDate(*req.EndDate)
		if err != nil {
			BadRequest(c, "invalid end date")
			return
		}
		endDate = &parsed
	}

	entry := database.ExperienceEntry{
		CompanyName:        req.CompanyName,
		RoleTitle:          req.RoleTitle,
		EmploymentType:     employmentType,
		Location:           req.Location,
		StartDate:          startDate,
		EndDate:            endDate,
		IsCurrent:          req.IsCurrent,
		DescriptionBullets: toJSON(stringsOrEmpty(req.DescriptionBullets)),
		TechUsed:           toJSON(stringsOrEmpty(req.TechUsed)),
		Order:              req.Order,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&entry).Error; err != nil {
		middleware.LoggerFromContext(c).Error("create experience failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusCreated, newExperienceResponse(entry))
}

// Get 返回指定 ID 的经历。
func (h *ExperienceHandler) Get(c *gin.Context) {
	entry, err := h.findEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.replyLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, newExperienceResponse(*entry))
}

// Update 覆盖经历中提交的字段。
func (h *ExperienceHandler) Update(c *gin.Context) {
	var req updateExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	entry, err := h.findEntry(ctx, c.Param("id"))
	if err != nil {
		h.replyLookupError(c, err)
		return
	}

	updates := map[string]any{}
	if req.CompanyName != nil {
		updates["company_name"] = *req.CompanyName
	}
	if req.RoleTitle != nil {
		updates["role_title"] = *req.RoleTitle
	}
	if req.EmploymentType != nil {
		if !content.ValidEmploymentType(*req.EmploymentType) {
			BadRequest(c, "invalid employment type: "+*req.EmploymentType)
			return
		}
		updates["employment_type"] = *req.EmploymentType
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.StartDate != nil {
		startDate, err := parseDate(*req.StartDate)
		if err != nil {
			BadRequest(c, "invalid start date")
			return
		}
		updates["start_date"] = startDate
	}
	if req.EndDate != nil {
		if *req.EndDate == "" {
			updates["end_date"] = nil
		} else {
			endDate, err := parseDate(*req.EndDate)
			if err != nil {
				BadRequest(c, "invalid end date")
				return
			}
			updates["end_date"] = endDate
		}
	}
	if req.IsCurrent != nil {
		updates["is_current"] = *req.IsCurrent
	}
	if req.DescriptionBullets != nil {
		updates["description_bullets"] = toJSON(stringsOrEmpty(*req.DescriptionBullets))
	}
	if req.TechUsed != nil {
		updates["tech_used"] = toJSON(stringsOrEmpty(*req.TechUsed))
	}
	if req.Order != nil {
		updates["sort_order"] = *req.Order
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(entry).Updates(updates).Error; err != nil {
			logger.Error("update experience failed", slog.Any("error", err))
			Internal(c, "internal error")
			return
		}
		if err := h.db.WithContext(ctx).First(entry, entry.ID).Error; err != nil {
			logger.Error("reload experience failed", slog.Any("error", err))
			Internal(c, "internal error")
			return
		}
	}

	c.JSON(http.StatusOK, newExperienceResponse(*entry))
}

// Delete 删除经历。目标不存在时同样应答成功。
func (h *ExperienceHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c.Param("id"))
	if err != nil {
		BadRequest(c, "invalid experience id")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Unscoped().
		Delete(&database.ExperienceEntry{}, id).Error; err != nil {
		middleware.LoggerFromContext(c).Error("delete experience failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Experience deleted"})
}

func (h *ExperienceHandler) findEntry(ctx context.Context, idParam string) (*database.ExperienceEntry, error) {
	id, err := parseIDParam(idParam)
	if err != nil {
		return nil, err
	}

	var entry database.ExperienceEntry
	if err := h.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (h *ExperienceHandler) replyLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errInvalidID):
		BadRequest(c, "invalid experience id")
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, "experience not found")
	default:
		middleware.LoggerFromContext(c).Error("experience query failed", slog.Any("error", err))
		Internal(c, "internal error")
	}
}
