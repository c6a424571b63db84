package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"devfolio/internal/api/middleware"
	"devfolio/internal/database"
)

// PublicHandler 暴露站点前台需要的只读投影，不经过鉴权。
type PublicHandler struct {
	db *gorm.DB
}

// NewPublicHandler 构造 PublicHandler。
func NewPublicHandler(db *gorm.DB) *PublicHandler {
	return &PublicHandler{db: db}
}

// GetAbout 返回 About 单例；尚未配置时返回 404。
func (h *PublicHandler) GetAbout(c *gin.Context) {
	var about database.AboutSection
	err := h.db.WithContext(c.Request.Context()).First(&about, database.AboutSectionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "about section not found")
			return
		}
		middleware.LoggerFromContext(c).Error("load about failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, newAboutResponse(about))
}

// GetSkills 返回全部技能分类。
func (h *PublicHandler) GetSkills(c *gin.Context) {
	var categories []database.SkillCategory
	if err := h.db.WithContext(c.Request.Context()).
		Order("sort_order ASC").
		Find(&categories).Error; err != nil {
		middleware.LoggerFromContext(c).Error("list skill categories failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	items := make([]categoryResponse, 0, len(categories))
	for _, category := range categories {
		items = append(items, newCategoryResponse(category))
	}

	c.JSON(http.StatusOK, items)
}

// GetProjects 返回项目列表，featured=true 时仅返回精选项目。
func (h *PublicHandler) GetProjects(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context())
	if c.Query("featured") == "true" {
		query = query.Where("is_featured = ?", true)
	}

	var projects []database.Project
	if err := query.
		Order("sort_order ASC, created_at DESC").
		Find(&projects).Error; err != nil {
		middleware.LoggerFromContext(c).Error("list projects failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	items := make([]projectResponse, 0, len(projects))
	for _, project := range projects {
		items = append(items, newProjectResponse(project))
	}

	c.JSON(http.StatusOK, items)
}

// GetProjectBySlug 按 slug 查找项目，slug 是对外的唯一键。
func (h *PublicHandler) GetProjectBySlug(c *gin.Context) {
	slug := c.Param("slug")

	var project database.Project
	err := h.db.WithContext(c.Request.Context()).Where("slug = ?", slug).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "project not found")
			return
		}
		middleware.LoggerFromContext(c).Error("load project failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, newProjectResponse(project))
}

// GetExperience 返回全部工作经历。
func (h *PublicHandler) GetExperience(c *gin.Context) {
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
