package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"devfolio/internal/api/middleware"
	"devfolio/internal/content"
	"devfolio/internal/database"
)

// SkillsHandler 负责技能分类及其内嵌技能的增删改查。
// 内嵌技能的修改是对父分类的读-改-写，没有独立的事务边界。
type SkillsHandler struct {
	db *gorm.DB
}

// NewSkillsHandler 构造 SkillsHandler。
func NewSkillsHandler(db *gorm.DB) *SkillsHandler {
	return &SkillsHandler{db: db}
}

type createCategoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Order int    `json:"order"`
}

type updateCategoryRequest struct {
	Name  *string `json:"name"`
	Order *int    `json:"order"`
}

type skillRequest struct {
	Label            string `json:"label" binding:"required"`
	Level            string `json:"level"`
	Icon             string `json:"icon"`
	ShowInHighlights bool   `json:"showInHighlights"`
}

type updateSkillRequest struct {
	Label            *string `json:"label"`
	Level            *string `json:"level"`
	Icon             *string `json:"icon"`
	ShowInHighlights *bool   `json:"showInHighlights"`
}

type categoryResponse struct {
	ID        uint           `json:"id"`
	Name      string         `json:"name"`
	Order     int            `json:"order"`
	Skills    datatypes.JSON `json:"skills"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func newCategoryResponse(category database.SkillCategory) categoryResponse {
	return categoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		Order:     category.Order,
		Skills:    rawOrEmptyArray(category.Skills),
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
	}
}

func decodeSkills(raw datatypes.JSON) ([]content.Skill, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []content.Skill{}, nil
	}
	var skills []content.Skill
	if err := json.Unmarshal(raw, &skills); err != nil {
		return nil, fmt.Errorf("decode skills: %w", err)
	}
	return skills, nil
}

// List 返回全部技能分类，按展示顺序排列。
func (h *SkillsHandler) List(c *gin.Context) {
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

// Create 新建技能分类，分类名全局唯一。
func (h *SkillsHandler) Create(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "category name is required")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		BadRequest(c, "category name is required")
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	var existing database.SkillCategory
	if err := h.db.WithContext(ctx).Where("name = ?", name).First(&existing).Error; err == nil {
		BadRequest(c, "category name already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("category lookup failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	category := database.SkillCategory{
		Name:   name,
		Order:  req.Order,
		Skills: emptyJSONArray(),
	}

	if err := h.db.WithContext(ctx).Create(&category).Error; err != nil {
		logger.Error("create category failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusCreated, newCategoryResponse(category))
}

// Update 更新分类名或展示顺序。
func (h *SkillsHandler) Update(c *gin.Context) {
	var req updateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	category, err := h.findCategory(ctx, c.Param("id"))
	if err != nil {
		h.replyLookupError(c, err, logger)
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			BadRequest(c, "category name is required")
			return
		}
		if name != category.Name {
			var existing database.SkillCategory
			if err := h.db.WithContext(ctx).Where("name = ?", name).First(&existing).Error; err == nil {
				BadRequest(c, "category name already exists")
				return
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Error("category lookup failed", slog.Any("error", err))
				Internal(c, "internal error")
				return
			}
		}
		updates["name"] = name
	}
	if req.Order != nil {
		updates["sort_order"] = *req.Order
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(category).Updates(updates).Error; err != nil {
			logger.Error("update category failed", slog.Any("error", err))
			Internal(c, "internal error")
			return
		}
	}

	c.JSON(http.StatusOK, newCategoryResponse(*category))
}

// Delete 删除分类，其内嵌技能一并消失。目标不存在时同样应答成功。
func (h *SkillsHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c.Param("id"))
	if err != nil {
		BadRequest(c, "invalid category id")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Unscoped().
		Delete(&database.SkillCategory{}, id).Error; err != nil {
		middleware.LoggerFromContext(c).Error("delete category failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

// AddSkill 向分类追加一项技能，并为其分配稳定的 ID。
func (h *SkillsHandler) AddSkill(c *gin.Context) {
	var req skillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "skill label is required")
		return
	}

	level := req.Level
	if level == "" {
		level = content.DefaultSkillLevel
	}
	if !content.ValidSkillLevel(level) {
		BadRequest(c, "invalid skill level: "+level)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	category, err := h.findCategory(ctx, c.Param("id"))
	if err != nil {
		h.replyLookupError(c, err, logger)
		return
	}

	skills, err := decodeSkills(category.Skills)
	if err != nil {
		logger.Error("decode skills failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	skills = append(skills, content.Skill{
		ID:               uuid.NewString(),
		Label:            req.Label,
		Level:            level,
		Icon:             req.Icon,
		ShowInHighlights: req.ShowInHighlights,
	})

	if err := h.saveSkills(ctx, category, skills); err != nil {
		logger.Error("save skills failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusCreated, newCategoryResponse(*category))
}

// UpdateSkill 更新分类内指定技能的字段。
func (h *SkillsHandler) UpdateSkill(c *gin.Context) {
	var req updateSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if req.Level != nil && !content.ValidSkillLevel(*req.Level) {
		BadRequest(c, "invalid skill level: "+*req.Level)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	category, err := h.findCategory(ctx, c.Param("id"))
	if err != nil {
		h.replyLookupError(c, err, logger)
		return
	}

	skills, err := decodeSkills(category.Skills)
	if err != nil {
		logger.Error("decode skills failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	skillID := c.Param("skillId")
	found := false
	for i := range skills {
		if skills[i].ID != skillID {
			continue
		}
		if req.Label != nil {
			skills[i].Label = *req.Label
		}
		if req.Level != nil {
			skills[i].Level = *req.Level
		}
		if req.Icon != nil {
			skills[i].Icon = *req.Icon
		}
		if req.ShowInHighlights != nil {
			skills[i].ShowInHighlights = *req.ShowInHighlights
		}
		found = true
		break
	}
	if !found {
		NotFound(c, "skill not found")
		return
	}

	if err := h.saveSkills(ctx, category, skills); err != nil {
		logger.Error("save skills failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, newCategoryResponse(*category))
}

// DeleteSkill 从分类中移除技能；技能不存在时视为成功（幂等）。
func (h *SkillsHandler) DeleteSkill(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	category, err := h.findCategory(ctx, c.Param("id"))
	if err != nil {
		h.replyLookupError(c, err, logger)
		return
	}

	skills, err := decodeSkills(category.Skills)
	if err != nil {
		logger.Error("decode skills failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	skillID := c.Param("skillId")
	filtered := skills[:0]
	for _, skill := range skills {
		if skill.ID != skillID {
			filtered = append(filtered, skill)
		}
	}

	if err := h.saveSkills(ctx, category, filtered); err != nil {
		logger.Error("save skills failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, newCategoryResponse(*category))
}

func (h *SkillsHandler) findCategory(ctx context.Context, idParam string) (*database.SkillCategory, error) {
	id, err := parseIDParam(idParam)
	if err != nil {
		return nil, err
	}

	var category database.SkillCategory
	if err := h.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (h *SkillsHandler) saveSkills(ctx context.Context, category *database.SkillCategory, skills []content.Skill) error {
	category.Skills = toJSON(skills)
	return h.db.WithContext(ctx).Model(category).Update("skills", category.Skills).Error
}

func (h *SkillsHandler) replyLookupError(c *gin.Context, err error, logger *slog.Logger) {
	switch {
	case errors.Is(err, errInvalidID):
		BadRequest(c, "invalid category id")
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, "category not found")
	default:
		logger.Error("category query failed", slog.Any("error", err))
		Internal(c, "internal error")
	}
}
