package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"devfolio/internal/api/middleware"
	"devfolio/internal/content"
	"devfolio/internal/database"
)

// ProjectsHandler 负责项目的增删改查。
type ProjectsHandler struct {
	db *gorm.DB
}

// NewProjectsHandler 构造 ProjectsHandler。
func NewProjectsHandler(db *gorm.DB) *ProjectsHandler {
	return &ProjectsHandler{db: db}
}

type createProjectRequest struct {
	Title             string                 `json:"title" binding:"required"`
	Slug              string                 `json:"slug" binding:"required"`
	ShortDescription  string                 `json:"shortDescription"`
	TechStack         []string               `json:"techStack"`
	Role              string                 `json:"role"`
	ProjectType       string                 `json:"projectType"`
	StartDate         string                 `json:"startDate" binding:"required"`
	EndDate           *string                `json:"endDate"`
	IsOngoing         bool                   `json:"isOngoing"`
	ThumbnailImageURL string                 `json:"thumbnailImageUrl"`
	LiveURL           string                 `json:"liveUrl"`
	GithubURL         string                 `json:"githubUrl"`
	IsFeatured        bool                   `json:"isFeatured"`
	Order             int                    `json:"order"`
	Detail            *content.ProjectDetail `json:"detail"`
}

type updateProjectRequest struct {
	Title             *string                `json:"title"`
	Slug              *string                `json:"slug"`
	ShortDescription  *string                `json:"shortDescription"`
	TechStack         *[]string              `json:"techStack"`
	Role              *string                `json:"role"`
	ProjectType       *string                `json:"projectType"`
	StartDate         *string                `json:"startDate"`
	EndDate           *string                `json:"endDate"`
	IsOngoing         *bool                  `json:"isOngoing"`
	ThumbnailImageURL *string                `json:"thumbnailImageUrl"`
	LiveURL           *string                `json:"liveUrl"`
	GithubURL         *string                `json:"githubUrl"`
	IsFeatured        *bool                  `json:"isFeatured"`
	Order             *int                   `json:"order"`
	Detail            *content.ProjectDetail `json:"detail"`
}

type projectResponse struct {
	ID                uint           `json:"id"`
	Title             string         `json:"title"`
	Slug              string         `json:"slug"`
	ShortDescription  string         `json:"shortDescription"`
	TechStack         datatypes.JSON `json:"techStack"`
	Role              string         `json:"role"`
	ProjectType       string         `json:"projectType"`
	StartDate         time.Time      `json:"startDate"`
	EndDate           *time.Time     `json:"endDate,omitempty"`
	IsOngoing         bool           `json:"isOngoing"`
	ThumbnailImageURL string         `json:"thumbnailImageUrl"`
	LiveURL           string         `json:"liveUrl,omitempty"`
	GithubURL         string         `json:"githubUrl,omitempty"`
	IsFeatured        bool           `json:"isFeatured"`
	Order             int            `json:"order"`
	Detail            datatypes.JSON `json:"detail,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

func newProjectResponse(project database.Project) projectResponse {
	return projectResponse{
		ID:                project.ID,
		Title:             project.Title,
		Slug:              project.Slug,
		ShortDescription:  project.ShortDescription,
		TechStack:         rawOrEmptyArray(project.TechStack),
		Role:              project.Role,
		ProjectType:       project.ProjectType,
		StartDate:         project.StartDate,
		EndDate:           project.EndDate,
		IsOngoing:         project.IsOngoing,
		ThumbnailImageURL: project.ThumbnailImageURL,
		LiveURL:           project.LiveURL,
		GithubURL:         project.GithubURL,
		IsFeatured:        project.IsFeatured,
		Order:             project.Order,
		Detail:            project.Detail,
		CreatedAt:         project.CreatedAt,
		UpdatedAt:         project.UpdatedAt,
	}
}

// validSlug 要求 slug 是 URL 安全的小写片段。
func validSlug(slug string) bool {
	if slug == "" {
		return false
	}
	if escaped := url.PathEscape(slug); escaped != slug {
		return false
	}
	return !strings.Contains(slug, "/")
}

// List 返回全部项目，按展示顺序升序、创建时间降序排列。
func (h *ProjectsHandler) List(c *gin.Context) {
	var projects []database.Project
	if err := h.db.WithContext(c.Request.Context()).
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

// Create 新建项目，slug 全局唯一。
func (h *ProjectsHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "title, slug and start date are required")
		return
	}

	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !validSlug(slug) {
		BadRequest(c, "slug must be a url safe path segment")
		return
	}

	projectType := req.ProjectType
	if projectType == "" {
		projectType = "personal"
	}
	if !content.ValidProjectType(projectType) {
		BadRequest(c, "invalid project type: "+projectType)
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

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	var existing database.Project
	if err := h.db.WithContext(ctx).Where("slug = ?", slug).First(&existing).Error; err == nil {
		BadRequest(c, "slug already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("slug lookup failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	project := database.Project{
		Title:             req.Title,
		Slug:              slug,
		ShortDescription:  req.ShortDescription,
		TechStack:         toJSON(stringsOrEmpty(req.TechStack)),
		Role:              req.Role,
		ProjectType:       projectType,
		StartDate:         startDate,
		EndDate:           endDate,
		IsOngoing:         req.IsOngoing,
		ThumbnailImageURL: req.ThumbnailImageURL,
		LiveURL:           req.LiveURL,
		GithubURL:         req.GithubURL,
		IsFeatured:        req.IsFeatured,
		Order:             req.Order,
	}
	if req.Detail != nil {
		project.Detail = toJSON(*req.Detail)
	}

	if err := h.db.WithContext(ctx).Create(&project).Error; err != nil {
		logger.Error("create project failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusCreated, newProjectResponse(project))
}

// Get 返回指定 ID 的项目。
func (h *ProjectsHandler) Get(c *gin.Context) {
	project, err := h.findProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.replyLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, newProjectResponse(*project))
}

// Update 覆盖项目中提交的字段。
func (h *ProjectsHandler) Update(c *gin.Context) {
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	project, err := h.findProject(ctx, c.Param("id"))
	if err != nil {
		h.replyLookupError(c, err)
		return
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Slug != nil {
		slug := strings.ToLower(strings.TrimSpace(*req.Slug))
		if !validSlug(slug) {
			BadRequest(c, "slug must be a url safe path segment")
			return
		}
		if slug != project.Slug {
			var existing database.Project
			if err := h.db.WithContext(ctx).Where("slug = ?", slug).First(&existing).Error; err == nil {
				BadRequest(c, "slug already exists")
				return
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Error("slug lookup failed", slog.Any("error", err))
				Internal(c, "internal error")
				return
			}
		}
		updates["slug"] = slug
	}
	if req.ShortDescription != nil {
		updates["short_description"] = *req.ShortDescription
	}
	if req.TechStack != nil {
		updates["tech_stack"] = toJSON(stringsOrEmpty(*req.TechStack))
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.ProjectType != nil {
		if !content.ValidProjectType(*req.ProjectType) {
			BadRequest(c, "invalid project type: "+*req.ProjectType)
			return
		}
		updates["project_type"] = *req.ProjectType
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
	if req.IsOngoing != nil {
		updates["is_ongoing"] = *req.IsOngoing
	}
	if req.ThumbnailImageURL != nil {
		updates["thumbnail_image_url"] = *req.ThumbnailImageURL
	}
	if req.LiveURL != nil {
		updates["live_url"] = *req.LiveURL
	}
	if req.GithubURL != nil {
		updates["github_url"] = *req.GithubURL
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}
	if req.Order != nil {
		updates["sort_order"] = *req.Order
	}
	if req.Detail != nil {
		updates["detail"] = toJSON(*req.Detail)
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(project).Updates(updates).Error; err != nil {
			logger.Error("update project failed", slog.Any("error", err))
			Internal(c, "internal error")
			return
		}
		if err := h.db.WithContext(ctx).First(project, project.ID).Error; err != nil {
			logger.Error("reload project failed", slog.Any("error", err))
			Internal(c, "internal error")
			return
		}
	}

	c.JSON(http.StatusOK, newProjectResponse(*project))
}

// Delete 删除项目。目标不存在时同样应答成功。
func (h *ProjectsHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c.Param("id"))
	if err != nil {
		BadRequest(c, "invalid project id")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Unscoped().
		Delete(&database.Project{}, id).Error; err != nil {
		middleware.LoggerFromContext(c).Error("delete project failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

func (h *ProjectsHandler) findProject(ctx context.Context, idParam string) (*database.Project, error) {
	id, err := parseIDParam(idParam)
	if err != nil {
		return nil, err
	}

	var project database.Project
	if err := h.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (h *ProjectsHandler) replyLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errInvalidID):
		BadRequest(c, "invalid project id")
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, "project not found")
	default:
		middleware.LoggerFromContext(c).Error("project query failed", slog.Any("error", err))
		Internal(c, "internal error")
	}
}

func stringsOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
