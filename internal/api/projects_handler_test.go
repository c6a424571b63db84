package api

import (
	"net/http"
	"testing"
)

type projectPayload struct {
	ID               uint     `json:"id"`
	Title            string   `json:"title"`
	Slug             string   `json:"slug"`
	ShortDescription string   `json:"shortDescription"`
	TechStack        []string `json:"techStack"`
	ProjectType      string   `json:"projectType"`
	IsFeatured       bool     `json:"isFeatured"`
	IsOngoing        bool     `json:"isOngoing"`
	Order            int      `json:"order"`
}

func createProject(t *testing.T, env *testEnv, token string, body map[string]any) projectPayload {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/admin/projects", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create project status = %d, body %s", w.Code, w.Body.String())
	}
	var project projectPayload
	decodeBody(t, w, &project)
	return project
}

func TestProjectCreateAndPublicRead(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedAdmin(t, "admin@example.com", "pw")
	token := env.adminToken(t, admin.ID)

	created := createProject(t, env, token, map[string]any{
		"title":      "Portfolio Site",
		"slug":       "portfolio-site",
		"techStack":  []string{"Go", "Postgres"},
		"startDate":  "2024-01-15",
		"isFeatured": true,
	})
	if created.Slug != "portfolio-site" {
		t.Fatalf("slug = %q", created.Slug)
	}
	if len(created.TechStack) != 2 {
		t.Fatalf("techStack = %+v", created.TechStack)
	}

	w := env.do(t, http.MethodGet, "/api/projects/portfolio-site", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("public get status = %d, body %s", w.Code, w.Body.String())
	}
	var fetched projectPayload
	decodeBody(t, w, &fetched)
	if fetched.ID != created.ID || fetched.Title != "Portfolio Site" {
		t.Fatalf("unexpected project: %+v", fetched)
	}

	missing := env.do(t, http.MethodGet, "/api/projects/nope", "", nil)
	if missing.Code != http.StatusNotFound {
		t.Fatalf("unknown slug status = %d, want 404", missing.Code)
	}
}

func TestProjectSlugUniqueness(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedAdmin(t, "admin@example.com", "pw")
	token := env.adminToken(t, admin.ID)

	createProject(t, env, token, map[string]any{
		"title":     "First",
		"slug":      "shared-slug",
		"startDate": "2024-01-01",
	})

	w := env.do(t, http.MethodPost, "/api/admin/projects", token, map[string]any{
		"title":     "Second",
		"slug":      "shared-slug",
		"startDate": "2024-02-01",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate slug status = %d, want 400, body %s", w.Code, w.Body.String())
	}

	// 重复创建不应留下第二条记录。
	list := env.do(t, http.MethodGet, "/api/projects", "", nil)
	var projects []projectPayload
	decodeBody(t, list, &projects)
	if len(projects) != 1 {
		t.Fatalf("len = %d, want 1", len(projects))
	}
}

func TestProjectInvalidInput(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedAdmin(t, "admin@example.com", "pw")
	token := env.adminToken(t, admin.ID)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"slug": "x", "startDate": "2024-01-01"}},
		{"slug with slash", map[string]any{"title": "X", "slug": "a/b", "startDate": "2024-01-01"}},
		{"bad date", map[string]any{"title": "X", "slug": "x", "startDate": "January 1st"}},
		{"bad project type", map[string]any{"title": "X", "slug": "x", "startDate": "2024-01-01", "projectType": "hobby"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/admin/projects", token, tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestProjectUpdateAndFeaturedFilter(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedAdmin(t, "admin@example.com", "pw")
	token := env.adminToken(t, admin.ID)

	plain := createProject(t, env, token, map[string]any{
		"title":     "Plain",
		"slug":      "plain",
		"startDate": "2024-01-01",
	})
	createProject(t, env, token, map[string]any{
		"title":      "Starred",
		"slug":       "starred",
		"startDate":  "2024-02-01",
		"isFeatured": true,
	})

	w := env.do(t, http.MethodPut, "/api/admin/projects/"+itoa(plain.ID), token, map[string]any{
		"title":      "Plain v2",
		"isFeatured": true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", w.Code, w.Body.String())
	}
	var updated projectPayload
	decodeBody(t, w, &updated)
	if updated.Title != "Plain v2" || !updated.IsFeatured {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if updated.Slug != "plain" {
		t.Fatalf("slug should be untouched, got %q", updated.Slug)
	}

	featured := env.do(t, http.MethodGet, "/api/projects?featured=true", "", nil)
	var projects []projectPayload
	decodeBody(t, featured, &projects)
	if len(projects) != 2 {
		t.Fatalf("featured len = %d, want 2", len(projects))
	}
	for _, p := range projects {
		if !p.IsFeatured {
			t.Fatalf("non-featured project leaked into filter: %+v", p)
		}
	}
}

func TestProjectDeleteIsIdempotentAndFreesSlug(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedAdmin(t, "admin@example.com", "pw")
	token := env.adminToken(t, admin.ID)

	project := createProject(t, env, token, map[string]any{
		"title":     "Doomed",
		"slug":      "doomed",
		"startDate": "2024-01-01",
	})

	for i := 0; i < 2; i++ {
		w := env.do(t, http.MethodDelete, "/api/admin/projects/"+itoa(project.ID), token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("delete status = %d, body %s", w.Code, w.Body.String())
		}
	}

	// 硬删除后 slug 可复用。
	createProject(t, env, token, map[string]any{
		"title":     "Reborn",
		"slug":      "doomed",
		"startDate": "2024-03-01",
	})
}
