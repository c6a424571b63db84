package api

import (
	"net/http"
	"testing"
)

func TestLoginSuccess(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedAdmin(t, "admin@example.com", "s3cret-pass")

	w := env.do(t, http.MethodPost, "/api/admin/auth/login", "", map[string]string{
		"email":    "Admin@Example.com",
		"password": "s3cret-pass",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID    uint   `json:"id"`
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"user"`
	}
	decodeBody(t, w, &resp)
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	if resp.User.ID != admin.ID || resp.User.Email != "admin@example.com" {
		t.Fatalf("unexpected user summary: %+v", resp.User)
	}

	// 返回的令牌要能通过受保护接口。
	protected := env.do(t, http.MethodGet, "/api/admin/skills", resp.Token, nil)
	if protected.Code != http.StatusOK {
		t.Fatalf("protected status = %d, want 200, body %s", protected.Code, protected.Body.String())
	}
}

func TestLoginUniformFailureMessage(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "admin@example.com", "s3cret-pass")

	cases := []struct {
		name string
		body map[string]string
	}{
		{"unknown email", map[string]string{"email": "nobody@example.com", "password": "s3cret-pass"}},
		{"wrong password", map[string]string{"email": "admin@example.com", "password": "nope"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/admin/auth/login", "", tc.body)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}
			var resp struct {
				Error string `json:"error"`
			}
			decodeBody(t, w, &resp)
			if resp.Error != "invalid email or password" {
				t.Fatalf("error = %q, want uniform message", resp.Error)
			}
		})
	}
}

func TestLoginMissingFields(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/admin/auth/login", "", map[string]string{"email": "admin@example.com"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/admin/auth/logout", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Message string `json:"message"`
	}
	decodeBody(t, w, &resp)
	if resp.Message != "Logged out successfully" {
		t.Fatalf("message = %q", resp.Message)
	}
}
