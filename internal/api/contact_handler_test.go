package api

import (
	"errors"
	"net/http"
	"testing"

	"devfolio/internal/mailer"
)

type contactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func TestContactFormSendsSingleMail(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/send-email", "", map[string]string{
		"name":    "  Visitor  ",
		"email":   "visitor@example.com",
		"message": "Hello there",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp contactResponse
	decodeBody(t, w, &resp)
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}

	if len(env.mailer.sent) != 1 {
		t.Fatalf("sent = %d mails, want 1", len(env.mailer.sent))
	}
	mail := env.mailer.sent[0]
	if mail.name != "Visitor" {
		t.Fatalf("name = %q, want trimmed", mail.name)
	}
	if mail.email != "visitor@example.com" || mail.message != "Hello there" {
		t.Fatalf("unexpected mail: %+v", mail)
	}
}

func TestContactFormValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name    string
		body    map[string]string
		message string
	}{
		{
			"missing message",
			map[string]string{"name": "V", "email": "v@example.com"},
			"All fields (name, email, message) are required",
		},
		{
			"blank name",
			map[string]string{"name": "   ", "email": "v@example.com", "message": "hi"},
			"All fields (name, email, message) are required",
		},
		{
			"invalid email",
			map[string]string{"name": "V", "email": "not-an-email", "message": "hi"},
			"Please enter a valid email address",
		},
		{
			"email without dot",
			map[string]string{"name": "V", "email": "v@localhost", "message": "hi"},
			"Please enter a valid email address",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/send-email", "", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body %s", w.Code, w.Body.String())
			}
			var resp contactResponse
			decodeBody(t, w, &resp)
			if resp.Success || resp.Message != tc.message {
				t.Fatalf("unexpected reply: %+v", resp)
			}
		})
	}

	if len(env.mailer.sent) != 0 {
		t.Fatalf("validation failures must not send mail, sent %d", len(env.mailer.sent))
	}
}

func TestContactFormDeliveryFailureMessages(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		message string
	}{
		{"auth", mailer.ErrAuth, "Email authentication failed. Please contact directly via email."},
		{"network", mailer.ErrNetwork, "Network error. Please check your connection and try again."},
		{"timeout", mailer.ErrTimeout, "Request timeout. Please try again."},
		{"other", errors.New("boom"), "Failed to send email. Please try again later."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.mailer.err = tc.err

			w := env.do(t, http.MethodPost, "/api/send-email", "", map[string]string{
				"name":    "V",
				"email":   "v@example.com",
				"message": "hi",
			})
			if w.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, want 500", w.Code)
			}
			var resp contactResponse
			decodeBody(t, w, &resp)
			if resp.Success || resp.Message != tc.message {
				t.Fatalf("unexpected reply: %+v", resp)
			}
		})
	}
}
