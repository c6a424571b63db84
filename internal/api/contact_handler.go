package api

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"devfolio/internal/api/middleware"
	"devfolio/internal/mailer"
)

// ContactMailer 抽象联系表单投递，便于测试替换。
type ContactMailer interface {
	SendContactMessage(name, email, message string) error
}

// 简单的邮箱校验：一个 @，域名部分至少一个点。
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ContactHandler 把访客留言同步转发给站点所有者。
// 投递失败即丢失：没有重试，也不落库。
type ContactHandler struct {
	Mailer ContactMailer
	Logger *slog.Logger
}

// NewContactHandler 构造 ContactHandler。
func NewContactHandler(contactMailer ContactMailer, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		Mailer: contactMailer,
		Logger: logger,
	}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func contactReply(c *gin.Context, status int, success bool, message string) {
	c.JSON(status, gin.H{"success": success, "message": message})
}

// SendEmail 校验联系表单并发出通知邮件。
func (h *ContactHandler) SendEmail(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		contactReply(c, http.StatusBadRequest, false, "All fields (name, email, message) are required")
		return
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	message := strings.TrimSpace(req.Message)

	if name == "" || email == "" || message == "" {
		contactReply(c, http.StatusBadRequest, false, "All fields (name, email, message) are required")
		return
	}

	if !emailPattern.MatchString(email) {
		contactReply(c, http.StatusBadRequest, false, "Please enter a valid email address")
		return
	}

	logger := middleware.LoggerFromContext(c)

	if err := h.Mailer.SendContactMessage(name, email, message); err != nil {
		logger.Error("contact mail delivery failed", slog.Any("error", err))
		contactReply(c, http.StatusInternalServerError, false, deliveryFailureMessage(err))
		return
	}

	logger.Info("contact mail delivered", slog.String("reply_to", email))
	contactReply(c, http.StatusOK, true, "Message sent successfully! I'll get back to you soon.")
}

// deliveryFailureMessage 按错误类别挑选面向用户的提示语。
func deliveryFailureMessage(err error) string {
	switch {
	case errors.Is(err, mailer.ErrAuth):
		return "Email authentication failed. Please contact directly via email."
	case errors.Is(err, mailer.ErrNetwork):
		return "Network error. Please check your connection and try again."
	case errors.Is(err, mailer.ErrTimeout):
		return "Request timeout. Please try again."
	default:
		return "Failed to send email. Please try again later."
	}
}
