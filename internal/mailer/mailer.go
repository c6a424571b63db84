package mailer

import (
	"errors"
	"fmt"
	"html"
	"net"
	"strings"
	"time"

	gomail "gopkg.in/gomail.v2"

	"devfolio/internal/config"
)

// 投递失败的分类哨兵，供上层挑选面向用户的提示文案。
// 对调用方而言最终都只是一次投递失败，不触发重试。
var (
	ErrAuth    = errors.New("smtp authentication failed")
	ErrNetwork = errors.New("smtp network error")
	ErrTimeout = errors.New("smtp timeout")
)

// Mailer 通过 SMTP 把访客留言转发给站点所有者。
// 发送是同步的：失败即丢失，不落库也不排队。
type Mailer struct {
	dialer    *gomail.Dialer
	sender    string
	recipient string
}

// New 构造 Mailer。
func New(cfg config.SMTPConfig) *Mailer {
	return &Mailer{
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		sender:    cfg.Sender,
		recipient: cfg.Recipient,
	}
}

// SendContactMessage 发送一封联系表单邮件，Reply-To 指向访客地址。
func (m *Mailer) SendContactMessage(name, email, message string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.sender, "Portfolio Contact Form")
	msg.SetHeader("To", m.recipient)
	msg.SetHeader("Reply-To", email)
	msg.SetHeader("Subject", fmt.Sprintf("New Portfolio Message from %s", name))
	msg.SetBody("text/html", contactBody(name, email, message))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return classify(err)
	}
	return nil
}

func contactBody(name, email, message string) string {
	escaped := strings.ReplaceAll(html.EscapeString(message), "\n", "<br>")
	return fmt.Sprintf(
		`<div style="max-width:600px;margin:0 auto;font-family:Arial,sans-serif;">`+
			`<h2>New Portfolio Contact</h2>`+
			`<p><strong>Name:</strong> %s</p>`+
			`<p><strong>Email:</strong> <a href="mailto:%s">%s</a></p>`+
			`<h3>Message</h3>`+
			`<p style="line-height:1.6;">%s</p>`+
			`<p style="color:#6b7280;font-size:13px;">Sent from the portfolio contact form at %s</p>`+
			`</div>`,
		html.EscapeString(name),
		html.EscapeString(email),
		html.EscapeString(email),
		escaped,
		time.Now().Format(time.RFC1123),
	)
}

// classify 把底层 SMTP 错误归类到哨兵错误，方便上层选择提示语。
func classify(err error) error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "timeout"):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case strings.Contains(lower, "535") ||
		strings.Contains(lower, "auth") ||
		strings.Contains(lower, "username and password not accepted"):
		return fmt.Errorf("%w: %v", ErrAuth, err)
	case strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "network is unreachable"):
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	default:
		return fmt.Errorf("send contact mail: %w", err)
	}
}
