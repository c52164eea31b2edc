package email

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/arklim/auth-service/internal/core/port"
	"github.com/arklim/auth-service/internal/infra/config"
	"github.com/arklim/auth-service/internal/infra/logger"
)

// SMTPNotifier delivers account emails through an SMTP relay using gomail.
type SMTPNotifier struct {
	dialer      *gomail.Dialer
	from        string
	frontendURL string
	logger      *zap.Logger
}

// NewSMTPNotifier constructs a notifier from SMTP settings. frontendURL is
// the base used to build the links embedded in emails.
func NewSMTPNotifier(cfg config.SMTPSettings, frontendURL string, log *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		dialer:      gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:        cfg.From,
		frontendURL: frontendURL,
		logger:      log,
	}
}

// SendVerificationEmail emails the account activation link carrying the raw token.
func (n *SMTPNotifier) SendVerificationEmail(ctx context.Context, email, token string) error {
	link := buildLink(n.frontendURL, "verify-email", token)
	body := fmt.Sprintf(`<h1>Welcome!</h1>
<p>Please verify your email address by clicking the link below:</p>
<a href="%s">Verify Email</a>`, link)

	return n.send(ctx, email, "Verify your email", body)
}

// SendResetPasswordEmail emails the password reset link carrying the raw token.
func (n *SMTPNotifier) SendResetPasswordEmail(ctx context.Context, email, token string) error {
	link := buildLink(n.frontendURL, "reset-password", token)
	body := fmt.Sprintf(`<h1>Password Reset Request</h1>
<p>You requested a password reset. Click the link below to set a new password:</p>
<a href="%s">Reset Password</a>
<p>If you did not request this, please ignore this email.</p>`, link)

	return n.send(ctx, email, "Reset your password", body)
}

func (n *SMTPNotifier) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("email sent",
		zap.String("to", logger.MaskEmail(to)),
		zap.String("subject", subject),
	)

	return nil
}

func buildLink(base, path, token string) string {
	if base == "" {
		return fmt.Sprintf("/%s/%s", path, token)
	}
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return fmt.Sprintf("%s/%s/%s", base, path, token)
}

var _ port.Notifier = (*SMTPNotifier)(nil)
