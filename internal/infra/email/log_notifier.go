package email

import (
	"context"

	"go.uber.org/zap"

	"github.com/arklim/auth-service/internal/core/port"
	"github.com/arklim/auth-service/internal/infra/logger"
)

// LogNotifier writes the links to the log instead of sending email. Useful
// for development environments without an SMTP relay.
type LogNotifier struct {
	frontendURL string
	logger      *zap.Logger
}

// NewLogNotifier constructs a development-friendly notifier.
func NewLogNotifier(frontendURL string, log *zap.Logger) *LogNotifier {
	return &LogNotifier{frontendURL: frontendURL, logger: log}
}

// SendVerificationEmail logs the verification link.
func (n *LogNotifier) SendVerificationEmail(_ context.Context, email, token string) error {
	n.logger.Info("verification link issued",
		zap.String("to", logger.MaskEmail(email)),
		zap.String("link", buildLink(n.frontendURL, "verify-email", token)),
	)
	return nil
}

// SendResetPasswordEmail logs the password reset link.
func (n *LogNotifier) SendResetPasswordEmail(_ context.Context, email, token string) error {
	n.logger.Info("password reset link issued",
		zap.String("to", logger.MaskEmail(email)),
		zap.String("link", buildLink(n.frontendURL, "reset-password", token)),
	)
	return nil
}

var _ port.Notifier = (*LogNotifier)(nil)
