package usecase

import (
	"context"
	"log/slog"

	"github.com/forumkit/twofactor/internal/pkg/goerror"
	"github.com/forumkit/twofactor/internal/twofactor/entity"
)

// Disable removes the caller's second-factor enrollment: OTP type, secret,
// and any remaining backup codes.
func (s *Usecase) Disable(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Disable")
	defer span.End()

	session, err := s.requireSecondFactor(ctx)
	if err != nil {
		return err
	}

	for _, name := range []string{
		entity.PropertyOTPType,
		entity.PropertyOTPSecret,
		entity.PropertyBackupCodes,
	} {
		if err := s.props.DeleteProperty(ctx, session.UserID, name); err != nil {
			slog.ErrorContext(ctx, "failed to delete enrollment property", "user_id", session.UserID, "property", name, "error", err)
			return goerror.NewServer(err)
		}
	}

	slog.InfoContext(ctx, "second factor disabled", "user_id", session.UserID)

	return nil
}
