package usecase

import (
	"context"
	"log/slog"

	"github.com/forumkit/twofactor/internal/pkg/goerror"
	"github.com/forumkit/twofactor/internal/twofactor/entity"
)

type RegenerateBackupCodesOutput struct {
	BackupCodes []string
}

// RegenerateBackupCodes replaces the caller's stored set with a fresh one
// and returns the new plaintext codes. Any unconsumed old codes stop
// working immediately.
func (s *Usecase) RegenerateBackupCodes(ctx context.Context) (*RegenerateBackupCodesOutput, error) {
	ctx, span := s.startSpan(ctx, "RegenerateBackupCodes")
	defer span.End()

	session, err := s.requireSecondFactor(ctx)
	if err != nil {
		return nil, err
	}

	// Regeneration only makes sense for an enrolled user.
	if _, found, err := s.props.GetProperty(ctx, session.UserID, entity.PropertyOTPSecret); err != nil {
		slog.ErrorContext(ctx, "failed to load otp secret property", "user_id", session.UserID, "error", err)
		return nil, goerror.NewServer(err)
	} else if !found {
		slog.WarnContext(ctx, "backup code regeneration without enrollment", "user_id", session.UserID)
		return nil, goerror.NewBusinessReason("missing OTP secret", goerror.CodeNotFound, goerror.ReasonMissingOTPSecret)
	}

	plaintexts, set, err := s.generateBackupCodeSet(ctx)
	if err != nil {
		return nil, err
	}

	serialized, err := set.Serialize()
	if err != nil {
		slog.ErrorContext(ctx, "failed to serialize backup code set", "user_id", session.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.props.SetProperty(ctx, session.UserID, entity.PropertyBackupCodes, serialized); err != nil {
		slog.ErrorContext(ctx, "failed to persist backup code set", "user_id", session.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "backup codes regenerated", "user_id", session.UserID)

	return &RegenerateBackupCodesOutput{BackupCodes: plaintexts}, nil
}

// requireSecondFactor gates operations that mutate enrollment state behind
// a fully authenticated session.
func (s *Usecase) requireSecondFactor(ctx context.Context) (entity.Session, error) {
	session, err := s.sessionFromContext(ctx)
	if err != nil {
		return entity.Session{}, err
	}

	if !session.Authenticated {
		slog.WarnContext(ctx, "operation requires a fully authenticated session", "user_id", session.UserID, "factor", session.Factor.String())
		return entity.Session{}, goerror.NewBusinessReason("access denied", goerror.CodeForbidden, goerror.ReasonAccessDenied)
	}

	return session, nil
}
