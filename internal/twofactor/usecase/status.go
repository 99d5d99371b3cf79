package usecase

import (
	"context"
	"log/slog"

	"github.com/forumkit/twofactor/internal/pkg/goerror"
	"github.com/forumkit/twofactor/internal/twofactor/entity"
)

type StatusOutput struct {
	Enrolled             bool
	Type                 string
	BackupCodesRemaining int
}

// Status reports whether the caller is enrolled and how many backup codes
// remain unconsumed.
func (s *Usecase) Status(ctx context.Context) (*StatusOutput, error) {
	ctx, span := s.startSpan(ctx, "Status")
	defer span.End()

	session, err := s.sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rawType, enrolled, err := s.props.GetProperty(ctx, session.UserID, entity.PropertyOTPType)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load otp type property", "user_id", session.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !enrolled {
		return &StatusOutput{}, nil
	}

	set, err := s.loadBackupCodeSet(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	return &StatusOutput{
		Enrolled:             true,
		Type:                 entity.ParseOTPType(rawType).String(),
		BackupCodesRemaining: len(set),
	}, nil
}
