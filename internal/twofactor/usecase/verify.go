package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/forumkit/twofactor/internal/pkg/goerror"
	"github.com/forumkit/twofactor/internal/pkg/otp"
	"github.com/forumkit/twofactor/internal/twofactor/entity"
)

type VerifyInput struct {
	Token string `validate:"required"`
}

type VerifyOutput struct {
	SessionToken string
	Method       string
}

// Verify validates a submitted second-factor token against the live OTP
// algorithm, falling back to backup-code consumption, and advances the
// session to the second factor on success.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	session, err := s.sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	// The first factor must already be in place; no token evaluation
	// happens otherwise.
	if !session.HasFirstFactor() {
		slog.WarnContext(ctx, "second factor attempted before first factor", "user_id", session.UserID)
		return nil, goerror.NewBusinessReason("access denied", goerror.CodeForbidden, goerror.ReasonAccessDenied)
	}

	in.Token = strings.TrimSpace(in.Token)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	provider, err := s.loadEnrolledProvider(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	secret, err := s.loadSecret(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	if provider.Verify(in.Token, secret) {
		return s.completeVerification(ctx, session, "otp")
	}

	if err := s.consumeBackupCode(ctx, session, in.Token); err != nil {
		// Only the invalid-second-factor rejection goes through deployment
		// policy; hard errors propagate unmodified.
		if goerror.ReasonOf(err) == goerror.ReasonSecondFactorInvalid {
			return nil, s.policy.Transform(ctx, err, session)
		}
		return nil, err
	}

	return s.completeVerification(ctx, session, "backup_code")
}

// loadEnrolledProvider resolves the provider for the user's stored OTP type.
func (s *Usecase) loadEnrolledProvider(ctx context.Context, userID int64) (otp.Provider, error) {
	raw, found, err := s.props.GetProperty(ctx, userID, entity.PropertyOTPType)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load otp type property", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !found {
		raw = ""
	}

	return s.resolveProvider(ctx, entity.ParseOTPType(raw), raw)
}

// completeVerification is the single Verified transition: the session
// advances to the second factor, the login is recorded, and a fresh session
// token at the new factor is issued.
func (s *Usecase) completeVerification(ctx context.Context, session entity.Session, method string) (*VerifyOutput, error) {
	session.Factor = entity.FactorSecond
	session.Authenticated = true

	// A success ends any run of consecutive failures; a reset failure must
	// not block the login.
	if err := s.policy.Reset(ctx, session); err != nil {
		slog.WarnContext(ctx, "failed to reset attempt counter", "user_id", session.UserID, "error", err)
	}

	event := entity.LoginEvent{
		UserID:     session.UserID,
		Username:   session.Username,
		Method:     method,
		OccurredAt: s.clock.Now().Unix(),
	}
	if err := s.recorder.RecordLogin(ctx, event); err != nil {
		slog.ErrorContext(ctx, "failed to record successful login", "user_id", session.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	token, err := s.jwt.Generate(session.UserID, session.Username, int16(session.Factor))
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate session token", "user_id", session.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "second factor verified", "user_id", session.UserID, "method", method)

	return &VerifyOutput{
		SessionToken: token,
		Method:       method,
	}, nil
}
