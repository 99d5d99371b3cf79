package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"

	"github.com/forumkit/twofactor/internal/pkg/goerror"
	"github.com/forumkit/twofactor/internal/pkg/mfa"
	"github.com/forumkit/twofactor/internal/twofactor/entity"
)

// errSecretUndecodable reports stored secret material that cannot be read
// back, distinct from a missing secret.
var errSecretUndecodable = errors.New("twofactor: stored otp secret is undecodable")

// The property store holds strings, so sealed secrets are base64-wrapped.
func encodeSecret(sealed []byte) string {
	return base64.StdEncoding.EncodeToString(sealed)
}

// loadSecret reads and unseals the user's enrolled OTP secret. A missing
// property is the distinct missing-secret business error.
func (s *Usecase) loadSecret(ctx context.Context, userID int64) (string, error) {
	raw, found, err := s.props.GetProperty(ctx, userID, entity.PropertyOTPSecret)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load otp secret property", "user_id", userID, "error", err)
		return "", goerror.NewServer(err)
	}
	if !found || raw == "" {
		slog.WarnContext(ctx, "otp secret is missing", "user_id", userID)
		return "", goerror.NewBusinessReason("missing OTP secret", goerror.CodeNotFound, goerror.ReasonMissingOTPSecret)
	}

	sealed, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		slog.ErrorContext(ctx, "failed to decode otp secret property", "user_id", userID, "error", err)
		return "", goerror.NewServer(errSecretUndecodable)
	}

	secret, err := s.encryptor.Decrypt(sealed, mfa.Scope{UserID: userID, Purpose: mfa.PurposeOTPSecret})
	if err != nil {
		slog.ErrorContext(ctx, "failed to decrypt otp secret", "user_id", userID, "error", err)
		return "", goerror.NewServer(err)
	}

	return string(secret), nil
}
