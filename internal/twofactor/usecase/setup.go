package usecase

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/forumkit/twofactor/internal/pkg/goerror"
	"github.com/forumkit/twofactor/internal/pkg/mfa"
	"github.com/forumkit/twofactor/internal/pkg/otp"
	"github.com/forumkit/twofactor/internal/pkg/qr"
	"github.com/forumkit/twofactor/internal/twofactor/entity"
)

type SetupInput struct {
	Type         string `validate:"required"`
	AccountLabel string `validate:"omitempty,accountlabel"`
	QRFormat     string
}

type SetupOutput struct {
	Type        string
	Secret      string
	BackupCodes []string
	URI         string
	QR          string
}

// Setup enrolls the caller into second-factor login: it generates the OTP
// secret and backup codes, persists them on the user record, and returns
// the provisioning payload. Plaintext codes appear only in this response.
func (s *Usecase) Setup(ctx context.Context, in SetupInput) (*SetupOutput, error) {
	ctx, span := s.startSpan(ctx, "Setup")
	defer span.End()

	session, err := s.sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	in.Type = strings.TrimSpace(in.Type)
	in.AccountLabel = strings.TrimSpace(in.AccountLabel)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	otpType := entity.ParseOTPType(in.Type)
	provider, err := s.resolveProvider(ctx, otpType, in.Type)
	if err != nil {
		return nil, err
	}

	secret, err := provider.GenerateSecret()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp secret", "user_id", session.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	plaintexts, set, err := s.generateBackupCodeSet(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.persistEnrollment(ctx, session.UserID, otpType, secret, set); err != nil {
		return nil, err
	}

	account := in.AccountLabel
	if account == "" {
		account = "user"
	}

	uri := provider.ProvisioningURI(account, s.issuerLabel(), secret)

	rendered, err := s.qr.Render(uri, qr.ParseFormat(in.QRFormat))
	if err != nil {
		slog.ErrorContext(ctx, "failed to render provisioning qr", "user_id", session.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "second factor enrolled", "user_id", session.UserID, "otp_type", otpType.String())

	return &SetupOutput{
		Type:        otpType.String(),
		Secret:      secret,
		BackupCodes: plaintexts,
		URI:         uri,
		QR:          rendered,
	}, nil
}

// resolveProvider normalizes every resolution failure into the unknown-type
// business error so callers never see a raw registry error.
func (s *Usecase) resolveProvider(ctx context.Context, otpType entity.OTPType, raw string) (otp.Provider, error) {
	if otpType.IsUnknown() {
		slog.WarnContext(ctx, "otp type is not recognized", "otp_type", raw)
		return nil, goerror.NewBusinessReason("unknown OTP type", goerror.CodeInvalidInput, goerror.ReasonUnknownOTPType)
	}

	provider, err := s.providers.Resolve(otpType.String())
	if err != nil {
		slog.WarnContext(ctx, "otp provider is not registered", "otp_type", otpType.String(), "error", err)
		return nil, goerror.NewBusinessReason("unknown OTP type", goerror.CodeInvalidInput, goerror.ReasonUnknownOTPType)
	}

	return provider, nil
}

// generateBackupCodeSet derives the salted digests of a fresh code set.
// Derivations run concurrently and the whole operation fails on the first
// error.
func (s *Usecase) generateBackupCodeSet(ctx context.Context) ([]string, entity.BackupCodeSet, error) {
	plaintexts, err := s.codes.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate backup codes", "error", err)
		return nil, nil, goerror.NewServer(err)
	}

	set := make(entity.BackupCodeSet, len(plaintexts))

	g, _ := errgroup.WithContext(ctx)
	for i, plain := range plaintexts {
		g.Go(func() error {
			salt, err := s.hasher.NewSalt()
			if err != nil {
				return err
			}

			digest, err := s.hasher.Derive(plain, salt)
			if err != nil {
				return err
			}

			set[i] = entity.BackupCodeEntry{Salt: salt, Hash: digest, Version: s.hasher.Version()}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "failed to derive backup code digests", "error", err)
		return nil, nil, goerror.NewServer(err)
	}

	return plaintexts, set, nil
}

func (s *Usecase) persistEnrollment(ctx context.Context, userID int64, otpType entity.OTPType, secret string, set entity.BackupCodeSet) error {
	sealed, err := s.encryptor.Encrypt([]byte(secret), mfa.Scope{UserID: userID, Purpose: mfa.PurposeOTPSecret})
	if err != nil {
		slog.ErrorContext(ctx, "failed to encrypt otp secret", "user_id", userID, "error", err)
		return goerror.NewServer(err)
	}

	serialized, err := set.Serialize()
	if err != nil {
		slog.ErrorContext(ctx, "failed to serialize backup code set", "user_id", userID, "error", err)
		return goerror.NewServer(err)
	}

	for _, prop := range []struct {
		name  string
		value string
	}{
		{entity.PropertyOTPType, otpType.String()},
		{entity.PropertyOTPSecret, encodeSecret(sealed)},
		{entity.PropertyBackupCodes, serialized},
	} {
		if err := s.props.SetProperty(ctx, userID, prop.name, prop.value); err != nil {
			slog.ErrorContext(ctx, "failed to persist enrollment property", "user_id", userID, "property", prop.name, "error", err)
			return goerror.NewServer(err)
		}
	}

	return nil
}
