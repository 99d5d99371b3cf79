package usecase

import (
	"errors"
	"testing"

	"github.com/pquerna/otp/totp"

	"github.com/forumkit/twofactor/internal/pkg/goerror"
	"github.com/forumkit/twofactor/internal/twofactor/entity"
)

// enroll runs a time-based setup for the user and returns the provisioning
// payload.
func enroll(t *testing.T, env *testEnv, userID int64, username string) *SetupOutput {
	t.Helper()

	out, err := env.uc.Setup(sessionCtx(userID, username, entity.FactorPassword), SetupInput{Type: "totp"})
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	return out
}

func currentToken(t *testing.T, secret string) string {
	t.Helper()

	token, err := totp.GenerateCodeCustom(secret, testNow, totp.ValidateOpts{Period: 30, Digits: 6})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func TestVerify(t *testing.T) {
	t.Run("ValidOTPToken", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		enrollment := enroll(t, env, 7, "alice")
		ctx := sessionCtx(7, "alice", entity.FactorPassword)

		// Act
		out, err := env.uc.Verify(ctx, VerifyInput{Token: currentToken(t, enrollment.Secret)})

		// Assert
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if out.Method != "otp" {
			t.Fatalf("expected otp method, got %q", out.Method)
		}
		// The fresh session token carries the advanced factor.
		if out.SessionToken != "token-7-alice-2" {
			t.Fatalf("unexpected session token %q", out.SessionToken)
		}
		if len(env.recorder.events) != 1 || env.recorder.events[0].Method != "otp" {
			t.Fatalf("expected one recorded otp login, got %+v", env.recorder.events)
		}
		if env.recorder.events[0].OccurredAt != testNow.Unix() {
			t.Fatalf("login event time mismatch")
		}
	})

	t.Run("SuccessResetsAttemptCounter", func(t *testing.T) {
		// Arrange: one rejected attempt precedes the valid one.
		env := newTestEnv(t)
		enrollment := enroll(t, env, 7, "alice")
		ctx := sessionCtx(7, "alice", entity.FactorPassword)
		if _, err := env.uc.Verify(ctx, VerifyInput{Token: "000000"}); err == nil {
			t.Fatal("bogus token must be rejected")
		}

		// Act
		_, err := env.uc.Verify(ctx, VerifyInput{Token: currentToken(t, enrollment.Secret)})

		// Assert
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if env.policy.resets != 1 {
			t.Fatalf("success must reset the policy counter once, saw %d resets", env.policy.resets)
		}
	})

	t.Run("AccessDeniedBeforeFirstFactor", func(t *testing.T) {
		// Arrange: property reads fail loudly, proving no token evaluation
		// happens before the precondition check.
		env := newTestEnv(t)
		env.props.getErr = errors.New("store must not be touched")

		// Act
		_, err := env.uc.Verify(sessionCtx(7, "alice", entity.FactorNone), VerifyInput{Token: "123456"})

		// Assert
		if reasonOf(t, err) != goerror.ReasonAccessDenied {
			t.Fatalf("expected access-denied reason, got %v", err)
		}
	})

	t.Run("UnknownStoredType", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := sessionCtx(7, "alice", entity.FactorPassword)
		env.props.values[propKey(7, entity.PropertyOTPType)] = "bogus"

		_, err := env.uc.Verify(ctx, VerifyInput{Token: "123456"})

		if reasonOf(t, err) != goerror.ReasonUnknownOTPType {
			t.Fatalf("expected unknown-otp-type reason, got %v", err)
		}
	})

	t.Run("MissingSecret", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := sessionCtx(7, "alice", entity.FactorPassword)
		env.props.values[propKey(7, entity.PropertyOTPType)] = "totp"

		_, err := env.uc.Verify(ctx, VerifyInput{Token: "123456"})

		if reasonOf(t, err) != goerror.ReasonMissingOTPSecret {
			t.Fatalf("expected missing-otp-secret reason, got %v", err)
		}
	})

	t.Run("InvalidTokenAndNoBackupMatch", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		enroll(t, env, 7, "alice")
		ctx := sessionCtx(7, "alice", entity.FactorPassword)

		// Act: almost certainly not the live token, and no backup code
		// matches either.
		_, err := env.uc.Verify(ctx, VerifyInput{Token: "000000"})

		// Assert
		if reasonOf(t, err) != goerror.ReasonSecondFactorInvalid {
			t.Fatalf("expected invalid-second-factor reason, got %v", err)
		}
		if len(env.policy.seen) != 1 {
			t.Fatalf("rejection must pass through the policy transformer once, saw %d", len(env.policy.seen))
		}
		if len(env.recorder.events) != 0 {
			t.Fatalf("no login may be recorded on rejection")
		}
	})

	t.Run("BackupCodeConsumedExactlyOnce", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		enrollment := enroll(t, env, 7, "alice")
		ctx := sessionCtx(7, "alice", entity.FactorPassword)
		code := enrollment.BackupCodes[2]

		// Act: first use succeeds.
		out, err := env.uc.Verify(ctx, VerifyInput{Token: code})
		if err != nil {
			t.Fatalf("verify with backup code: %v", err)
		}

		// Assert
		if out.Method != "backup_code" {
			t.Fatalf("expected backup_code method, got %q", out.Method)
		}

		raw, _, _ := env.props.GetProperty(ctx, 7, entity.PropertyBackupCodes)
		set, err := entity.ParseBackupCodeSet(raw)
		if err != nil {
			t.Fatalf("parse persisted set: %v", err)
		}
		if len(set) != len(enrollment.BackupCodes)-1 {
			t.Fatalf("expected set to shrink by exactly 1, got %d entries", len(set))
		}

		// Immediate reuse of the same code fails.
		_, err = env.uc.Verify(ctx, VerifyInput{Token: code})
		if reasonOf(t, err) != goerror.ReasonSecondFactorInvalid {
			t.Fatalf("expected reuse to be rejected, got %v", err)
		}

		// Every other code still works once.
		if _, err := env.uc.Verify(ctx, VerifyInput{Token: enrollment.BackupCodes[0]}); err != nil {
			t.Fatalf("remaining code rejected: %v", err)
		}
	})

	t.Run("MalformedBackupData", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		enroll(t, env, 7, "alice")
		ctx := sessionCtx(7, "alice", entity.FactorPassword)
		env.props.values[propKey(7, entity.PropertyBackupCodes)] = "{not json"

		// Act
		_, err := env.uc.Verify(ctx, VerifyInput{Token: "000000"})

		// Assert: parse failure is a hard error, not an invalid-code
		// rejection, and never reaches the policy transformer.
		if reasonOf(t, err) != goerror.ReasonMalformedBackupData {
			t.Fatalf("expected malformed-backup-data reason, got %v", err)
		}
		if len(env.policy.seen) != 0 {
			t.Fatalf("hard errors must bypass the policy transformer")
		}
	})

	t.Run("PolicyTransformApplied", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		enroll(t, env, 7, "alice")
		lockout := goerror.NewBusiness("too many attempts", goerror.CodeTooManyRequest)
		env.policy.wrap = lockout

		// Act
		_, err := env.uc.Verify(sessionCtx(7, "alice", entity.FactorPassword), VerifyInput{Token: "000000"})

		// Assert
		if !errors.Is(err, lockout) {
			t.Fatalf("expected the transformed error, got %v", err)
		}
	})

	t.Run("RecorderFailurePropagates", func(t *testing.T) {
		env := newTestEnv(t)
		enrollment := enroll(t, env, 7, "alice")
		env.recorder.err = errors.New("ledger down")

		_, err := env.uc.Verify(sessionCtx(7, "alice", entity.FactorPassword), VerifyInput{Token: currentToken(t, enrollment.Secret)})
		if err == nil {
			t.Fatalf("expected recording failure to propagate")
		}
	})

	t.Run("PersistFailureBlocksConsumption", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		enrollment := enroll(t, env, 7, "alice")
		env.props.setErr = errors.New("store down")

		// Act
		_, err := env.uc.Verify(sessionCtx(7, "alice", entity.FactorPassword), VerifyInput{Token: enrollment.BackupCodes[0]})

		// Assert: a matched code whose removal cannot be persisted must not
		// report success.
		if err == nil {
			t.Fatalf("expected persistence failure to fail the attempt")
		}
		if len(env.recorder.events) != 0 {
			t.Fatalf("no login may be recorded when persistence fails")
		}
	})
}
