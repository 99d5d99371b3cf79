package policy

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/forumkit/twofactor/internal/pkg/config"
	"github.com/forumkit/twofactor/internal/pkg/goerror"
	"github.com/forumkit/twofactor/internal/twofactor/entity"
)

func newTestLockout(t *testing.T, cfg Config) (*Lockout, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewLockout(rdb, cfg), mr
}

func invalidSecondFactor() error {
	return goerror.NewBusinessReason("Invalid OTP value supplied",
		goerror.CodeUnauthorized, goerror.ReasonSecondFactorInvalid)
}

func TestLockout_Transform(t *testing.T) {
	session := entity.Session{UserID: 7, Username: "alice", Factor: entity.FactorPassword}

	t.Run("PassesThroughOtherReasons", func(t *testing.T) {
		// Arrange
		lockout, mr := newTestLockout(t, Config{MaxAttempts: 2})
		hard := errors.New("stored backup codes are unreadable")

		// Act
		got := lockout.Transform(t.Context(), hard, session)

		// Assert
		if !errors.Is(got, hard) {
			t.Fatalf("Transform() = %v, want the original error", got)
		}
		if mr.Exists("twofactor:attempts:7") {
			t.Fatal("non-rejection errors must not be counted")
		}
	})

	t.Run("ReturnsOriginalUnderBudget", func(t *testing.T) {
		// Arrange: budget and cooldown come from configuration the same way
		// the module wiring reads them.
		raw := []byte("modules:\n  twofactor:\n    lockout:\n      max_attempts: 2\n      cooldown_seconds: 60\n")
		cfg, err := config.NewViperFromBytes("yaml", raw)
		if err != nil {
			t.Fatalf("new config: %v", err)
		}
		lockout, mr := newTestLockout(t, Config{
			MaxAttempts: cfg.GetInt64("modules.twofactor.lockout.max_attempts"),
			Cooldown:    cfg.GetSecond("modules.twofactor.lockout.cooldown_seconds"),
		})

		// Act
		got := lockout.Transform(t.Context(), invalidSecondFactor(), session)

		// Assert
		var gerr *goerror.Error
		if !errors.As(got, &gerr) || gerr.StatusCode() != http.StatusUnauthorized {
			t.Fatalf("Transform() = %v, want the original unauthorized rejection", got)
		}
		if v, _ := mr.Get("twofactor:attempts:7"); v != "1" {
			t.Fatalf("attempt counter = %q, want %q", v, "1")
		}
		if mr.TTL("twofactor:attempts:7") != time.Minute {
			t.Fatalf("counter TTL = %v, want the cooldown window", mr.TTL("twofactor:attempts:7"))
		}
	})

	t.Run("ConvertsToRateLimitAtBudget", func(t *testing.T) {
		// Arrange
		lockout, _ := newTestLockout(t, Config{MaxAttempts: 2, Cooldown: time.Minute})
		_ = lockout.Transform(t.Context(), invalidSecondFactor(), session)

		// Act
		got := lockout.Transform(t.Context(), invalidSecondFactor(), session)

		// Assert
		var gerr *goerror.Error
		if !errors.As(got, &gerr) {
			t.Fatalf("Transform() = %v, want a structured error", got)
		}
		if gerr.StatusCode() != http.StatusTooManyRequests {
			t.Fatalf("status = %d, want %d", gerr.StatusCode(), http.StatusTooManyRequests)
		}
		// The reason tag survives so downstream policy still sees a
		// second-factor rejection.
		if goerror.ReasonOf(got) != goerror.ReasonSecondFactorInvalid {
			t.Fatalf("reason = %q, want invalid-second-factor", goerror.ReasonOf(got))
		}
	})

	t.Run("ResetClearsCounter", func(t *testing.T) {
		// Arrange
		lockout, mr := newTestLockout(t, Config{MaxAttempts: 2, Cooldown: time.Minute})
		_ = lockout.Transform(t.Context(), invalidSecondFactor(), session)

		// Act
		if err := lockout.Reset(t.Context(), session); err != nil {
			t.Fatalf("Reset() error = %v", err)
		}

		// Assert: the run of failures starts over.
		if mr.Exists("twofactor:attempts:7") {
			t.Fatal("Reset() must delete the attempt counter")
		}
		got := lockout.Transform(t.Context(), invalidSecondFactor(), session)
		var gerr *goerror.Error
		if !errors.As(got, &gerr) || gerr.StatusCode() != http.StatusUnauthorized {
			t.Fatalf("Transform() after reset = %v, want the original rejection", got)
		}
	})

	t.Run("RedisOutageDegradesToOriginalError", func(t *testing.T) {
		// Arrange
		lockout, mr := newTestLockout(t, Config{MaxAttempts: 1})
		mr.Close()
		original := invalidSecondFactor()

		// Act
		got := lockout.Transform(t.Context(), original, session)

		// Assert
		if !errors.Is(got, original) {
			t.Fatalf("Transform() = %v, want the original rejection when counting fails", got)
		}
	})
}
