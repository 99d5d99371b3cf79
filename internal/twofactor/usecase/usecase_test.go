package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/forumkit/twofactor/internal/pkg/clock"
	"github.com/forumkit/twofactor/internal/pkg/config"
	"github.com/forumkit/twofactor/internal/pkg/goerror"
	"github.com/forumkit/twofactor/internal/pkg/instrument"
	"github.com/forumkit/twofactor/internal/pkg/jwt"
	"github.com/forumkit/twofactor/internal/pkg/mfa"
	"github.com/forumkit/twofactor/internal/pkg/otp"
	"github.com/forumkit/twofactor/internal/pkg/qr"
	"github.com/forumkit/twofactor/internal/pkg/validator"
	"github.com/forumkit/twofactor/internal/twofactor/entity"
)

var testNow = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

type fakeProps struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
	setErr error
}

func newFakeProps() *fakeProps {
	return &fakeProps{values: map[string]string{}}
}

func propKey(userID int64, name string) string {
	return fmt.Sprintf("%d/%s", userID, name)
}

func (f *fakeProps) GetProperty(_ context.Context, userID int64, name string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.values[propKey(userID, name)]
	return v, ok, nil
}

func (f *fakeProps) SetProperty(_ context.Context, userID int64, name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.values[propKey(userID, name)] = value
	return nil
}

func (f *fakeProps) DeleteProperty(_ context.Context, userID int64, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, propKey(userID, name))
	return nil
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []entity.LoginEvent
	err    error
}

func (f *fakeRecorder) RecordLogin(_ context.Context, event entity.LoginEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type fakePolicy struct {
	mu     sync.Mutex
	seen   []error
	resets int
	wrap   error
}

func (f *fakePolicy) Transform(_ context.Context, err error, _ entity.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, err)
	if f.wrap != nil {
		return f.wrap
	}
	return err
}

func (f *fakePolicy) Reset(context.Context, entity.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return nil
}

type inProcessLocker struct {
	mu sync.Mutex
}

func (l *inProcessLocker) WithLock(ctx context.Context, _ string, fn func(context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(ctx)
}

type fakeJWT struct {
	genErr error
}

func (f *fakeJWT) Generate(uid int64, username string, factor int16) (string, error) {
	if f.genErr != nil {
		return "", f.genErr
	}
	return fmt.Sprintf("token-%d-%s-%d", uid, username, factor), nil
}

func (f *fakeJWT) Verify(string) (jwt.Claims, error) {
	return jwt.Claims{}, nil
}

type testEnv struct {
	uc       *Usecase
	props    *fakeProps
	recorder *fakeRecorder
	policy   *fakePolicy
	registry *otp.Registry
	hasher   *mfa.KDF
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	cfg, err := config.NewViperFromBytes("yaml", []byte("modules:\n  twofactor:\n    issuer: Forumkit\n"))
	if err != nil {
		t.Fatalf("new config: %v", err)
	}

	hasher, err := mfa.NewKDF(mfa.KDFVersionPBKDF2)
	if err != nil {
		t.Fatalf("new kdf: %v", err)
	}

	registry := otp.NewRegistry(otp.Config{Clock: clock.NewStatic(testNow)})

	env := &testEnv{
		props:    newFakeProps(),
		recorder: &fakeRecorder{},
		policy:   &fakePolicy{},
		registry: registry,
		hasher:   hasher,
	}

	env.uc = New(Dependency{
		Props:      env.props,
		Recorder:   env.recorder,
		Policy:     env.policy,
		Locker:     &inProcessLocker{},
		Providers:  registry,
		Codes:      mfa.NewBackupCode(),
		Hasher:     hasher,
		Encryptor:  mfa.NewAESGCMEncryptor(mfa.StaticKeyProvider{KeyBytes: make([]byte, 32)}),
		QR:         qr.NewRenderer(256),
		Validator:  v10,
		Config:     cfg,
		Clock:      clock.NewStatic(testNow),
		JWT:        &fakeJWT{},
		Instrument: instrument.NewNoop(),
	})

	return env
}

// sessionCtx builds a context carrying first-factor (or higher) claims.
func sessionCtx(userID int64, username string, factor entity.AuthFactor) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{
		UserID:     userID,
		Username:   username,
		AuthFactor: int16(factor),
	})
}

func reasonOf(t *testing.T, err error) goerror.Reason {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error")
	}
	return goerror.ReasonOf(err)
}
