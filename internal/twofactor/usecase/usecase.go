package usecase

import (
	"context"

	"go.opentelemetry.io/otel/trace"

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

// propertyStore persists named string properties on the user record. It is
// the single serialization point for second-factor state.
type propertyStore interface {
	// GetProperty returns the value and whether the property exists.
	GetProperty(ctx context.Context, userID int64, name string) (string, bool, error)
	SetProperty(ctx context.Context, userID int64, name, value string) error
	DeleteProperty(ctx context.Context, userID int64, name string) error
}

// loginRecorder is invoked on every successful verification.
type loginRecorder interface {
	RecordLogin(ctx context.Context, event entity.LoginEvent) error
}

// loginErrorTransformer lets deployment policy (lockout counters, audit)
// enrich the terminal verification-failure error before it reaches the caller.
// Reset is invoked after a successful verification so counters track
// consecutive failures only.
type loginErrorTransformer interface {
	Transform(ctx context.Context, err error, session entity.Session) error
	Reset(ctx context.Context, session entity.Session) error
}

// userLocker serializes backup-code consumption per user.
type userLocker interface {
	WithLock(ctx context.Context, key string, fn func(context.Context) error) error
}

// providerResolver maps an OTP type identifier to its verifier.
type providerResolver interface {
	Resolve(otpType string) (otp.Provider, error)
}

// qrRenderer renders a provisioning URI into a presentation format.
type qrRenderer interface {
	Render(uri string, format qr.Format) (string, error)
}

type Usecase struct {
	props     propertyStore
	recorder  loginRecorder
	policy    loginErrorTransformer
	locker    userLocker
	providers providerResolver
	codes     mfa.CodeGenerator
	hasher    mfa.CodeHasher
	encryptor mfa.Encryptor
	qr        qrRenderer
	validator validator.Validator
	cfg       config.Config
	clock     clock.Clocker
	jwt       jwt.JWT
	ins       instrument.Instrumentation
}

type Dependency struct {
	Props      propertyStore
	Recorder   loginRecorder
	Policy     loginErrorTransformer
	Locker     userLocker
	Providers  providerResolver
	Codes      mfa.CodeGenerator
	Hasher     mfa.CodeHasher
	Encryptor  mfa.Encryptor
	QR         qrRenderer
	Validator  validator.Validator
	Config     config.Config
	Clock      clock.Clocker
	JWT        jwt.JWT
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		props:     dep.Props,
		recorder:  dep.Recorder,
		policy:    dep.Policy,
		locker:    dep.Locker,
		providers: dep.Providers,
		codes:     dep.Codes,
		hasher:    dep.Hasher,
		encryptor: dep.Encryptor,
		qr:        dep.QR,
		validator: dep.Validator,
		cfg:       dep.Config,
		clock:     dep.Clock,
		jwt:       dep.JWT,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("twofactor.usecase").Start(ctx, name)
}

// sessionFromContext rebuilds the caller's session from the verified token
// claims set by the router.
func (s *Usecase) sessionFromContext(ctx context.Context) (entity.Session, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return entity.Session{}, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	factor := entity.AuthFactor(clm.AuthFactor)

	return entity.Session{
		UserID:        clm.UserID,
		Username:      clm.Username,
		Factor:        factor,
		Authenticated: factor >= entity.FactorSecond,
	}, nil
}

// issuerLabel is the service label embedded in provisioning URIs, supplied
// by deployment configuration.
func (s *Usecase) issuerLabel() string {
	issuer := s.cfg.GetString("modules.twofactor.issuer")
	if issuer == "" {
		issuer = "Forumkit"
	}
	return issuer
}
