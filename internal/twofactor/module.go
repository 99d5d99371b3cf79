package twofactor

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/forumkit/twofactor/internal/pkg/clock"
	"github.com/forumkit/twofactor/internal/pkg/config"
	"github.com/forumkit/twofactor/internal/pkg/instrument"
	"github.com/forumkit/twofactor/internal/pkg/jwt"
	"github.com/forumkit/twofactor/internal/pkg/lock"
	"github.com/forumkit/twofactor/internal/pkg/messaging"
	"github.com/forumkit/twofactor/internal/pkg/mfa"
	"github.com/forumkit/twofactor/internal/pkg/otp"
	"github.com/forumkit/twofactor/internal/pkg/qr"
	"github.com/forumkit/twofactor/internal/pkg/router"
	"github.com/forumkit/twofactor/internal/pkg/uid"
	"github.com/forumkit/twofactor/internal/pkg/validator"
	"github.com/forumkit/twofactor/internal/twofactor/inbound"
	"github.com/forumkit/twofactor/internal/twofactor/outbound/db"
	"github.com/forumkit/twofactor/internal/twofactor/outbound/mq"
	"github.com/forumkit/twofactor/internal/twofactor/outbound/policy"
	"github.com/forumkit/twofactor/internal/twofactor/outbound/recorder"
	"github.com/forumkit/twofactor/internal/twofactor/usecase"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	CacheConn  *redis.Client              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Publisher        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Locker     lock.Locker                `validate:"required"`
	Encryptor  mfa.Encryptor              `validate:"required"`
	Codes      mfa.CodeGenerator          `validate:"required"`
	Hasher     mfa.CodeHasher             `validate:"required"`
	Providers  *otp.Registry              `validate:"required"`
	QR         *qr.Renderer               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	store := db.NewDB(dep.DBConn, dep.Instrument)
	publisher := mq.NewMessaging(dep.Messaging, dep.Instrument)
	lockout := policy.NewLockout(dep.CacheConn, policy.Config{
		MaxAttempts: dep.Config.GetInt64("modules.twofactor.lockout.max_attempts"),
		Cooldown:    dep.Config.GetSecond("modules.twofactor.lockout.cooldown_seconds"),
	})

	uc := usecase.New(usecase.Dependency{
		Props:      store,
		Recorder:   recorder.New(store, publisher, dep.UID),
		Policy:     lockout,
		Locker:     dep.Locker,
		Providers:  dep.Providers,
		Codes:      dep.Codes,
		Hasher:     dep.Hasher,
		Encryptor:  dep.Encryptor,
		QR:         dep.QR,
		Validator:  dep.Validator,
		Config:     dep.Config,
		Clock:      dep.Clock,
		JWT:        dep.JWT,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
