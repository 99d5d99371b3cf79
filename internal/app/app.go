package app

import (
	"context"
	"net/http"

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
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	validator validator.Validator
	clock     clock.Clocker
	uid       uid.NumberID
	uuid      uid.StringID
	jwt       jwt.JWT
	encryptor mfa.Encryptor
	codes     mfa.CodeGenerator
	hasher    mfa.CodeHasher
	providers *otp.Registry
	qr        *qr.Renderer

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	locker    lock.Locker
	messaging messaging.Publisher

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
