package app

import (
	"log/slog"
	"os"

	"github.com/forumkit/twofactor/internal/twofactor"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.twofactor.enabled") {
		if err := twofactor.New(twofactor.Dependency{
			DBConn:     a.dbConn,
			CacheConn:  a.cacheConn,
			Router:     a.router,
			Messaging:  a.messaging,
			Config:     a.config,
			Instrument: a.ins,
			Locker:     a.locker,
			Encryptor:  a.encryptor,
			Codes:      a.codes,
			Hasher:     a.hasher,
			Providers:  a.providers,
			QR:         a.qr,
			Clock:      a.clock,
			Validator:  a.validator,
			JWT:        a.jwt,
			UID:        a.uid,
		}); err != nil {
			slog.Error("failed to init module twofactor", "error", err)
			os.Exit(1)
		}
	}
}
