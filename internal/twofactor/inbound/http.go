package inbound

import (
	"context"

	"github.com/forumkit/twofactor/internal/pkg/router"
	"github.com/forumkit/twofactor/internal/twofactor/usecase"
)

type uc interface {
	Setup(ctx context.Context, in usecase.SetupInput) (*usecase.SetupOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)
	RegenerateBackupCodes(ctx context.Context) (*usecase.RegenerateBackupCodesOutput, error)
	Status(ctx context.Context) (*usecase.StatusOutput, error)
	Disable(ctx context.Context) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Enrollment & Verification (need authenticated)
	r.POST("/api/v1/twofactor/setup", end.Setup)
	r.POST("/api/v1/twofactor/verify", end.Verify)

	// Backup Codes (need second factor)
	r.POST("/api/v1/twofactor/backup-codes", end.RegenerateBackupCodes)

	// Enrollment Lifecycle
	r.GET("/api/v1/twofactor/status", end.Status)
	r.DELETE("/api/v1/twofactor", end.Disable) // need second factor
}
