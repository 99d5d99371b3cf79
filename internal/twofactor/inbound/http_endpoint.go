package inbound

import (
	"github.com/forumkit/twofactor/internal/pkg/router"
	"github.com/forumkit/twofactor/internal/twofactor/usecase"
)

// HTTPEndpoint exposes HTTP handlers for second-factor enrollment and login.
type HTTPEndpoint struct {
	uc uc
}

// Setup enrolls the caller into second-factor authentication.
// @Summary Enroll into 2FA
// @Description Generates an OTP secret and backup codes for the caller and returns the provisioning payload.
// @Tags Twofactor, Enrollment
// @Accept json
// @Produce json
// @Param request body SetupRequest true "Enrollment payload"
// @Success 200 {object} router.successResponse{data=SetupResponse} "Provisioning payload"
// @Failure 400 {object} router.errorResponse "Invalid request body or unknown OTP type"
// @Failure 401 {object} router.errorResponse "Missing or invalid session"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/twofactor/setup [post]
func (h *HTTPEndpoint) Setup(r *router.Request) (any, error) {
	var req SetupRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Setup(r.Context(), usecase.SetupInput{
		Type:         req.Type,
		AccountLabel: req.AccountLabel,
		QRFormat:     req.QRFormat,
	})
	if err != nil {
		return nil, err
	}

	return SetupResponse{
		Type:        resp.Type,
		Secret:      resp.Secret,
		BackupCodes: resp.BackupCodes,
		URI:         resp.URI,
		QR:          resp.QR,
	}, nil
}

// Verify completes the second factor of a login.
// @Summary Verify second factor
// @Description Checks a submitted OTP token or backup code and upgrades the session on success.
// @Tags Twofactor, Authentication
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verification payload"
// @Success 200 {object} router.successResponse{data=VerifyResponse} "Upgraded session token"
// @Failure 401 {object} router.errorResponse "Invalid OTP value supplied"
// @Failure 403 {object} router.errorResponse "First factor not completed"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Too many invalid attempts"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/twofactor/verify [post]
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{Token: req.Token})
	if err != nil {
		return nil, err
	}

	return VerifyResponse{
		SessionToken: resp.SessionToken,
		Method:       resp.Method,
	}, nil
}

// RegenerateBackupCodes replaces the caller's backup code set.
// @Summary Regenerate backup codes
// @Description Issues a fresh set of backup codes, invalidating any unconsumed old ones.
// @Tags Twofactor, Enrollment
// @Produce json
// @Success 200 {object} router.successResponse{data=RegenerateBackupCodesResponse} "New backup codes"
// @Failure 403 {object} router.errorResponse "Second factor not completed"
// @Failure 404 {object} router.errorResponse "Not enrolled"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/twofactor/backup-codes [post]
func (h *HTTPEndpoint) RegenerateBackupCodes(r *router.Request) (any, error) {
	resp, err := h.uc.RegenerateBackupCodes(r.Context())
	if err != nil {
		return nil, err
	}

	return RegenerateBackupCodesResponse{BackupCodes: resp.BackupCodes}, nil
}

// Status reports the caller's enrollment state.
// @Summary Enrollment status
// @Description Returns whether the caller is enrolled and how many backup codes remain.
// @Tags Twofactor, Enrollment
// @Produce json
// @Success 200 {object} router.successResponse{data=StatusResponse} "Enrollment status"
// @Failure 401 {object} router.errorResponse "Missing or invalid session"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/twofactor/status [get]
func (h *HTTPEndpoint) Status(r *router.Request) (any, error) {
	resp, err := h.uc.Status(r.Context())
	if err != nil {
		return nil, err
	}

	return StatusResponse{
		Enrolled:             resp.Enrolled,
		Type:                 resp.Type,
		BackupCodesRemaining: resp.BackupCodesRemaining,
	}, nil
}

// Disable removes the caller's second-factor enrollment.
// @Summary Disable 2FA
// @Description Deletes the OTP secret and backup codes from the caller's account.
// @Tags Twofactor, Enrollment
// @Produce json
// @Success 200 {object} router.successResponse{data=DisableResponse} "Enrollment removed"
// @Failure 403 {object} router.errorResponse "Second factor not completed"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/twofactor [delete]
func (h *HTTPEndpoint) Disable(r *router.Request) (any, error) {
	if err := h.uc.Disable(r.Context()); err != nil {
		return nil, err
	}

	return DisableResponse{}, nil
}
