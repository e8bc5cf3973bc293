package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"download-service/internal/auth"
	"download-service/internal/domain/profile"
	"download-service/pkg/deadline"
	apperrors "download-service/pkg/errors"
)

const msgEnsureProfileFailed = "could not create profile"

type ProfileHandler struct {
	profiles ProfileEnsurer
	timeout  time.Duration
}

func NewProfileHandler(profiles ProfileEnsurer, timeout time.Duration) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, timeout: timeout}
}

type EnsureProfileResponse struct {
	Created bool `json:"created"`
}

// Ensure creates the caller's profile if it does not exist yet. Concurrent
// calls for the same identity are safe; at most one reports created=true.
func (h *ProfileHandler) Ensure(c echo.Context) error {
	identity, err := auth.GetIdentity(c)
	if err != nil {
		return err
	}

	input := profile.EnsureProfileInput{
		ID:          identity.ID,
		DisplayName: identity.DisplayName,
	}

	created, err := deadline.Call(c.Request().Context(), h.timeout, func(ctx context.Context) (bool, error) {
		return h.profiles.Ensure(ctx, input)
	})
	if err != nil {
		return apperrors.DependencyFailure(msgEnsureProfileFailed, err)
	}

	return c.JSON(http.StatusOK, EnsureProfileResponse{Created: created})
}
