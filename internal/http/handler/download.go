package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"download-service/internal/delivery"
)

type DownloadHandler struct {
	service           DownloadService
	redirectByDefault bool
}

func NewDownloadHandler(service DownloadService, redirectByDefault bool) *DownloadHandler {
	return &DownloadHandler{service: service, redirectByDefault: redirectByDefault}
}

type DownloadRequest struct {
	PostID   string `json:"postId" query:"postId"`
	FilePath string `json:"filePath" query:"filePath"`
}

type DownloadResponse struct {
	Success   bool   `json:"success"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expiresIn"`
}

// Create handles POST /api/downloads with a JSON body.
func (h *DownloadHandler) Create(c echo.Context) error {
	var req DownloadRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	result, err := h.deliver(c, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newDownloadResponse(result))
}

// Get handles GET /api/downloads?postId=&filePath=[&redirect=]. With redirect
// enabled the client is sent straight to the signed URL.
func (h *DownloadHandler) Get(c echo.Context) error {
	req := DownloadRequest{
		PostID:   c.QueryParam("postId"),
		FilePath: c.QueryParam("filePath"),
	}

	redirect := h.redirectByDefault
	if raw := c.QueryParam(queryRedirect); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return respondError(c, http.StatusBadRequest, msgInvalidRedirectValue)
		}
		redirect = parsed
	}

	result, err := h.deliver(c, req)
	if err != nil {
		return err
	}

	if redirect {
		return c.Redirect(http.StatusFound, result.URL.URL)
	}
	return c.JSON(http.StatusOK, newDownloadResponse(result))
}

func (h *DownloadHandler) deliver(c echo.Context, req DownloadRequest) (*delivery.Result, error) {
	r := c.Request()
	return h.service.Deliver(r.Context(), delivery.Request{
		PostID:        strings.TrimSpace(req.PostID),
		FilePath:      strings.TrimSpace(req.FilePath),
		Authorization: r.Header.Get(echo.HeaderAuthorization),
		ClientIP:      c.RealIP(),
		UserAgent:     r.UserAgent(),
	})
}

func newDownloadResponse(result *delivery.Result) DownloadResponse {
	return DownloadResponse{
		Success:   true,
		URL:       result.URL.URL,
		ExpiresIn: result.URL.ExpiresInSeconds,
	}
}
