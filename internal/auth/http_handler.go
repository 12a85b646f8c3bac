package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"libraryapi/internal/httpx"
)

type HTTPHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewHTTPHandler(service *Service, logger *slog.Logger) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPHandler{service: service, logger: logger}
}

type LoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /login
// @Summary Log in
// @Description Exchange the configured username and password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginReq true "Login request"
// @Success 200 {object} Token
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 429 {object} httpx.ErrorResponse
// @Router /login [post]
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteDecodeError(w, r, err)
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			h.logger.WarnContext(r.Context(), "login rejected", "request_id", httpx.RequestIDFrom(r))
			httpx.Unauthorized(w, r, "Bad username or password")
			return
		}
		h.logger.ErrorContext(r.Context(), "login failed", "error", err, "request_id", httpx.RequestIDFrom(r))
		httpx.InternalError(w, r)
		return
	}

	httpx.JSON(w, http.StatusOK, token)
}
