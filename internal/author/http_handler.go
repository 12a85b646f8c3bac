package author

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"libraryapi/internal/httpx"
	"libraryapi/internal/platform/paging"
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

type createAuthorRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// List handles GET /authors
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), paging.FromQuery(r.URL.Query()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

// Get handles GET /authors/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.NotFound(w, r, "Author not found")
		return
	}
	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

// Create handles POST /authors
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAuthorRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteDecodeError(w, r, err)
		return
	}
	if details := httpx.ValidateStruct(req); details != nil {
		httpx.ValidationFailed(w, r, details)
		return
	}

	a, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSONMessage(w, http.StatusCreated, fmt.Sprintf("Author %s has been created", a.Name), a.ID)
}

func (h *HTTPHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.NotFound(w, r, "Author not found")
	case errors.Is(err, ErrNameRequired):
		httpx.ValidationFailed(w, r, []httpx.ErrorDetail{{Field: "name", Message: "name is required"}})
	default:
		h.logger.ErrorContext(r.Context(), "author request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", httpx.RequestIDFrom(r),
		)
		httpx.InternalError(w, r)
	}
}
