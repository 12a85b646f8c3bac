package book

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"libraryapi/internal/httpx"
	"libraryapi/internal/platform/paging"
)

const (
	maxTitleLen = 100
	maxGenreLen = 50
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

type createBookRequest struct {
	Title             string  `json:"title" validate:"required,max=100"`
	Genre             *string `json:"genre" validate:"omitempty,max=50"`
	YearOfPublication *int    `json:"year_of_publication"`
	AuthorID          *int64  `json:"author_id" validate:"omitempty,gt=0"`
}

// List handles GET /books
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := h.service.List(r.Context(), query.Get("genre"), paging.FromQuery(query))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

// Get handles GET /books/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.NotFound(w, r, "Book not found")
		return
	}

	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

// Create handles POST /books
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteDecodeError(w, r, err)
		return
	}
	if details := httpx.ValidateStruct(req); details != nil {
		httpx.ValidationFailed(w, r, details)
		return
	}

	b, err := h.service.Create(r.Context(), NewBook{
		Title:             req.Title,
		Genre:             req.Genre,
		YearOfPublication: req.YearOfPublication,
		AuthorID:          req.AuthorID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSONMessage(w, http.StatusCreated, fmt.Sprintf("Book %s has been created", b.Title), b.ID)
}

// Update handles PUT /books/{id}. Only keys present in the body are applied.
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.NotFound(w, r, "Book not found")
		return
	}

	var p Patch
	if err := httpx.DecodeJSON(r, &p); err != nil {
		httpx.WriteDecodeError(w, r, err)
		return
	}
	if details := validatePatch(p); details != nil {
		httpx.ValidationFailed(w, r, details)
		return
	}

	if _, err := h.service.Update(r.Context(), id, p); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSONMessage(w, http.StatusOK, fmt.Sprintf("Book with ID %d has been updated", id), 0)
}

// Delete handles DELETE /books/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.NotFound(w, r, "Book not found")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSONMessage(w, http.StatusOK, fmt.Sprintf("Book with ID %d has been deleted", id), 0)
}

func (h *HTTPHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.NotFound(w, r, "Book not found")
	case errors.Is(err, ErrTitleRequired):
		httpx.ValidationFailed(w, r, []httpx.ErrorDetail{{Field: "title", Message: "title is required"}})
	case errors.Is(err, ErrAuthorNotFound):
		httpx.ValidationFailed(w, r, []httpx.ErrorDetail{{Field: "author_id", Message: "author_id does not match an existing author"}})
	default:
		h.logger.ErrorContext(r.Context(), "book request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", httpx.RequestIDFrom(r),
		)
		httpx.InternalError(w, r)
	}
}

// validatePatch applies the create-time length and range rules to the keys
// present in p.
func validatePatch(p Patch) []httpx.ErrorDetail {
	var details []httpx.ErrorDetail
	if p.Title.Value != nil && utf8.RuneCountInString(*p.Title.Value) > maxTitleLen {
		details = append(details, httpx.ErrorDetail{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", maxTitleLen)})
	}
	if p.Genre.Value != nil && utf8.RuneCountInString(*p.Genre.Value) > maxGenreLen {
		details = append(details, httpx.ErrorDetail{Field: "genre", Message: fmt.Sprintf("genre must be at most %d characters", maxGenreLen)})
	}
	if p.AuthorID.Value != nil && *p.AuthorID.Value < 1 {
		details = append(details, httpx.ErrorDetail{Field: "author_id", Message: "author_id must be greater than 0"})
	}
	return details
}
