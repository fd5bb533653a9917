package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Katty020/Book-Review-Platform/internal/auth"
	"github.com/Katty020/Book-Review-Platform/internal/domain"
	"github.com/Katty020/Book-Review-Platform/internal/repository"
	"github.com/Katty020/Book-Review-Platform/internal/service"
	apperrors "github.com/Katty020/Book-Review-Platform/pkg/errors"
	"github.com/Katty020/Book-Review-Platform/pkg/httputil"
	"github.com/Katty020/Book-Review-Platform/pkg/validator"
)

// BookHandler handles HTTP requests for catalog endpoints.
type BookHandler struct {
	service *service.BookService
	logger  *slog.Logger
}

// NewBookHandler creates a new book HTTP handler.
func NewBookHandler(svc *service.BookService, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateBookRequest is the JSON request body for adding a book.
type CreateBookRequest struct {
	Title  string `json:"title" validate:"required,notblank,max=500"`
	Author string `json:"author" validate:"required,notblank,max=200"`
	Genre  string `json:"genre" validate:"required,notblank,max=100"`
}

// ListBooks handles GET /api/v1/books
// @Summary List books
// @Description Returns a paginated page of the catalog with aggregate ratings
// @Tags books
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page (max 100)" default(12)
// @Param search query string false "Case-insensitive substring match on title or author"
// @Param genre query string false "Exact genre filter"
// @Param author query string false "Exact author filter"
// @Param sort query string false "Sort order" Enums(newest,title,rating)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/books [get]
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	filter := repository.BookFilter{
		Page:    1,
		PerPage: 12,
	}

	if v := r.URL.Query().Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "page must be a valid positive integer"},
			})
			return
		}
		filter.Page = page
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil || perPage < 1 || perPage > 100 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "per_page must be a valid integer between 1 and 100"},
			})
			return
		}
		filter.PerPage = perPage
	}
	if v := r.URL.Query().Get("search"); v != "" {
		filter.Search = &v
	}
	if v := r.URL.Query().Get("genre"); v != "" {
		filter.Genre = &v
	}
	if v := r.URL.Query().Get("author"); v != "" {
		filter.Author = &v
	}
	if v := r.URL.Query().Get("sort"); v != "" {
		if !domain.IsValidSortKey(v) {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "sort must be one of: newest, title, rating"},
			})
			return
		}
		filter.Sort = v
	}

	result, err := h.service.ListBooks(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// FilterOptions handles GET /api/v1/books/filters
// @Summary Filter options
// @Description Returns the distinct genres and authors for filter controls
// @Tags books
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/books/filters [get]
func (h *BookHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.FilterOptions(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: opts})
}

// GetBook handles GET /api/v1/books/{id}
// @Summary Get book by ID
// @Description Returns a book with its aggregate ratings
// @Tags books
// @Produce json
// @Param id path string true "Book UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	book, err := h.service.GetBook(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: book})
}

// CreateBook handles POST /api/v1/books
// @Summary Add a book
// @Description Adds a book to the catalog attributed to the current user
// @Tags books
// @Accept json
// @Produce json
// @Param request body CreateBookRequest true "Book to add"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/books [post]
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.FromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("sign in to add a book"), h.logger)
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.CreateBookInput{
		Title:     req.Title,
		Author:    req.Author,
		Genre:     req.Genre,
		CreatedBy: session.UserID,
	}

	book, err := h.service.CreateBook(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: book})
}
