package users

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/bissquit/runningsport/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for the users module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new users handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: newValidator(),
	}
}

// RegisterPublicRoutes registers routes that do not require a token.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/create", h.Create)
	r.Post("/authenticate", h.Authenticate)
}

// RegisterProtectedRoutes registers routes that must sit behind the auth guard.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{email}/detail", h.Get)
	r.Put("/{email}/update", h.Update)
	r.Delete("/{email}/delete", h.Delete)
}

// CreateRequest represents the request body for creating a user.
type CreateRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,maxbytes=72"`
	FirstName string `json:"firstname" validate:"max=255,nonul"`
	LastName  string `json:"lastname" validate:"max=255,nonul"`
	BirthDate string `json:"birthdate" validate:"omitempty,calendardate"`
	Phone     string `json:"phone" validate:"max=64,nonul"`
}

// UpdateRequest represents the request body for updating a user.
// Any other field in the body is ignored.
type UpdateRequest struct {
	FirstName *string `json:"firstname" validate:"omitempty,max=255,nonul"`
	LastName  *string `json:"lastname" validate:"omitempty,max=255,nonul"`
	Phone     *string `json:"phone" validate:"omitempty,max=64,nonul"`
}

// AuthenticateRequest represents the credential exchange body.
type AuthenticateRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

var (
	lookupErrors = []httputil.ErrorMapping{
		{Error: ErrUserNotFound, Status: http.StatusNotFound},
		{Error: ErrNotApplied, Status: http.StatusBadRequest},
		{Error: ErrInvalidInput, Status: http.StatusBadRequest, Message: ErrInvalidInput.Error()},
	}
	createErrors = []httputil.ErrorMapping{
		{Error: ErrEmailExists, Status: http.StatusConflict},
		{Error: ErrPasswordTooLong, Status: http.StatusBadRequest},
		{Error: ErrInvalidInput, Status: http.StatusBadRequest, Message: ErrInvalidInput.Error()},
	}
	authenticateErrors = []httputil.ErrorMapping{
		{Error: ErrInvalidCredentials, Status: http.StatusBadRequest},
	}
)

// List handles GET / request.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListActive(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.Success(w, http.StatusOK, list)
}

// Create handles POST /create request.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, err := h.service.Create(r.Context(), CreateInput(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, createErrors)
		return
	}

	httputil.Success(w, http.StatusCreated, user)
}

// Get handles GET /{email}/detail request.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetByEmail(r.Context(), emailParam(r))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, lookupErrors)
		return
	}

	httputil.Success(w, http.StatusOK, user)
}

// Update handles PUT /{email}/update request.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, err := h.service.UpdateByEmail(r.Context(), emailParam(r), UpdateInput(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, lookupErrors)
		return
	}

	httputil.Success(w, http.StatusOK, user)
}

// Delete handles DELETE /{email}/delete request.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteByEmail(r.Context(), emailParam(r)); err != nil {
		httputil.HandleError(r.Context(), w, err, lookupErrors)
		return
	}

	httputil.NoContent(w)
}

// Authenticate handles POST /authenticate request.
func (h *Handler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req AuthenticateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	result, err := h.service.Authenticate(r.Context(), Credentials(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, authenticateErrors)
		return
	}

	httputil.Success(w, http.StatusOK, result)
}

// emailParam returns the decoded {email} path segment.
func emailParam(r *http.Request) string {
	raw := chi.URLParam(r, "email")
	if email, err := url.PathUnescape(raw); err == nil {
		return email
	}
	return raw
}
