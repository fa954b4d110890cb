package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/opencurate/resource-board/pkg/resourceboard"
)

// ResourceHandler handles HTTP requests for resources using pkg/resourceboard
type ResourceHandler struct {
	service resourceboard.Service
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(service resourceboard.Service) *ResourceHandler {
	return &ResourceHandler{service: service}
}

// Routes returns the routes for resources
func (h *ResourceHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateResource)
	r.Get("/", h.ListResources)
	r.Patch("/{id}", h.PublishResource)

	return r
}

// TopicRoutes returns the read-only routes for the topic directory
func (h *ResourceHandler) TopicRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListTopics)

	return r
}

// CreateResource creates a new draft resource
func (h *ResourceHandler) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req resourceboard.CreateResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	principal := PrincipalFromContext(r.Context())
	view, err := h.service.CreateResource(r.Context(), principal, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	slog.Info("Resource created", "resource_id", view.ID, "source", view.Source)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, view)
}

// ListResources lists published resources, or drafts for superusers
// requesting them
func (h *ResourceHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	drafts, _ := strconv.ParseBool(r.URL.Query().Get("drafts"))

	principal := PrincipalFromContext(r.Context())
	views, err := h.service.ListResources(r.Context(), principal, resourceboard.ResourceFilter{DraftsOnly: drafts})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	render.JSON(w, r, views)
}

// PublishResource moves a draft resource to published
func (h *ResourceHandler) PublishResource(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("Invalid resource ID", "id", chi.URLParam(r, "id"), "error", err)
		http.Error(w, "Invalid resource ID", http.StatusBadRequest)
		return
	}

	var payload resourceboard.PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	principal := PrincipalFromContext(r.Context())
	view, err := h.service.PublishResource(r.Context(), principal, id, payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	slog.Info("Resource published", "resource_id", view.ID)
	render.JSON(w, r, view)
}

// ListTopics lists the topics available for submissions
func (h *ResourceHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.service.ListTopics(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if topics == nil {
		topics = []*resourceboard.Topic{}
	}

	render.JSON(w, r, topics)
}

// writeError maps service errors to HTTP responses. Validation failures
// carry the field map as JSON; conflicts are plain text; everything
// unexpected is logged and reported without internal detail.
func (h *ResourceHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *resourceboard.ValidationError
	switch {
	case errors.As(err, &verr):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, verr.Fields)
	case errors.Is(err, resourceboard.ErrUnauthorized):
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	case errors.Is(err, resourceboard.ErrDuplicateURL), errors.Is(err, resourceboard.ErrAlreadyPublished):
		http.Error(w, "Conflict", http.StatusConflict)
	case errors.Is(err, resourceboard.ErrResourceNotFound):
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	default:
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
