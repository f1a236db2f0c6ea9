package tasks

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/taskvault/taskvault/internal/auth"
	"github.com/taskvault/taskvault/internal/authz"
	"github.com/taskvault/taskvault/internal/platform/httpx"
)

// Handler exposes the user-scoped task CRUD endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	gate     *authz.Gate
	authmw   authz.Middleware
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authmw authz.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		gate:     authz.NewGate(ownerLookup{repo: service.repo}),
		authmw:   authmw,
		validate: validator.New(),
	}
}

// ownerLookup adapts the repository to the ownership gate contract: absence
// is reported as found=false, anything else is an infrastructure failure.
type ownerLookup struct {
	repo RepositoryPort
}

func (l ownerLookup) FindByID(ctx context.Context, id int64) (authz.Resource, bool, error) {
	task, err := l.repo.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return task, true, nil
}

// MountRoutes registers task routes under /{user_id}/tasks.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/{user_id}/tasks", func(r chi.Router) {
		r.Use(h.authmw.RequireUser)
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Route("/{task_id}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Put("/", h.replace)
			r.Patch("/", h.patch)
			r.Delete("/", h.remove)
		})
	})
}

type createRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

type replaceRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Complete    *bool   `json:"complete" validate:"required"`
}

type patchRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Complete    *bool   `json:"complete"`
}

type listResponse struct {
	Tasks []Task `json:"tasks"`
	Count int    `json:"count"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	list, err := h.service.List(r.Context(), principal.SubjectID)
	if err != nil {
		h.serverError(w, r, "list tasks", err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Tasks: list, Count: len(list)})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Validation Error", "Request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Validation Error", "Title is required and must be 1-200 characters; description may not exceed 1000")
		return
	}

	task, err := h.service.Create(r.Context(), principal.SubjectID, req.Title, req.Description)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			httpx.Error(w, http.StatusConflict, "Conflict", "A task with this title already exists")
			return
		}
		h.serverError(w, r, "create task", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, task)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.authorizeResource(w, r)
	if !ok {
		return
	}
	task, err := h.service.Get(r.Context(), taskID)
	if err != nil {
		h.taskError(w, r, "get task", err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *Handler) replace(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.authorizeResource(w, r)
	if !ok {
		return
	}

	var req replaceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Validation Error", "Request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Validation Error", "Title, description and complete must all be provided and valid")
		return
	}

	task, err := h.service.Replace(r.Context(), taskID, req.Title, req.Description, *req.Complete)
	if err != nil {
		h.taskError(w, r, "replace task", err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *Handler) patch(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.authorizeResource(w, r)
	if !ok {
		return
	}

	var req patchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Validation Error", "Request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Validation Error", "Provided fields must be valid: title 1-200 characters, description at most 1000")
		return
	}
	patch := Patch{Title: req.Title, Description: req.Description, Complete: req.Complete}
	if patch.IsZero() {
		httpx.Error(w, http.StatusBadRequest, "Validation Error", "No fields to update")
		return
	}

	task, err := h.service.Apply(r.Context(), taskID, patch)
	if err != nil {
		h.taskError(w, r, "patch task", err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.authorizeResource(w, r)
	if !ok {
		return
	}
	principal := auth.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), taskID, principal.SubjectID); err != nil {
		h.taskError(w, r, "delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// authorizeResource parses the task id and runs the ownership gate. It
// writes the response itself on denial or failure; callers proceed only when
// ok is true.
func (h *Handler) authorizeResource(w http.ResponseWriter, r *http.Request) (int64, bool) {
	taskID, err := strconv.ParseInt(chi.URLParam(r, "task_id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Validation Error", "Task id must be an integer")
		return 0, false
	}

	principal := auth.PrincipalFromContext(r.Context())
	outcome, err := h.gate.CheckResource(r.Context(), principal, taskID)
	if err != nil {
		h.serverError(w, r, "ownership check", err)
		return 0, false
	}
	if outcome.Denied {
		h.writeDenial(w, r, outcome)
		return 0, false
	}
	return taskID, true
}

func (h *Handler) writeDenial(w http.ResponseWriter, r *http.Request, o authz.Outcome) {
	if h.logger != nil {
		h.logger.Warn("task access denied",
			slog.String("reason", string(o.Reason)),
			slog.String("path", r.URL.Path),
		)
	}
	switch o.Reason {
	case authz.ReasonResourceNotFound:
		httpx.Error(w, http.StatusNotFound, "Not Found", "Task not found")
	case authz.ReasonNotOwner:
		httpx.Error(w, http.StatusForbidden, "Forbidden", "User does not have access to this task")
	default:
		authz.WriteDenial(w, o)
	}
}

// taskError handles post-gate repository errors. A not-found here means the
// task vanished between the ownership check and the operation; it still maps
// to 404.
func (h *Handler) taskError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "Not Found", "Task not found")
	case errors.Is(err, ErrDuplicate):
		httpx.Error(w, http.StatusConflict, "Conflict", "A task with this title already exists")
	default:
		h.serverError(w, r, op, err)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if h.logger != nil {
		h.logger.Error(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
