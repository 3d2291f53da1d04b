package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/Dan9191/user-service/internal/models"
	"github.com/Dan9191/user-service/internal/repository"
	"github.com/Dan9191/user-service/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// UserService is the business layer the handlers call
type UserService interface {
	ListUsers(ctx context.Context) ([]models.Row, error)
	CreateUser(ctx context.Context, fields map[string]any) (models.Row, error)
	UpdateUser(ctx context.Context, id string, fields map[string]any) (models.Row, error)
}

type Handler struct {
	svc UserService
	log *logrus.Logger
}

func NewHandler(svc UserService, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// ListUsers handles GET /api/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, users)
}

// CreateUser handles POST /api/users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	body, ok := h.decodeUser(w, r)
	if !ok {
		return
	}

	user, err := h.svc.CreateUser(r.Context(), body)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Location", location(r, user))
	h.writeJSON(w, http.StatusCreated, user)
}

// UpdateUser handles PUT /api/users/{id}
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	body, ok := h.decodeUser(w, r)
	if !ok {
		return
	}

	user, err := h.svc.UpdateUser(r.Context(), id, body)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Location", location(r, user))
	h.writeJSON(w, http.StatusOK, user)
}

// HelloWorld is the terminal stage of GET /superMiddleware
func (h *Handler) HelloWorld(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "Hello world")
}

// decodeUser parses the request body and runs the field checks.
// It writes the 422 response itself and reports false when they fail.
func (h *Handler) decodeUser(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	body, err := decodeBody(r)
	if err != nil {
		h.log.WithError(err).Debug("Unreadable request body")
		body = map[string]any{}
	}

	if errs := validateUser(body); len(errs) > 0 {
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errs})
		return nil, false
	}
	return body, true
}

// decodeBody accepts JSON and urlencoded forms; any other content leaves
// the body empty so field checks fail
func decodeBody(r *http.Request) (map[string]any, error) {
	body := map[string]any{}
	if r.Body == nil || r.ContentLength == 0 {
		return body, nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			return nil, fmt.Errorf("failed to decode json body: %w", err)
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("failed to parse form body: %w", err)
		}
		for k, v := range r.PostForm {
			if len(v) == 1 {
				body[k] = v[0]
			} else {
				body[k] = v
			}
		}
	}
	return body, nil
}

// location joins the request host and URI with the user's id
func location(r *http.Request, user models.Row) string {
	return fmt.Sprintf("http://%s%s/%v", r.Host, r.URL.RequestURI(), user.ID())
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrEmailExists) {
		h.writeJSON(w, http.StatusConflict, map[string]string{"error": service.ErrEmailExists.Error()})
		return
	}

	resp := map[string]string{"error": err.Error()}
	var se *repository.StorageError
	if errors.As(err, &se) {
		resp["error"] = se.Message
		resp["sql"] = se.SQL
	}
	h.writeJSON(w, http.StatusInternalServerError, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WithError(err).Error("Failed to encode response")
	}
}
