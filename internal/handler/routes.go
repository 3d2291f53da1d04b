package handler

import (
	"net/http"

	"github.com/Dan9191/user-service/internal/middleware"
	"github.com/gorilla/mux"
)

// Routes wires the handlers into a router
func (h *Handler) Routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(h.log))

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/users", h.ListUsers).Methods(http.MethodGet)
	api.HandleFunc("/users", h.CreateUser).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}", h.UpdateUser).Methods(http.MethodPut)

	r.Handle("/superMiddleware", middleware.Hello(h.log)(http.HandlerFunc(h.HelloWorld))).Methods(http.MethodGet)

	return r
}
