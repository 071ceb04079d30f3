// Copyright (c) 2026 StreamAdvisor. All rights reserved.

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/streamadvisor/streamadvisor/internal/platform/request"
	"github.com/streamadvisor/streamadvisor/internal/platform/respond"
)

// Handler exposes the auth service over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs the auth HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router mounted at /auth.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Get("/session", handler.session)
	router.Post("/logout", handler.logout)

	return router
}

// register handles POST /auth/register. The response carries a live session
// token: a fresh account is signed in immediately.
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input RegisterInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.UserAgent = request.UserAgent()

	result, err := handler.service.Register(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, result)
}

// login handles POST /auth/login.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input LoginInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.UserAgent = request.UserAgent()

	result, err := handler.service.Login(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

// session handles GET /auth/session: verifies the bearer token and returns
// the current account with the (freshly slid) expiry.
func (handler *Handler) session(writer http.ResponseWriter, request *http.Request) {
	token, err := requestutil.BearerToken(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	state, err := handler.service.VerifySession(request.Context(), token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, state)
}

// logout handles POST /auth/logout. Idempotent.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	token, err := requestutil.BearerToken(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Logout(request.Context(), token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"message": "Logged out successfully"})
}
