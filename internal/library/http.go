// Copyright (c) 2026 StreamAdvisor. All rights reserved.

package library

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/streamadvisor/streamadvisor/internal/platform/middleware"
	requestutil "github.com/streamadvisor/streamadvisor/internal/platform/request"
	"github.com/streamadvisor/streamadvisor/internal/platform/respond"
)

// Handler exposes the library service over HTTP. Every route requires an
// authenticated session.
type Handler struct {
	service *Service
}

// NewHandler constructs the library HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router mounted at /library.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/favorites", handler.listFavorites)
	router.Post("/favorites/{itemID}", handler.addFavorite)
	router.Delete("/favorites/{itemID}", handler.removeFavorite)
	router.Delete("/favorites", handler.clearFavorites)

	router.Get("/preferences", handler.getPreferences)
	router.Put("/preferences", handler.setPreferences)

	return router
}

// # Favorites

// listFavorites handles GET /library/favorites.
func (handler *Handler) listFavorites(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	items, err := handler.service.Favorites(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, items)
}

// addFavorite handles POST /library/favorites/{itemID}.
func (handler *Handler) addFavorite(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	itemID := requestutil.Param(request, "itemID")
	if err := handler.service.AddFavorite(request.Context(), userID, itemID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Return the refreshed collection so the client avoids a follow-up fetch.
	items, err := handler.service.Favorites(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, items)
}

// removeFavorite handles DELETE /library/favorites/{itemID}.
func (handler *Handler) removeFavorite(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	itemID := requestutil.Param(request, "itemID")
	if err := handler.service.RemoveFavorite(request.Context(), userID, itemID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// clearFavorites handles DELETE /library/favorites.
func (handler *Handler) clearFavorites(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	cleared, err := handler.service.ClearFavorites(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]int{"cleared": cleared})
}

// # Preferences

// getPreferences handles GET /library/preferences.
func (handler *Handler) getPreferences(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	preferences, err := handler.service.Preferences(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, preferences)
}

// setPreferences handles PUT /library/preferences.
func (handler *Handler) setPreferences(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Preferences
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	preferences, err := handler.service.SetPreferences(request.Context(), userID, input.Genres)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, preferences)
}
