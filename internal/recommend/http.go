// Copyright (c) 2026 StreamAdvisor. All rights reserved.

package recommend

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/streamadvisor/streamadvisor/internal/platform/request"
	"github.com/streamadvisor/streamadvisor/internal/platform/respond"
)

// Handler exposes recommendations over HTTP.
//
// The route is public: anonymous callers get the rating-ranked catalog,
// authenticated callers get their personalized ranking.
type Handler struct {
	service *Service
}

// NewHandler constructs the recommendation HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router mounted at /recommendations.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.list)
	return router
}

// list handles GET /recommendations.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID := ""
	if identity := requestutil.Identity(request); identity != nil {
		userID = identity.UserID
	}

	recommendations, err := handler.service.ForUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, recommendations)
}
