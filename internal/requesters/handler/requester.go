package handler

import (
	"encoding/json"
	"net/http"

	"roomly/internal/requesters/service"
	httputil "roomly/pkg/http"
	"roomly/pkg/logger"
	"roomly/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type RequesterHandler struct {
	service service.RequesterService
	log     *logger.Logger
}

func NewRequesterHandler(service service.RequesterService, log *logger.Logger) *RequesterHandler {
	return &RequesterHandler{
		service: service,
		log:     log,
	}
}

func (h *RequesterHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var requester model.Requester
	if err := json.NewDecoder(r.Body).Decode(&requester); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &requester); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, requester); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *RequesterHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requester, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, requester); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *RequesterHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	// ?email= switches list to a single-result lookup.
	if email := r.URL.Query().Get("email"); email != "" {
		requester, err := h.service.GetByEmail(r.Context(), email)
		if err != nil {
			if writeErr := httputil.WriteError(w, err); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
			}
			return
		}
		if err := httputil.WriteSuccess(w, requester); err != nil {
			h.log.Error("failed to write success response", "handler", "GetAll", "error", err)
		}
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
		}
		return
	}

	requesters, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, requesters, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
	}
}

func (h *RequesterHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var requester model.Requester
	if err := json.NewDecoder(r.Body).Decode(&requester); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "error", writeErr)
		}
		return
	}

	if err := h.service.Update(r.Context(), ps.ByName("id"), &requester); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, requester); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

type deleteResponse struct {
	DeletedReservations int64 `json:"deleted_reservations"`
}

func (h *RequesterHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	deleted, err := h.service.Delete(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, deleteResponse{DeletedReservations: deleted}); err != nil {
		h.log.Error("failed to write success response", "handler", "Delete", "error", err)
	}
}

func (h *RequesterHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/requesters", h.Create)
	router.GET("/api/v1/requesters", h.GetAll)
	router.GET("/api/v1/requesters/id/:id", h.GetByID)
	router.PUT("/api/v1/requesters/id/:id", h.Update)
	router.DELETE("/api/v1/requesters/id/:id", h.Delete)
}
