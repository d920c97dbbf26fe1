package handler

import (
	"net/http"

	"innkeep/internal/units/service"
	httputil "innkeep/pkg/http"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type UnitHandler struct {
	service service.UnitService
	log     *logger.Logger
}

func NewUnitHandler(service service.UnitService, log *logger.Logger) *UnitHandler {
	return &UnitHandler{
		service: service,
		log:     log,
	}
}

func (h *UnitHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var unit model.Unit
	if err := httputil.DecodeJSON(r, &unit); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.service.Create(r.Context(), &unit); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, unit); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *UnitHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	unit, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, unit); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UnitHandler) ListByHotel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListByHotel", err)
		return
	}

	units, total, err := h.service.ListByHotel(r.Context(), ps.ByName("hotel_id"), limit, offset)
	if err != nil {
		h.writeError(w, "ListByHotel", err)
		return
	}

	if err := httputil.WritePaginated(w, units, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListByHotel", "operation", "WritePaginated", "error", err)
	}
}

func (h *UnitHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.UnitUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	unit, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, unit); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UnitHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *UnitHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/units", h.Create)
	router.GET("/api/v1/units/id/:id", h.GetByID)
	router.PATCH("/api/v1/units/id/:id", h.Update)
	router.GET("/api/v1/hotels/:hotel_id/units", h.ListByHotel)
}
