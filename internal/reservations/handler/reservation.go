package handler

import (
	"net/http"
	"strconv"

	"innkeep/internal/reservations/service"
	apperrors "innkeep/pkg/errors"
	httputil "innkeep/pkg/http"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

func (h *ReservationHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	checkIn, err := httputil.ParseDateParam(r, "check_in")
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}
	checkOut, err := httputil.ParseDateParam(r, "check_out")
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	filter := model.AvailabilityFilter{Kind: model.UnitKind(r.URL.Query().Get("kind"))}
	switch filter.Kind {
	case "", model.UnitRoom, model.UnitEventSpace:
	default:
		h.writeError(w, "CheckAvailability", apperrors.InvalidInput("kind must be one of: room, event_space"))
		return
	}
	if s := r.URL.Query().Get("guests"); s != "" {
		guests, err := strconv.Atoi(s)
		if err != nil || guests < 0 {
			h.writeError(w, "CheckAvailability", apperrors.InvalidInput("invalid guests parameter: "+s))
			return
		}
		filter.Guests = guests
	}

	units, err := h.service.CheckAvailability(r.Context(), ps.ByName("hotel_id"), checkIn, checkOut, filter)
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, units); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) QuotePrice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.QuoteRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "QuotePrice", err)
		return
	}

	quote, err := h.service.QuotePrice(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "QuotePrice", err)
		return
	}

	if err := httputil.WriteSuccess(w, quote); err != nil {
		h.log.Error("failed to write success response", "handler", "QuotePrice", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ReservationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	reservation, err := h.service.CreateReservation(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, reservation); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	h.respond(w, "GetByID", reservation, err)
}

func (h *ReservationHandler) GetByReferenceCode(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.GetByReferenceCode(r.Context(), ps.ByName("code"))
	h.respond(w, "GetByReferenceCode", reservation, err)
}

func (h *ReservationHandler) ListByUnit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListByUnit", err)
		return
	}

	reservations, total, err := h.service.ListByUnit(r.Context(), ps.ByName("id"), limit, offset)
	if err != nil {
		h.writeError(w, "ListByUnit", err)
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListByUnit", "operation", "WritePaginated", "error", err)
	}
}

func (h *ReservationHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var action model.StaffAction
	if err := httputil.DecodeJSON(r, &action); err != nil {
		h.writeError(w, "Confirm", err)
		return
	}
	reservation, err := h.service.Confirm(r.Context(), ps.ByName("id"), &action)
	h.respond(w, "Confirm", reservation, err)
}

func (h *ReservationHandler) CheckIn(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var action model.StayAction
	if err := httputil.DecodeJSON(r, &action); err != nil {
		h.writeError(w, "CheckIn", err)
		return
	}
	reservation, err := h.service.CheckIn(r.Context(), ps.ByName("id"), &action)
	h.respond(w, "CheckIn", reservation, err)
}

func (h *ReservationHandler) CheckOut(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var action model.StayAction
	if err := httputil.DecodeJSON(r, &action); err != nil {
		h.writeError(w, "CheckOut", err)
		return
	}
	reservation, err := h.service.CheckOut(r.Context(), ps.ByName("id"), &action)
	h.respond(w, "CheckOut", reservation, err)
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var action model.StaffAction
	if err := httputil.DecodeJSON(r, &action); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}
	reservation, err := h.service.Cancel(r.Context(), ps.ByName("id"), &action)
	h.respond(w, "Cancel", reservation, err)
}

func (h *ReservationHandler) MarkNoShow(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var action model.StaffAction
	if err := httputil.DecodeJSON(r, &action); err != nil {
		h.writeError(w, "MarkNoShow", err)
		return
	}
	reservation, err := h.service.MarkNoShow(r.Context(), ps.ByName("id"), &action)
	h.respond(w, "MarkNoShow", reservation, err)
}

func (h *ReservationHandler) RecordPayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.PaymentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "RecordPayment", err)
		return
	}
	reservation, err := h.service.RecordPayment(r.Context(), ps.ByName("id"), &req)
	h.respond(w, "RecordPayment", reservation, err)
}

func (h *ReservationHandler) RecordRefund(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.PaymentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "RecordRefund", err)
		return
	}
	reservation, err := h.service.RecordRefund(r.Context(), ps.ByName("id"), &req)
	h.respond(w, "RecordRefund", reservation, err)
}

func (h *ReservationHandler) Reschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.RescheduleRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Reschedule", err)
		return
	}
	reservation, err := h.service.Reschedule(r.Context(), ps.ByName("id"), &req)
	h.respond(w, "Reschedule", reservation, err)
}

func (h *ReservationHandler) respond(w http.ResponseWriter, handler string, reservation *model.Reservation, err error) {
	if err != nil {
		h.writeError(w, handler, err)
		return
	}
	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/hotels/:hotel_id/availability", h.CheckAvailability)
	router.POST("/api/v1/units/id/:id/quote", h.QuotePrice)
	router.GET("/api/v1/units/id/:id/reservations", h.ListByUnit)

	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
	router.GET("/api/v1/reservations/code/:code", h.GetByReferenceCode)

	router.POST("/api/v1/reservations/id/:id/confirm", h.Confirm)
	router.POST("/api/v1/reservations/id/:id/check-in", h.CheckIn)
	router.POST("/api/v1/reservations/id/:id/check-out", h.CheckOut)
	router.POST("/api/v1/reservations/id/:id/cancel", h.Cancel)
	router.POST("/api/v1/reservations/id/:id/no-show", h.MarkNoShow)
	router.POST("/api/v1/reservations/id/:id/payments", h.RecordPayment)
	router.POST("/api/v1/reservations/id/:id/refunds", h.RecordRefund)
	router.POST("/api/v1/reservations/id/:id/reschedule", h.Reschedule)
}
