package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"staybook/internal/bookings/export"
	"staybook/internal/bookings/service"
	httputil "staybook/pkg/http"
	"staybook/pkg/logger"
	"staybook/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	confirmation, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, confirmation); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByReference(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByReference(r.Context(), ps.ByName("reference"))
	if err != nil {
		h.writeError(w, "GetByReference", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByReference", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	check, err := h.service.CheckAvailability(r.Context(), query.Get("room_id"), query.Get("check_in"), query.Get("check_out"))
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, check); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Quote(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	quote, err := h.service.Quote(r.Context(), query.Get("room_id"), query.Get("check_in"), query.Get("check_out"))
	if err != nil {
		h.writeError(w, "Quote", err)
		return
	}

	if err := httputil.WriteSuccess(w, quote); err != nil {
		h.log.Error("failed to write success response", "handler", "Quote", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	bookings, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *BookingHandler) Export(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	data, err := h.service.Export(r.Context())
	if err != nil {
		h.writeError(w, "Export", err)
		return
	}

	filename := fmt.Sprintf("bookings-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	if err := httputil.WriteAttachment(w, export.ContentType, filename, data); err != nil {
		h.log.Error("failed to write attachment", "handler", "Export", "operation", "WriteAttachment", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings/reference/:reference", h.GetByReference)
	router.GET("/api/v1/bookings/availability", h.CheckAvailability)
	router.GET("/api/v1/bookings/quote", h.Quote)

	router.GET("/api/v1/admin/bookings", h.GetAll)
	router.GET("/api/v1/admin/bookings/export", h.Export)
	router.DELETE("/api/v1/admin/bookings/id/:id", h.Delete)
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
