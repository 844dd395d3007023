package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"staybook/internal/hotels/service"
	httputil "staybook/pkg/http"
	"staybook/pkg/logger"
	"staybook/pkg/model"
)

type HotelHandler struct {
	service service.HotelService
	log     *logger.Logger
}

func NewHotelHandler(service service.HotelService, log *logger.Logger) *HotelHandler {
	return &HotelHandler{
		service: service,
		log:     log,
	}
}

func (h *HotelHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	hotels, err := h.service.Search(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WriteSuccess(w, hotels); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

func (h *HotelHandler) Detail(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query := r.URL.Query()
	detail, err := h.service.Detail(r.Context(), ps.ByName("id"), query.Get("check_in"), query.Get("check_out"))
	if err != nil {
		h.writeError(w, "Detail", err)
		return
	}

	if err := httputil.WriteSuccess(w, detail); err != nil {
		h.log.Error("failed to write success response", "handler", "Detail", "operation", "WriteSuccess", "error", err)
	}
}

func (h *HotelHandler) SearchAvailable(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	guests, err := httputil.QueryPositiveInt(r, "guests")
	if err != nil {
		h.writeError(w, "SearchAvailable", err)
		return
	}

	query := r.URL.Query()
	results, err := h.service.SearchAvailable(r.Context(), service.SearchQuery{
		City:     query.Get("city"),
		CheckIn:  query.Get("check_in"),
		CheckOut: query.Get("check_out"),
		Guests:   guests,
	})
	if err != nil {
		h.writeError(w, "SearchAvailable", err)
		return
	}

	if err := httputil.WriteSuccess(w, results); err != nil {
		h.log.Error("failed to write success response", "handler", "SearchAvailable", "operation", "WriteSuccess", "error", err)
	}
}

func (h *HotelHandler) CreateHotel(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var hotel model.Hotel
	if !h.decode(w, r, "CreateHotel", &hotel) {
		return
	}

	if err := h.service.CreateHotel(r.Context(), &hotel); err != nil {
		h.writeError(w, "CreateHotel", err)
		return
	}

	if err := httputil.WriteCreated(w, hotel); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateHotel", "operation", "WriteCreated", "error", err)
	}
}

func (h *HotelHandler) GetAllHotels(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAllHotels", err)
		return
	}

	hotels, total, err := h.service.GetAllHotels(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAllHotels", err)
		return
	}

	if err := httputil.WritePaginated(w, hotels, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAllHotels", "operation", "WritePaginated", "error", err)
	}
}

func (h *HotelHandler) UpdateHotel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var hotel model.Hotel
	if !h.decode(w, r, "UpdateHotel", &hotel) {
		return
	}

	if err := h.service.UpdateHotel(r.Context(), ps.ByName("id"), &hotel); err != nil {
		h.writeError(w, "UpdateHotel", err)
		return
	}

	if err := httputil.WriteSuccess(w, hotel); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateHotel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *HotelHandler) DeleteHotel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteHotel(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "DeleteHotel", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *HotelHandler) CreateRoomType(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var rt model.RoomType
	if !h.decode(w, r, "CreateRoomType", &rt) {
		return
	}

	if err := h.service.CreateRoomType(r.Context(), &rt); err != nil {
		h.writeError(w, "CreateRoomType", err)
		return
	}

	if err := httputil.WriteCreated(w, rt); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateRoomType", "operation", "WriteCreated", "error", err)
	}
}

func (h *HotelHandler) GetAllRoomTypes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAllRoomTypes", err)
		return
	}

	roomTypes, total, err := h.service.GetAllRoomTypes(r.Context(), r.URL.Query().Get("hotel_id"), limit, offset)
	if err != nil {
		h.writeError(w, "GetAllRoomTypes", err)
		return
	}

	if err := httputil.WritePaginated(w, roomTypes, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAllRoomTypes", "operation", "WritePaginated", "error", err)
	}
}

func (h *HotelHandler) UpdateRoomType(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var rt model.RoomType
	if !h.decode(w, r, "UpdateRoomType", &rt) {
		return
	}

	if err := h.service.UpdateRoomType(r.Context(), ps.ByName("id"), &rt); err != nil {
		h.writeError(w, "UpdateRoomType", err)
		return
	}

	if err := httputil.WriteSuccess(w, rt); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateRoomType", "operation", "WriteSuccess", "error", err)
	}
}

func (h *HotelHandler) DeleteRoomType(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteRoomType(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "DeleteRoomType", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *HotelHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/hotels/search", h.Search)
	router.GET("/api/v1/hotels/id/:id", h.Detail)
	router.GET("/api/v1/search", h.SearchAvailable)

	router.POST("/api/v1/admin/hotels", h.CreateHotel)
	router.GET("/api/v1/admin/hotels", h.GetAllHotels)
	router.PUT("/api/v1/admin/hotels/id/:id", h.UpdateHotel)
	router.DELETE("/api/v1/admin/hotels/id/:id", h.DeleteHotel)

	router.POST("/api/v1/admin/rooms", h.CreateRoomType)
	router.GET("/api/v1/admin/rooms", h.GetAllRoomTypes)
	router.PUT("/api/v1/admin/rooms/id/:id", h.UpdateRoomType)
	router.DELETE("/api/v1/admin/rooms/id/:id", h.DeleteRoomType)
}

func (h *HotelHandler) decode(w http.ResponseWriter, r *http.Request, handler string, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", writeErr)
		}
		return false
	}
	return true
}

func (h *HotelHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
