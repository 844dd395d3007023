package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"staybook/internal/hotels/service"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/logger"
	"staybook/pkg/model"
)

type mockHotelService struct {
	service.HotelService

	detailFunc          func(ctx context.Context, id, checkIn, checkOut string) (*model.HotelDetail, error)
	searchAvailableFunc func(ctx context.Context, q service.SearchQuery) ([]*model.SearchResult, error)
	createHotelFunc     func(ctx context.Context, h *model.Hotel) error
	updateHotelFunc     func(ctx context.Context, id string, h *model.Hotel) error
	getAllHotelsFunc    func(ctx context.Context, limit int, offset int64) ([]*model.Hotel, int64, error)
	deleteRoomTypeFunc  func(ctx context.Context, id string) error
}

func (m *mockHotelService) Detail(ctx context.Context, id, checkIn, checkOut string) (*model.HotelDetail, error) {
	return m.detailFunc(ctx, id, checkIn, checkOut)
}

func (m *mockHotelService) SearchAvailable(ctx context.Context, q service.SearchQuery) ([]*model.SearchResult, error) {
	return m.searchAvailableFunc(ctx, q)
}

func (m *mockHotelService) CreateHotel(ctx context.Context, h *model.Hotel) error {
	return m.createHotelFunc(ctx, h)
}

func (m *mockHotelService) UpdateHotel(ctx context.Context, id string, h *model.Hotel) error {
	return m.updateHotelFunc(ctx, id, h)
}

func (m *mockHotelService) GetAllHotels(ctx context.Context, limit int, offset int64) ([]*model.Hotel, int64, error) {
	return m.getAllHotelsFunc(ctx, limit, offset)
}

func (m *mockHotelService) DeleteRoomType(ctx context.Context, id string) error {
	return m.deleteRoomTypeFunc(ctx, id)
}

func newRouter(svc service.HotelService) *httprouter.Router {
	router := httprouter.New()
	NewHotelHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDetail_PassesQuery(t *testing.T) {
	var gotID, gotIn, gotOut string
	svc := &mockHotelService{
		detailFunc: func(ctx context.Context, id, checkIn, checkOut string) (*model.HotelDetail, error) {
			gotID, gotIn, gotOut = id, checkIn, checkOut
			return &model.HotelDetail{Hotel: model.Hotel{ID: id, Name: "Harbor Inn"}, Rooms: []*model.RoomAvailability{}}, nil
		},
	}

	w := serve(newRouter(svc), http.MethodGet, "/api/v1/hotels/id/abc?check_in=2030-01-10&check_out=2030-01-12", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotID != "abc" || gotIn != "2030-01-10" || gotOut != "2030-01-12" {
		t.Errorf("unexpected args %q %q %q", gotID, gotIn, gotOut)
	}

	var body struct {
		Data model.HotelDetail `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Name != "Harbor Inn" {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestDetail_ErrorCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid format", apperrors.InvalidFormat("bad date"), http.StatusBadRequest, apperrors.CodeInvalidFormat},
		{"invalid range", apperrors.InvalidRange("inverted"), http.StatusBadRequest, apperrors.CodeInvalidRange},
		{"not found", apperrors.NotFoundWithID("Hotel", "x"), http.StatusNotFound, apperrors.CodeNotFound},
		{"store", apperrors.StoreFailure("db down", nil), http.StatusServiceUnavailable, apperrors.CodeStoreError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockHotelService{
				detailFunc: func(ctx context.Context, id, checkIn, checkOut string) (*model.HotelDetail, error) {
					return nil, tt.err
				},
			}

			w := serve(newRouter(svc), http.MethodGet, "/api/v1/hotels/id/x", "")
			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.wantCode) {
				t.Errorf("expected code %s in %s", tt.wantCode, w.Body.String())
			}
		})
	}
}

func TestSearchAvailable_Guests(t *testing.T) {
	var got service.SearchQuery
	svc := &mockHotelService{
		searchAvailableFunc: func(ctx context.Context, q service.SearchQuery) ([]*model.SearchResult, error) {
			got = q
			return []*model.SearchResult{}, nil
		},
	}
	router := newRouter(svc)

	w := serve(router, http.MethodGet, "/api/v1/search?city=Bali&check_in=2030-01-10&check_out=2030-01-12&guests=3", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got.City != "Bali" || got.Guests != 3 || got.CheckIn != "2030-01-10" {
		t.Errorf("unexpected query %+v", got)
	}

	w = serve(router, http.MethodGet, "/api/v1/search?city=Bali&guests=many", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad guests, got %d", w.Code)
	}
}

func TestCreateHotel(t *testing.T) {
	svc := &mockHotelService{
		createHotelFunc: func(ctx context.Context, h *model.Hotel) error {
			h.ID = "new-id"
			return nil
		},
	}
	router := newRouter(svc)

	w := serve(router, http.MethodPost, "/api/v1/admin/hotels", `{"name":"Harbor Inn","city":"Lisbon"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"id":"new-id"`) {
		t.Errorf("expected created id in %s", w.Body.String())
	}

	w = serve(router, http.MethodPost, "/api/v1/admin/hotels", `{"name":`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", w.Code)
	}
}

func TestUpdateHotel_RespondsWithStoredHotel(t *testing.T) {
	svc := &mockHotelService{
		updateHotelFunc: func(ctx context.Context, id string, h *model.Hotel) error {
			h.ID = id
			h.CreatedAt = time.Date(2029, 3, 1, 8, 0, 0, 0, time.UTC)
			return nil
		},
	}

	w := serve(newRouter(svc), http.MethodPut, "/api/v1/admin/hotels/id/h-1", `{"name":"Harbor Inn","city":"Lisbon"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"id":"h-1"`) || !strings.Contains(body, `"created_at":"2029-03-01T08:00:00Z"`) {
		t.Errorf("expected stored id and created_at in %s", body)
	}
}

func TestGetAllHotels_InvalidQueryParameters(t *testing.T) {
	called := false
	svc := &mockHotelService{
		getAllHotelsFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Hotel, int64, error) {
			called = true
			return []*model.Hotel{}, 0, nil
		},
	}
	router := newRouter(svc)

	for _, q := range []string{"?limit=abc", "?offset=xyz"} {
		w := serve(router, http.MethodGet, "/api/v1/admin/hotels"+q, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, w.Code)
		}
	}
	if called {
		t.Error("service must not be called with invalid pagination")
	}

	w := serve(router, http.MethodGet, "/api/v1/admin/hotels?limit=5&offset=10", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"limit":5`) {
		t.Errorf("unexpected response %d %s", w.Code, w.Body.String())
	}
}

func TestDeleteRoomType(t *testing.T) {
	svc := &mockHotelService{
		deleteRoomTypeFunc: func(ctx context.Context, id string) error { return nil },
	}

	w := serve(newRouter(svc), http.MethodDelete, "/api/v1/admin/rooms/id/r-1", "")
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
}
