package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"staybook/pkg/model"
)

const (
	defaultAPITimeout = 10 * time.Second
	idempotencyHeader = "Idempotency-Key"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int            `json:"-"`
	Message    string         `json:"error"`
	Code       string         `json:"code"`
	Details    map[string]any `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("staybook api: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

type envelope[T any] struct {
	Data T `json:"data"`
}

type Page[T any] struct {
	Data       []T   `json:"data"`
	TotalCount int64 `json:"total_count"`
	Limit      int   `json:"limit"`
	Offset     int64 `json:"offset"`
}

// APIClient is a typed client for the HTTP API.
type APIClient struct {
	http *resty.Client
}

func NewAPIClient(baseURL string) *APIClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultAPITimeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		SetHeader("Accept", "application/json")
	return &APIClient{http: c}
}

func (c *APIClient) SearchHotels(ctx context.Context, city string) ([]*model.Hotel, error) {
	var out envelope[[]*model.Hotel]
	err := c.do(c.http.R().SetContext(ctx).SetQueryParam("city", city).SetResult(&out), http.MethodGet, "/api/v1/hotels/search")
	return out.Data, err
}

func (c *APIClient) HotelDetail(ctx context.Context, id, checkIn, checkOut string) (*model.HotelDetail, error) {
	var out envelope[*model.HotelDetail]
	req := c.http.R().SetContext(ctx).SetPathParam("id", id).SetResult(&out)
	setStay(req, checkIn, checkOut)
	err := c.do(req, http.MethodGet, "/api/v1/hotels/id/{id}")
	return out.Data, err
}

func (c *APIClient) SearchRooms(ctx context.Context, city, checkIn, checkOut string, guests int) ([]*model.SearchResult, error) {
	var out envelope[[]*model.SearchResult]
	req := c.http.R().SetContext(ctx).SetQueryParam("city", city).SetResult(&out)
	setStay(req, checkIn, checkOut)
	if guests > 0 {
		req.SetQueryParam("guests", strconv.Itoa(guests))
	}
	err := c.do(req, http.MethodGet, "/api/v1/search")
	return out.Data, err
}

// CreateBooking sends idempotencyKey when set, so a retried request cannot
// book twice.
func (c *APIClient) CreateBooking(ctx context.Context, req *model.BookingRequest, idempotencyKey string) (*model.BookingConfirmation, error) {
	var out envelope[*model.BookingConfirmation]
	r := c.http.R().SetContext(ctx).SetBody(req).SetResult(&out)
	if idempotencyKey != "" {
		r.SetHeader(idempotencyHeader, idempotencyKey)
	}
	err := c.do(r, http.MethodPost, "/api/v1/bookings")
	return out.Data, err
}

func (c *APIClient) GetBooking(ctx context.Context, reference string) (*model.Booking, error) {
	var out envelope[*model.Booking]
	err := c.do(c.http.R().SetContext(ctx).SetPathParam("reference", reference).SetResult(&out),
		http.MethodGet, "/api/v1/bookings/reference/{reference}")
	return out.Data, err
}

func (c *APIClient) CheckAvailability(ctx context.Context, roomID, checkIn, checkOut string) (*model.AvailabilityCheck, error) {
	var out envelope[*model.AvailabilityCheck]
	req := c.http.R().SetContext(ctx).SetQueryParam("room_id", roomID).SetResult(&out)
	setStay(req, checkIn, checkOut)
	err := c.do(req, http.MethodGet, "/api/v1/bookings/availability")
	return out.Data, err
}

func (c *APIClient) Quote(ctx context.Context, roomID, checkIn, checkOut string) (*model.Quote, error) {
	var out envelope[*model.Quote]
	req := c.http.R().SetContext(ctx).SetQueryParam("room_id", roomID).SetResult(&out)
	setStay(req, checkIn, checkOut)
	err := c.do(req, http.MethodGet, "/api/v1/bookings/quote")
	return out.Data, err
}

func (c *APIClient) CreateHotel(ctx context.Context, h *model.Hotel) (*model.Hotel, error) {
	var out envelope[*model.Hotel]
	err := c.do(c.http.R().SetContext(ctx).SetBody(h).SetResult(&out), http.MethodPost, "/api/v1/admin/hotels")
	return out.Data, err
}

func (c *APIClient) CreateRoomType(ctx context.Context, rt *model.RoomType) (*model.RoomType, error) {
	var out envelope[*model.RoomType]
	err := c.do(c.http.R().SetContext(ctx).SetBody(rt).SetResult(&out), http.MethodPost, "/api/v1/admin/rooms")
	return out.Data, err
}

func (c *APIClient) ListBookings(ctx context.Context, limit int, offset int64) (*Page[*model.Booking], error) {
	var out Page[*model.Booking]
	err := c.do(c.http.R().SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetQueryParam("offset", strconv.FormatInt(offset, 10)).
		SetResult(&out), http.MethodGet, "/api/v1/admin/bookings")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) CancelBooking(ctx context.Context, id string) error {
	return c.do(c.http.R().SetContext(ctx).SetPathParam("id", id), http.MethodDelete, "/api/v1/admin/bookings/id/{id}")
}

func (c *APIClient) ExportBookings(ctx context.Context) ([]byte, error) {
	resp, err := c.send(c.http.R().SetContext(ctx), http.MethodGet, "/api/v1/admin/bookings/export")
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func (c *APIClient) do(req *resty.Request, method, path string) error {
	_, err := c.send(req, method, path)
	return err
}

func (c *APIClient) send(req *resty.Request, method, path string) (*resty.Response, error) {
	var apiErr APIError
	req.SetError(&apiErr)
	if req.Body != nil {
		req.SetHeader("Content-Type", "application/json")
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode())
		}
		return nil, &apiErr
	}
	return resp, nil
}

func setStay(req *resty.Request, checkIn, checkOut string) {
	if checkIn != "" {
		req.SetQueryParam("check_in", checkIn)
	}
	if checkOut != "" {
		req.SetQueryParam("check_out", checkOut)
	}
}
