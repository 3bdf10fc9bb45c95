package upstream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking-session/internal/model"
	"github.com/iliyamo/cinema-booking-session/internal/upstream"
)

func TestFetchInventoryVersionFromBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/seats/show-1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"version": 12,
			"seats": []map[string]interface{}{
				{"seat_number": "A1", "category": "STANDARD", "price_cents": 1200, "status": "available"},
				{"seat_number": "A2", "category": "STANDARD", "price_cents": 1200, "status": "held"},
				{"seat_number": "B1", "category": "VIP", "price_cents": 1800, "status": "booked"},
			},
		})
	}))
	defer srv.Close()

	ic := upstream.NewInventoryClient(srv.URL, "", time.Second, nil)
	snap, err := ic.FetchInventory(context.Background(), "show-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(12), snap.Version())
	assert.Equal(t, 3, snap.Len())

	seat, ok := snap.Seat("A1")
	require.True(t, ok)
	assert.Equal(t, "A", seat.Row)
	assert.Equal(t, uint32(1), seat.Number)
	assert.Equal(t, model.SeatAvailable, seat.Status)

	seat, _ = snap.Seat("A2")
	assert.Equal(t, model.SeatHeld, seat.Status)
	seat, _ = snap.Seat("B1")
	assert.Equal(t, model.SeatBooked, seat.Status)
}

func TestFetchInventoryVersionFromHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Inventory-Version", "44")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"seats": []map[string]interface{}{
				{"seat_number": "A1", "category": "STANDARD", "price_cents": 1200, "status": "available"},
			},
		})
	}))
	defer srv.Close()

	ic := upstream.NewInventoryClient(srv.URL, "", time.Second, nil)
	snap, err := ic.FetchInventory(context.Background(), "show-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(44), snap.Version())
}

func TestFetchInventoryVersionless(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"seats": []map[string]interface{}{},
		})
	}))
	defer srv.Close()

	ic := upstream.NewInventoryClient(srv.URL, "", time.Second, nil)
	snap, err := ic.FetchInventory(context.Background(), "show-1")
	require.NoError(t, err)
	// Zero means the caller assigns its own fetch sequence.
	assert.Equal(t, uint64(0), snap.Version())
}

func TestFetchInventoryNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	ic := upstream.NewInventoryClient(srv.URL, "", time.Second, nil)
	_, err := ic.FetchInventory(context.Background(), "show-404")
	var nf *upstream.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.True(t, nf.NotFound())
	assert.Equal(t, "show-404", nf.ID)
}

func TestFetchInventoryForwardsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"seats": []map[string]interface{}{}})
	}))
	defer srv.Close()

	ic := upstream.NewInventoryClient(srv.URL, "svc-token", time.Second, nil)
	_, err := ic.FetchInventory(context.Background(), "show-1")
	require.NoError(t, err)
}

func TestCreateBookingStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		code       int
		body       map[string]interface{}
		wantStatus model.BookingStatus
		wantReason model.RejectReason
	}{
		{
			name:       "created",
			code:       http.StatusCreated,
			body:       map[string]interface{}{"booking_id": "bk-1", "status": "confirmed", "total_cents": 2400},
			wantStatus: model.BookingConfirmed,
		},
		{
			name:       "accepted payment pending",
			code:       http.StatusAccepted,
			body:       map[string]interface{}{"booking_id": "bk-2", "status": "payment_pending"},
			wantStatus: model.BookingPaymentPending,
		},
		{
			name:       "ok but payment pending in body",
			code:       http.StatusOK,
			body:       map[string]interface{}{"booking_id": "bk-3", "status": "payment_pending"},
			wantStatus: model.BookingPaymentPending,
		},
		{
			name:       "conflict",
			code:       http.StatusConflict,
			body:       map[string]interface{}{"message": "seats taken"},
			wantStatus: model.BookingRejected,
			wantReason: model.ReasonSeatsNoLongerAvailable,
		},
		{
			name:       "unprocessable",
			code:       http.StatusUnprocessableEntity,
			body:       map[string]interface{}{"message": "bad seats"},
			wantStatus: model.BookingRejected,
			wantReason: model.ReasonValidationFailed,
		},
		{
			name:       "internal error",
			code:       http.StatusInternalServerError,
			body:       map[string]interface{}{},
			wantStatus: model.BookingRejected,
			wantReason: model.ReasonServerError,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
				w.WriteHeader(tc.code)
				_ = json.NewEncoder(w).Encode(tc.body)
			}))
			defer srv.Close()

			bc := upstream.NewBookingClient(srv.URL, "", time.Second, nil)
			res, err := bc.CreateBooking(context.Background(), model.BookingRequest{ShowtimeID: "show-1"}, "key-1")
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, res.Status)
			assert.Equal(t, tc.wantReason, res.Reason)
		})
	}
}

func TestCreateBookingTransportErrorIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	bc := upstream.NewBookingClient(srv.URL, "", time.Second, nil)
	_, err := bc.CreateBooking(context.Background(), model.BookingRequest{}, "key-1")
	require.Error(t, err)
}

func TestListShowtimesDropsBrokenRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "mv-1", r.URL.Query().Get("movie_id"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{
					"id": "show-1", "movie_id": "mv-1", "theater_id": "th-1",
					"starts_at": "2026-09-01T18:00:00Z", "ends_at": "2026-09-01T20:00:00Z",
					"available_seats": 40, "total_seats": 50,
				},
				{
					"id": "show-2", "movie_id": "mv-1", "theater_id": "th-1",
					"starts_at": "not-a-time", "ends_at": "2026-09-01T23:00:00Z",
				},
			},
		})
	}))
	defer srv.Close()

	sc := upstream.NewShowtimeClient(srv.URL, "", time.Second, nil)
	shows, err := sc.ListShowtimes(context.Background(), "mv-1")
	require.NoError(t, err)
	require.Len(t, shows, 1)
	assert.Equal(t, "show-1", shows[0].ID)
	assert.Equal(t, uint32(40), shows[0].AvailableSeats)
}
