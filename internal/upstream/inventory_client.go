package upstream

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-session/internal/model"
	"github.com/iliyamo/cinema-booking-session/internal/session"
)

// inventoryVersionHeader carries the snapshot version when the payload
// itself does not include one.
const inventoryVersionHeader = "X-Inventory-Version"

// InventoryClient fetches full seat inventories from the seat API.  It
// implements session.InventoryAPI.
type InventoryClient struct {
	c   httpClient
	log *zap.Logger
}

// NewInventoryClient builds a client for the given base URL.
func NewInventoryClient(base, token string, timeout time.Duration, log *zap.Logger) *InventoryClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &InventoryClient{c: newHTTPClient(base, token, timeout), log: log}
}

// seatPayload mirrors one seat of the inventory response.
type seatPayload struct {
	SeatNumber string `json:"seat_number"`
	Category   string `json:"category"`
	PriceCents uint32 `json:"price_cents"`
	Status     string `json:"status"`
}

// FetchInventory returns a full-replacement snapshot of the seats for a
// showtime.  The snapshot version is taken from the response `version`
// field, falling back to the X-Inventory-Version header; when neither is
// present the version is zero and the caller assigns its own fetch
// sequence number.  A partial update is impossible by construction: the
// endpoint always returns the complete seat list.
func (ic *InventoryClient) FetchInventory(ctx context.Context, showtimeID string) (*session.Snapshot, error) {
	var body struct {
		Version uint64        `json:"version"`
		Seats   []seatPayload `json:"seats"`
	}
	hdr, err := ic.c.get(ctx, "/seats/"+showtimeID, "showtime", showtimeID, &body)
	if err != nil {
		return nil, err
	}
	version := body.Version
	if version == 0 {
		if v, perr := strconv.ParseUint(hdr.Get(inventoryVersionHeader), 10, 64); perr == nil {
			version = v
		}
	}
	seats := make([]model.Seat, 0, len(body.Seats))
	for _, p := range body.Seats {
		row, number := model.SplitSeatLabel(p.SeatNumber)
		seats = append(seats, model.Seat{
			ID:         p.SeatNumber,
			Row:        row,
			Number:     number,
			Category:   p.Category,
			PriceCents: p.PriceCents,
			Status:     model.ParseSeatStatus(p.Status),
		})
	}
	return session.NewSnapshot(showtimeID, version, seats, time.Now().UTC()), nil
}
