package upstream

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-session/internal/model"
)

// ShowtimeClient lists showtimes from the movie/showtime API.
type ShowtimeClient struct {
	c   httpClient
	log *zap.Logger
}

// NewShowtimeClient builds a client for the given base URL.  token may
// be empty when the listing endpoint is public.
func NewShowtimeClient(base, token string, timeout time.Duration, log *zap.Logger) *ShowtimeClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &ShowtimeClient{c: newHTTPClient(base, token, timeout), log: log}
}

// showtimePayload mirrors one entry of the showtime listing response.
type showtimePayload struct {
	ID             string `json:"id"`
	MovieID        string `json:"movie_id"`
	TheaterID      string `json:"theater_id"`
	StartsAt       string `json:"starts_at"`
	EndsAt         string `json:"ends_at"`
	AvailableSeats uint32 `json:"available_seats"`
	TotalSeats     uint32 `json:"total_seats"`
}

// ListShowtimes returns the showtimes, optionally filtered by movie.
// Entries whose start or end time fails to parse are dropped rather than
// surfaced: the upstream is known to occasionally emit rows with broken
// timestamps and a single bad row must not break the whole listing.
func (sc *ShowtimeClient) ListShowtimes(ctx context.Context, movieID string) ([]model.Showtime, error) {
	path := "/showtimes"
	if movieID != "" {
		path += "?movie_id=" + url.QueryEscape(movieID)
	}
	var body struct {
		Data []showtimePayload `json:"data"`
	}
	if _, err := sc.c.get(ctx, path, "showtimes", movieID, &body); err != nil {
		return nil, err
	}
	out := make([]model.Showtime, 0, len(body.Data))
	for _, p := range body.Data {
		starts, err1 := time.Parse(time.RFC3339, p.StartsAt)
		ends, err2 := time.Parse(time.RFC3339, p.EndsAt)
		if err1 != nil || err2 != nil {
			sc.log.Warn("dropping showtime with invalid times",
				zap.String("showtime_id", p.ID),
				zap.String("starts_at", p.StartsAt),
				zap.String("ends_at", p.EndsAt))
			continue
		}
		out = append(out, model.Showtime{
			ID:             p.ID,
			MovieID:        p.MovieID,
			TheaterID:      p.TheaterID,
			StartsAt:       starts,
			EndsAt:         ends,
			AvailableSeats: p.AvailableSeats,
			TotalSeats:     p.TotalSeats,
		})
	}
	return out, nil
}
