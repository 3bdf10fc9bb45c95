package model

import "time"

// Showtime is one scheduled screening as returned by the upstream
// movie/showtime API.  The service only browses showtimes; creating and
// scheduling them is the backend's business.
//
// Fields:
//  ID             - showtime identifier.
//  MovieID        - movie being screened.
//  TheaterID      - theater/hall where the screening happens.
//  StartsAt       - screening start time.
//  EndsAt         - screening end time.
//  AvailableSeats - seats still free at listing time.
//  TotalSeats     - seats in the hall.
type Showtime struct {
	ID             string    `json:"id"`
	MovieID        string    `json:"movie_id"`
	TheaterID      string    `json:"theater_id"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	AvailableSeats uint32    `json:"available_seats"`
	TotalSeats     uint32    `json:"total_seats"`
}
