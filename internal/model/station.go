package model

import "time"

// StationID uniquely identifies a scoring station
type StationID string

// DefaultStationImage is used when a station is created without an image
const DefaultStationImage = "https://developers.elementor.com/docs/assets/img/elementor-placeholder-image.png"

// Station is a physical scoring checkpoint
type Station struct {
	ID        StationID
	Name      string
	Number    string
	MaxPoints int64 // informational only
	Status    bool  // true when open for scoring
	Delay     int   // cooldown/offset in seconds
	Image     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
