package models

import "time"

// GigStatus enumerates the lifecycle states of a gig listing.
type GigStatus string

const (
	GigStatusActive    GigStatus = "active"
	GigStatusCancelled GigStatus = "cancelled"
	GigStatusSoldOut   GigStatus = "sold_out"
)

// Genres is the fixed set of accepted gig genres.
var Genres = []string{
	"rock", "pop", "jazz", "blues", "metal", "punk",
	"electronic", "hiphop", "folk", "classical", "country", "other",
}

// ValidGenre reports whether genre is a member of the fixed genre set.
func ValidGenre(genre string) bool {
	for _, g := range Genres {
		if g == genre {
			return true
		}
	}
	return false
}

// ValidGigStatus reports whether status is a known gig status.
func ValidGigStatus(status GigStatus) bool {
	switch status {
	case GigStatusActive, GigStatusCancelled, GigStatusSoldOut:
		return true
	}
	return false
}

// Gig represents a live-music event listing owned by a single user.
// Gigs are hard-deleted so membership rows in collections cascade away.
type Gig struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Venue       string    `gorm:"not null" json:"venue"`
	EventTime   time.Time `gorm:"not null;index" json:"event_time"`
	Genre       string    `gorm:"type:varchar(32);not null" json:"genre"`
	Price       float64   `gorm:"not null;default:0" json:"price"`
	ImageURL    string    `json:"image_url,omitempty"`
	TicketURL   string    `json:"ticket_url,omitempty"`
	Status      GigStatus `gorm:"type:varchar(16);not null;default:'active'" json:"status"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
