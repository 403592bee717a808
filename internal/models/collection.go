package models

import "time"

// Collection groups gigs under a user-owned, optionally public list.
// Name is unique per owner, enforced by a composite unique index.
type Collection struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;uniqueIndex:idx_collections_owner_name" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Public      bool      `gorm:"not null;default:false" json:"public"`
	UserID      uint      `gorm:"not null;index;uniqueIndex:idx_collections_owner_name" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Gigs        []Gig     `gorm:"many2many:collection_gigs" json:"gigs,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CollectionGig is the membership row linking a collection to a gig.
// The composite primary key prevents duplicate membership.
type CollectionGig struct {
	CollectionID uint       `gorm:"primaryKey" json:"collection_id"`
	Collection   Collection `gorm:"foreignKey:CollectionID;constraint:OnDelete:CASCADE" json:"-"`
	GigID        uint       `gorm:"primaryKey" json:"gig_id"`
	Gig          Gig        `gorm:"foreignKey:GigID;constraint:OnDelete:CASCADE" json:"-"`
	AddedAt      time.Time  `gorm:"autoCreateTime" json:"added_at"`
}
