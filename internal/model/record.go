package model

import (
	"errors"
	"strings"
)

// ErrEmptyName is returned when a record has no usable name.
var ErrEmptyName = errors.New("record name must not be empty")

// StoreRecord is one restaurant or place in the catalog.
type StoreRecord struct {
	ID                int64     `json:"id,omitempty"`
	Name              string    `json:"name"`
	Address           string    `json:"address"`
	OpeningHours      string    `json:"openingHours"`
	DeliveryThreshold Threshold `json:"deliveryThreshold,omitzero"`
	Notes             string    `json:"notes"`
	MenuImage         string    `json:"menuImage"`
	IsFavorite        bool      `json:"isFavorite"`
	UpdatedAt         int64     `json:"updatedAt"`
}

// Validate checks the invariants a record must satisfy before it is written.
func (r StoreRecord) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// WithoutID returns a copy with the identity cleared, ready to be added as new.
func (r StoreRecord) WithoutID() StoreRecord {
	r.ID = 0
	return r
}

// Settings are the user-level display settings carried by a backup.
type Settings struct {
	ShowAnnouncement    bool   `json:"showAnnouncement" yaml:"show_announcement"`
	AnnouncementContent string `json:"announcementContent" yaml:"announcement_content"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Name              *string
	Address           *string
	OpeningHours      *string
	DeliveryThreshold *Threshold
	Notes             *string
	MenuImage         *string
	IsFavorite        *bool
	UpdatedAt         *int64
}

// FullPatch builds a patch that overwrites every mutable field with r's values.
func FullPatch(r StoreRecord) Patch {
	return Patch{
		Name:              &r.Name,
		Address:           &r.Address,
		OpeningHours:      &r.OpeningHours,
		DeliveryThreshold: &r.DeliveryThreshold,
		Notes:             &r.Notes,
		MenuImage:         &r.MenuImage,
		IsFavorite:        &r.IsFavorite,
		UpdatedAt:         &r.UpdatedAt,
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Address == nil && p.OpeningHours == nil &&
		p.DeliveryThreshold == nil && p.Notes == nil && p.MenuImage == nil &&
		p.IsFavorite == nil && p.UpdatedAt == nil
}

// Apply returns r with the patch applied. The ID is never changed.
func (p Patch) Apply(r StoreRecord) StoreRecord {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Address != nil {
		r.Address = *p.Address
	}
	if p.OpeningHours != nil {
		r.OpeningHours = *p.OpeningHours
	}
	if p.DeliveryThreshold != nil {
		r.DeliveryThreshold = *p.DeliveryThreshold
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	if p.MenuImage != nil {
		r.MenuImage = *p.MenuImage
	}
	if p.IsFavorite != nil {
		r.IsFavorite = *p.IsFavorite
	}
	if p.UpdatedAt != nil {
		r.UpdatedAt = *p.UpdatedAt
	}
	return r
}
