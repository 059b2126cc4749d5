package model

import "time"

// Contact has an independent lifecycle from TrackingRecord: it may exist
// with zero, one, or many records referencing it.
type Contact struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Company          string    `json:"company"`
	LinkedInOrSource string    `json:"linkedInOrSource,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ContactPatch follows the same merge contract as RecordPatch: nil leaves a
// field unchanged, a set pointer overwrites.
type ContactPatch struct {
	ID string `json:"id,omitempty"`

	Name             *string `json:"name,omitempty"`
	Email            *string `json:"email,omitempty"`
	Company          *string `json:"company,omitempty"`
	LinkedInOrSource *string `json:"linkedInOrSource,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

func (p ContactPatch) Apply(c *Contact) {
	setStr(&c.Name, p.Name)
	setStr(&c.Email, p.Email)
	setStr(&c.Company, p.Company)
	setStr(&c.LinkedInOrSource, p.LinkedInOrSource)
	setStr(&c.Notes, p.Notes)
}
