package domain

import "time"

// Event represents a scheduled gathering (a calendar record, not a system event).
type Event struct {
	ID          string
	Name        string
	Date        time.Time
	Location    string
	Description string
	CreatedAt   time.Time
}

// EventPatch holds the fields an update replaces. Nil fields keep their stored value.
type EventPatch struct {
	Name        *string
	Date        *time.Time
	Location    *string
	Description *string
	CreatedAt   *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p EventPatch) IsEmpty() bool {
	return p.Name == nil &&
		p.Date == nil &&
		p.Location == nil &&
		p.Description == nil &&
		p.CreatedAt == nil
}

// Validate rejects patches that would blank out a required field.
func (p EventPatch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return ErrNameRequired
	}
	if p.Location != nil && *p.Location == "" {
		return ErrLocationRequired
	}
	if p.Date != nil && p.Date.IsZero() {
		return ErrDateRequired
	}
	return nil
}
