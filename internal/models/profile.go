package models

import (
	"encoding/json"
	"time"
)

// DateLayout is the wire and storage format of date_of_birth.
const DateLayout = "2006-01-02"

// Profile holds the demographic details linked one-to-one to a user
// (table user_details).
type Profile struct {
	ID          int64     `json:"id" db:"id"`
	DateOfBirth time.Time `json:"date_of_birth" db:"date_of_birth"`
	MobileNo    int32     `json:"mobile_no" db:"mobile_no"`
	// ExtraPhone is arbitrary JSON; nil means SQL NULL.
	ExtraPhone json.RawMessage `json:"extra_phone" db:"extra_phone"`
}

// HasExtraPhone reports whether extra_phone holds a non-null value.
func (p *Profile) HasExtraPhone() bool {
	return len(p.ExtraPhone) > 0 && string(p.ExtraPhone) != "null"
}
