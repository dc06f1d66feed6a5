package models

import "time"

// Event is a recruitment event (fair, webinar, seminar). Events are shared
// across staff and carry no row-level scope.
type Event struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Type        string    `db:"type" json:"type"`
	Date        time.Time `db:"date" json:"date"`
	Time        string    `db:"time" json:"time"`
	Venue       string    `db:"venue" json:"venue"`
	City        string    `db:"city" json:"city"`
	CounselorID *string   `db:"counselor_id" json:"counselorId"`
	Notes       string    `db:"notes" json:"notes"`
	CreatedBy   *string   `db:"created_by" json:"createdBy"`
	UpdatedBy   *string   `db:"updated_by" json:"updatedBy"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// EventFilter captures list filters for events.
type EventFilter struct {
	Type     string
	City     string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// RegistrationStatus tracks an event attendee.
type RegistrationStatus string

const (
	RegistrationRegistered RegistrationStatus = "registered"
	RegistrationAttended   RegistrationStatus = "attended"
	RegistrationConverted  RegistrationStatus = "converted"
)

// EventRegistration is a sign-up for an event that may become a lead.
type EventRegistration struct {
	ID              string             `db:"id" json:"id"`
	EventID         string             `db:"event_id" json:"eventId"`
	Name            string             `db:"name" json:"name"`
	Email           string             `db:"email" json:"email"`
	Phone           string             `db:"phone" json:"phone"`
	City            string             `db:"city" json:"city"`
	Program         string             `db:"program" json:"program"`
	Status          RegistrationStatus `db:"status" json:"status"`
	ConvertedLeadID *string            `db:"converted_lead_id" json:"convertedLeadId"`
	CreatedAt       time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `db:"updated_at" json:"updatedAt"`
}
