package dto

// EventRequest creates an event.
type EventRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Type        string  `json:"type" validate:"omitempty,max=100"`
	Date        string  `json:"date" validate:"required"`
	Time        string  `json:"time" validate:"omitempty,max=20"`
	Venue       string  `json:"venue" validate:"omitempty,max=200"`
	City        string  `json:"city" validate:"omitempty,max=100"`
	CounselorID *string `json:"counselorId" validate:"omitempty,uuid"`
	Notes       string  `json:"notes"`
}

// UpdateEventRequest is the PUT /events/:id payload.
type UpdateEventRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Type        *string `json:"type" validate:"omitempty,max=100"`
	Date        *string `json:"date"`
	Time        *string `json:"time" validate:"omitempty,max=20"`
	Venue       *string `json:"venue" validate:"omitempty,max=200"`
	City        *string `json:"city" validate:"omitempty,max=100"`
	CounselorID *string `json:"counselorId" validate:"omitempty,uuid"`
	Notes       *string `json:"notes"`
}

// RegistrationRequest signs a person up for an event.
type RegistrationRequest struct {
	Name    string `json:"name" validate:"required,max=150"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,max=40"`
	City    string `json:"city" validate:"omitempty,max=100"`
	Program string `json:"program" validate:"omitempty,max=150"`
}

// ConvertRegistrationRequest carries lead assignment for a registration conversion.
type ConvertRegistrationRequest struct {
	CounselorID *string `json:"counselorId" validate:"omitempty,uuid"`
	Source      string  `json:"source" validate:"omitempty,max=100"`
	Branch      string  `json:"branch" validate:"omitempty,max=100"`
}
