package dto

// CreateLeadRequest is the POST /leads payload.
type CreateLeadRequest struct {
	Name                string   `json:"name" validate:"required,max=150"`
	Email               string   `json:"email" validate:"required,email"`
	Phone               string   `json:"phone" validate:"omitempty,max=40"`
	City                string   `json:"city" validate:"omitempty,max=100"`
	Countries           []string `json:"countries" validate:"omitempty,dive,max=100"`
	Program             string   `json:"program" validate:"omitempty,max=150"`
	Source              string   `json:"source" validate:"omitempty,max=100"`
	Type                string   `json:"type" validate:"omitempty,max=100"`
	Status              string   `json:"status" validate:"omitempty,max=50"`
	CounselorID         *string  `json:"counselorId" validate:"omitempty,uuid"`
	Branch              string   `json:"branch" validate:"omitempty,max=100"`
	Region              string   `json:"region" validate:"omitempty,max=100"`
	Notes               string   `json:"notes"`
	FollowUpAt          *string  `json:"followUpAt"`
	EventRegistrationID *string  `json:"-"`
}

// UpdateLeadRequest is the PUT /leads/:id payload. Nil fields are left unchanged.
type UpdateLeadRequest struct {
	Name        *string   `json:"name" validate:"omitempty,min=1,max=150"`
	Email       *string   `json:"email" validate:"omitempty,email"`
	Phone       *string   `json:"phone" validate:"omitempty,max=40"`
	City        *string   `json:"city" validate:"omitempty,max=100"`
	Countries   *[]string `json:"countries"`
	Program     *string   `json:"program" validate:"omitempty,max=150"`
	Source      *string   `json:"source" validate:"omitempty,max=100"`
	Type        *string   `json:"type" validate:"omitempty,max=100"`
	Status      *string   `json:"status" validate:"omitempty,max=50"`
	CounselorID *string   `json:"counselorId" validate:"omitempty,uuid"`
	Branch      *string   `json:"branch" validate:"omitempty,max=100"`
	Region      *string   `json:"region" validate:"omitempty,max=100"`
	IsLost      *bool     `json:"isLost"`
	LostReason  *string   `json:"lostReason" validate:"omitempty,max=500"`
	Notes       *string   `json:"notes"`
	FollowUpAt  *string   `json:"followUpAt"`
}

// LeadStatusRequest is the PATCH /leads/:id/status payload.
type LeadStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// MarkLostRequest is the POST /leads/:id/lost payload.
type MarkLostRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}
