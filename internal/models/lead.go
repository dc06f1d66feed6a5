package models

import (
	"time"

	"github.com/lib/pq"
)

// LeadStatus is the pipeline stage of a lead.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusNurturing LeadStatus = "nurturing"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

// Lead is a prospective student. A lead referenced by a student row is
// considered converted and drops out of lead listings.
type Lead struct {
	ID                  string         `db:"id" json:"id"`
	Name                string         `db:"name" json:"name"`
	Email               string         `db:"email" json:"email"`
	Phone               string         `db:"phone" json:"phone"`
	City                string         `db:"city" json:"city"`
	Countries           pq.StringArray `db:"countries" json:"countries"`
	Program             string         `db:"program" json:"program"`
	Source              string         `db:"source" json:"source"`
	Type                string         `db:"type" json:"type"`
	Status              LeadStatus     `db:"status" json:"status"`
	CounselorID         *string        `db:"counselor_id" json:"counselorId"`
	Branch              string         `db:"branch" json:"branch"`
	Region              string         `db:"region" json:"region"`
	IsLost              bool           `db:"is_lost" json:"isLost"`
	LostReason          *string        `db:"lost_reason" json:"lostReason"`
	Notes               string         `db:"notes" json:"notes"`
	FollowUpAt          *time.Time     `db:"follow_up_at" json:"followUpAt"`
	EventRegistrationID *string        `db:"event_registration_id" json:"eventRegistrationId"`
	CreatedBy           *string        `db:"created_by" json:"createdBy"`
	UpdatedBy           *string        `db:"updated_by" json:"updatedBy"`
	CreatedAt           time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updatedAt"`
}

func (l *Lead) AssignedCounselor() string { return deref(l.CounselorID) }

func (l *Lead) AssignedAdmissionOfficer() (string, bool) { return "", false }

// LeadFilter captures list filters for leads.
type LeadFilter struct {
	Status      string
	Source      string
	Branch      string
	CounselorID string
	IsLost      *bool
	Search      string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
