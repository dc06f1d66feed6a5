package models

import "time"

// StudentStatus is the stored student state.
type StudentStatus string

const (
	StudentStatusActive   StudentStatus = "active"
	StudentStatusInactive StudentStatus = "inactive"
	StudentStatusEnrolled StudentStatus = "enrolled"
)

// Label returns the display label for the status.
func (s StudentStatus) Label() string {
	switch s {
	case StudentStatusActive:
		return "Open"
	case StudentStatusInactive:
		return "Closed"
	case StudentStatusEnrolled:
		return "Enrolled"
	default:
		return string(s)
	}
}

// Student is an engaged prospect, created directly or converted from a lead.
type Student struct {
	ID                   string        `db:"id" json:"id"`
	LeadID               *string       `db:"lead_id" json:"leadId"`
	Name                 string        `db:"name" json:"name"`
	Email                string        `db:"email" json:"email"`
	Phone                string        `db:"phone" json:"phone"`
	DateOfBirth          *time.Time    `db:"date_of_birth" json:"dateOfBirth"`
	Nationality          string        `db:"nationality" json:"nationality"`
	TargetCountry        string        `db:"target_country" json:"targetCountry"`
	TargetProgram        string        `db:"target_program" json:"targetProgram"`
	EnglishProficiency   string        `db:"english_proficiency" json:"englishProficiency"`
	HighestQualification string        `db:"highest_qualification" json:"highestQualification"`
	ConsultancyFeePaid   bool          `db:"consultancy_fee_paid" json:"consultancyFeePaid"`
	Scholarship          bool          `db:"scholarship" json:"scholarship"`
	Status               StudentStatus `db:"status" json:"status"`
	StatusLabel          string        `db:"-" json:"statusLabel"`
	CounselorID          *string       `db:"counselor_id" json:"counselorId"`
	AdmissionOfficerID   *string       `db:"admission_officer_id" json:"admissionOfficerId"`
	Branch               string        `db:"branch" json:"branch"`
	Region               string        `db:"region" json:"region"`
	ProfilePicture       string        `db:"profile_picture" json:"profilePicture"`
	Notes                string        `db:"notes" json:"notes"`
	CreatedBy            *string       `db:"created_by" json:"createdBy"`
	UpdatedBy            *string       `db:"updated_by" json:"updatedBy"`
	CreatedAt            time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time     `db:"updated_at" json:"updatedAt"`
}

func (s *Student) AssignedCounselor() string { return deref(s.CounselorID) }

func (s *Student) AssignedAdmissionOfficer() (string, bool) {
	return deref(s.AdmissionOfficerID), true
}

// Decorate fills derived display fields.
func (s *Student) Decorate() {
	s.StatusLabel = s.Status.Label()
}

// StudentFilter captures list filters for students.
type StudentFilter struct {
	Status             string
	Branch             string
	CounselorID        string
	AdmissionOfficerID string
	Search             string
	Page               int
	PageSize           int
	SortBy             string
	SortOrder          string
}
