package models

import "time"

// VisaStatus tracks the visa process for an admission.
type VisaStatus string

const (
	VisaStatusNotApplied         VisaStatus = "not-applied"
	VisaStatusApplied            VisaStatus = "applied"
	VisaStatusInterviewScheduled VisaStatus = "interview-scheduled"
	VisaStatusApproved           VisaStatus = "approved"
	VisaStatusRejected           VisaStatus = "rejected"
	VisaStatusOnHold             VisaStatus = "on-hold"
	VisaStatusPending            VisaStatus = "pending"
)

// Admission is the outcome record of an application.
type Admission struct {
	ID                 string     `db:"id" json:"id"`
	ApplicationID      string     `db:"application_id" json:"applicationId"`
	StudentID          string     `db:"student_id" json:"studentId"`
	University         string     `db:"university" json:"university"`
	Program            string     `db:"program" json:"program"`
	TuitionFee         *float64   `db:"tuition_fee" json:"tuitionFee"`
	InitialDeposit     *float64   `db:"initial_deposit" json:"initialDeposit"`
	DepositDate        *time.Time `db:"deposit_date" json:"depositDate"`
	FullTuitionPaid    bool       `db:"full_tuition_paid" json:"fullTuitionPaid"`
	VisaStatus         VisaStatus `db:"visa_status" json:"visaStatus"`
	VisaDate           *time.Time `db:"visa_date" json:"visaDate"`
	ScholarshipAmount  *float64   `db:"scholarship_amount" json:"scholarshipAmount"`
	DecisionDate       *time.Time `db:"decision_date" json:"decisionDate"`
	Notes              string     `db:"notes" json:"notes"`
	CounselorID        *string    `db:"counselor_id" json:"counselorId"`
	AdmissionOfficerID *string    `db:"admission_officer_id" json:"admissionOfficerId"`
	CreatedBy          *string    `db:"created_by" json:"createdBy"`
	UpdatedBy          *string    `db:"updated_by" json:"updatedBy"`
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updatedAt"`
}

func (a *Admission) AssignedCounselor() string { return deref(a.CounselorID) }

func (a *Admission) AssignedAdmissionOfficer() (string, bool) {
	return deref(a.AdmissionOfficerID), true
}

// AdmissionFilter captures list filters for admissions.
type AdmissionFilter struct {
	StudentID     string
	ApplicationID string
	VisaStatus    string
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}
