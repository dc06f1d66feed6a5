package models

import "time"

// ApplicationStatus is the high level state of a university application.
type ApplicationStatus string

const (
	ApplicationStatusOpen           ApplicationStatus = "Open"
	ApplicationStatusNeedsAttention ApplicationStatus = "Needs Attention"
	ApplicationStatusClosed         ApplicationStatus = "Closed"
)

// Application is a student's submission to a university program.
type Application struct {
	ID                 string            `db:"id" json:"id"`
	StudentID          string            `db:"student_id" json:"studentId"`
	University         string            `db:"university" json:"university"`
	Program            string            `db:"program" json:"program"`
	CourseType         string            `db:"course_type" json:"courseType"`
	Country            string            `db:"country" json:"country"`
	Intake             string            `db:"intake" json:"intake"`
	AppStatus          ApplicationStatus `db:"app_status" json:"appStatus"`
	CaseStatus         string            `db:"case_status" json:"caseStatus"`
	ChannelPartner     string            `db:"channel_partner" json:"channelPartner"`
	DriveLink          string            `db:"drive_link" json:"driveLink"`
	Notes              string            `db:"notes" json:"notes"`
	CounselorID        *string           `db:"counselor_id" json:"counselorId"`
	AdmissionOfficerID *string           `db:"admission_officer_id" json:"admissionOfficerId"`
	CreatedBy          *string           `db:"created_by" json:"createdBy"`
	UpdatedBy          *string           `db:"updated_by" json:"updatedBy"`
	CreatedAt          time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time         `db:"updated_at" json:"updatedAt"`
}

func (a *Application) AssignedCounselor() string { return deref(a.CounselorID) }

func (a *Application) AssignedAdmissionOfficer() (string, bool) {
	return deref(a.AdmissionOfficerID), true
}

// ApplicationFilter captures list filters for applications.
type ApplicationFilter struct {
	StudentID string
	AppStatus string
	Country   string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
