package dto

// CreateApplicationRequest is the POST /applications payload.
type CreateApplicationRequest struct {
	StudentID          string  `json:"studentId" validate:"required"`
	University         string  `json:"university" validate:"required,max=200"`
	Program            string  `json:"program" validate:"required,max=200"`
	CourseType         string  `json:"courseType" validate:"omitempty,max=100"`
	Country            string  `json:"country" validate:"omitempty,max=100"`
	Intake             string  `json:"intake" validate:"omitempty,max=50"`
	AppStatus          string  `json:"appStatus"`
	CaseStatus         string  `json:"caseStatus" validate:"omitempty,max=100"`
	ChannelPartner     string  `json:"channelPartner" validate:"omitempty,max=150"`
	DriveLink          string  `json:"driveLink" validate:"omitempty,url"`
	Notes              string  `json:"notes"`
	CounselorID        *string `json:"counselorId" validate:"omitempty,uuid"`
	AdmissionOfficerID *string `json:"admissionOfficerId" validate:"omitempty,uuid"`
}

// UpdateApplicationRequest is the PUT /applications/:id payload.
type UpdateApplicationRequest struct {
	University         *string `json:"university" validate:"omitempty,min=1,max=200"`
	Program            *string `json:"program" validate:"omitempty,min=1,max=200"`
	CourseType         *string `json:"courseType" validate:"omitempty,max=100"`
	Country            *string `json:"country" validate:"omitempty,max=100"`
	Intake             *string `json:"intake" validate:"omitempty,max=50"`
	AppStatus          *string `json:"appStatus"`
	CaseStatus         *string `json:"caseStatus" validate:"omitempty,max=100"`
	ChannelPartner     *string `json:"channelPartner" validate:"omitempty,max=150"`
	DriveLink          *string `json:"driveLink" validate:"omitempty,url"`
	Notes              *string `json:"notes"`
	CounselorID        *string `json:"counselorId" validate:"omitempty,uuid"`
	AdmissionOfficerID *string `json:"admissionOfficerId" validate:"omitempty,uuid"`
}
