package dto

// CreateAdmissionRequest is the POST /admissions payload.
type CreateAdmissionRequest struct {
	ApplicationID      string   `json:"applicationId" validate:"required"`
	StudentID          string   `json:"studentId" validate:"required"`
	University         string   `json:"university" validate:"omitempty,max=200"`
	Program            string   `json:"program" validate:"omitempty,max=200"`
	TuitionFee         *float64 `json:"tuitionFee" validate:"omitempty,gte=0"`
	InitialDeposit     *float64 `json:"initialDeposit" validate:"omitempty,gte=0"`
	DepositDate        *string  `json:"depositDate"`
	FullTuitionPaid    bool     `json:"fullTuitionPaid"`
	VisaStatus         string   `json:"visaStatus"`
	VisaDate           *string  `json:"visaDate"`
	ScholarshipAmount  *float64 `json:"scholarshipAmount" validate:"omitempty,gte=0"`
	DecisionDate       *string  `json:"decisionDate"`
	Notes              string   `json:"notes"`
	CounselorID        *string  `json:"counselorId" validate:"omitempty,uuid"`
	AdmissionOfficerID *string  `json:"admissionOfficerId" validate:"omitempty,uuid"`
}

// UpdateAdmissionRequest is the PUT /admissions/:id payload.
type UpdateAdmissionRequest struct {
	University         *string  `json:"university" validate:"omitempty,max=200"`
	Program            *string  `json:"program" validate:"omitempty,max=200"`
	TuitionFee         *float64 `json:"tuitionFee" validate:"omitempty,gte=0"`
	InitialDeposit     *float64 `json:"initialDeposit" validate:"omitempty,gte=0"`
	DepositDate        *string  `json:"depositDate"`
	FullTuitionPaid    *bool    `json:"fullTuitionPaid"`
	VisaStatus         *string  `json:"visaStatus"`
	VisaDate           *string  `json:"visaDate"`
	ScholarshipAmount  *float64 `json:"scholarshipAmount" validate:"omitempty,gte=0"`
	DecisionDate       *string  `json:"decisionDate"`
	Notes              *string  `json:"notes"`
	CounselorID        *string  `json:"counselorId" validate:"omitempty,uuid"`
	AdmissionOfficerID *string  `json:"admissionOfficerId" validate:"omitempty,uuid"`
}
