package dto

// CreateStudentRequest is the POST /students payload.
type CreateStudentRequest struct {
	Name                 string  `json:"name" validate:"required,max=150"`
	Email                string  `json:"email" validate:"required,email"`
	Phone                string  `json:"phone" validate:"omitempty,max=40"`
	DateOfBirth          *string `json:"dateOfBirth"`
	Nationality          string  `json:"nationality" validate:"omitempty,max=100"`
	TargetCountry        string  `json:"targetCountry" validate:"omitempty,max=100"`
	TargetProgram        string  `json:"targetProgram" validate:"omitempty,max=150"`
	EnglishProficiency   string  `json:"englishProficiency" validate:"omitempty,max=100"`
	HighestQualification string  `json:"highestQualification" validate:"omitempty,max=150"`
	ConsultancyFeePaid   bool    `json:"consultancyFeePaid"`
	Scholarship          bool    `json:"scholarship"`
	Status               string  `json:"status" validate:"omitempty,oneof=active inactive enrolled"`
	CounselorID          *string `json:"counselorId" validate:"omitempty,uuid"`
	AdmissionOfficerID   *string `json:"admissionOfficerId" validate:"omitempty,uuid"`
	Branch               string  `json:"branch" validate:"omitempty,max=100"`
	Region               string  `json:"region" validate:"omitempty,max=100"`
	ProfilePicture       string  `json:"profilePicture" validate:"omitempty,max=500"`
	Notes                string  `json:"notes"`
}

// ConvertLeadRequest is the POST /students/convert-from-lead payload. Blank
// contact and target fields are copied from the lead.
type ConvertLeadRequest struct {
	LeadID               string  `json:"leadId" validate:"required"`
	Name                 string  `json:"name" validate:"omitempty,max=150"`
	Email                string  `json:"email" validate:"omitempty,email"`
	Phone                string  `json:"phone" validate:"omitempty,max=40"`
	DateOfBirth          *string `json:"dateOfBirth"`
	Nationality          string  `json:"nationality" validate:"omitempty,max=100"`
	TargetCountry        string  `json:"targetCountry" validate:"omitempty,max=100"`
	TargetProgram        string  `json:"targetProgram" validate:"omitempty,max=150"`
	EnglishProficiency   string  `json:"englishProficiency" validate:"omitempty,max=100"`
	HighestQualification string  `json:"highestQualification" validate:"omitempty,max=150"`
	AdmissionOfficerID   *string `json:"admissionOfficerId" validate:"omitempty,uuid"`
	Notes                string  `json:"notes"`
}

// UpdateStudentRequest is the PUT /students/:id payload. Nil fields are left unchanged.
type UpdateStudentRequest struct {
	Name                 *string `json:"name" validate:"omitempty,min=1,max=150"`
	Email                *string `json:"email" validate:"omitempty,email"`
	Phone                *string `json:"phone" validate:"omitempty,max=40"`
	DateOfBirth          *string `json:"dateOfBirth"`
	Nationality          *string `json:"nationality" validate:"omitempty,max=100"`
	TargetCountry        *string `json:"targetCountry" validate:"omitempty,max=100"`
	TargetProgram        *string `json:"targetProgram" validate:"omitempty,max=150"`
	EnglishProficiency   *string `json:"englishProficiency" validate:"omitempty,max=100"`
	HighestQualification *string `json:"highestQualification" validate:"omitempty,max=150"`
	ConsultancyFeePaid   *bool   `json:"consultancyFeePaid"`
	Scholarship          *bool   `json:"scholarship"`
	Status               *string `json:"status" validate:"omitempty,oneof=active inactive enrolled"`
	CounselorID          *string `json:"counselorId" validate:"omitempty,uuid"`
	AdmissionOfficerID   *string `json:"admissionOfficerId" validate:"omitempty,uuid"`
	Branch               *string `json:"branch" validate:"omitempty,max=100"`
	Region               *string `json:"region" validate:"omitempty,max=100"`
	ProfilePicture       *string `json:"profilePicture" validate:"omitempty,max=500"`
	Notes                *string `json:"notes"`
}
