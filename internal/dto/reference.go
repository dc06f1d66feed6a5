package dto

// DropdownRequest creates or replaces a lookup value.
type DropdownRequest struct {
	Module    string `json:"module" validate:"required,oneof=leads students applications admissions events"`
	FieldName string `json:"fieldName" validate:"required,max=100"`
	Key       string `json:"key" validate:"required,max=100"`
	Value     string `json:"value" validate:"required,max=150"`
	Sequence  int    `json:"sequence" validate:"gte=0"`
	IsDefault bool   `json:"isDefault"`
}

// UniversityRequest creates a university with its child rows.
type UniversityRequest struct {
	Name                  string                     `json:"name" validate:"required,max=200"`
	Country               string                     `json:"country" validate:"required,max=100"`
	City                  string                     `json:"city" validate:"omitempty,max=100"`
	Website               string                     `json:"website" validate:"omitempty,url"`
	Ranking               *int                       `json:"ranking" validate:"omitempty,gte=1"`
	Description           string                     `json:"description"`
	AdmissionRequirements string                     `json:"admissionRequirements"`
	ApplicationFee        *float64                   `json:"applicationFee" validate:"omitempty,gte=0"`
	Currency              string                     `json:"currency" validate:"omitempty,len=3"`
	Courses               []UniversityCourseRequest  `json:"courses" validate:"omitempty,dive"`
	Intakes               []UniversityIntakeRequest  `json:"intakes" validate:"omitempty,dive"`
	AcceptedElts          []UniversityEltTestRequest `json:"acceptedElts" validate:"omitempty,dive"`
}

// UniversityCourseRequest is one course of a university.
type UniversityCourseRequest struct {
	Name       string   `json:"name" validate:"required,max=200"`
	Level      string   `json:"level" validate:"omitempty,max=100"`
	Duration   string   `json:"duration" validate:"omitempty,max=50"`
	TuitionFee *float64 `json:"tuitionFee" validate:"omitempty,gte=0"`
	Currency   string   `json:"currency" validate:"omitempty,len=3"`
}

// UniversityIntakeRequest is one intake window.
type UniversityIntakeRequest struct {
	Month    string  `json:"month" validate:"required,max=20"`
	Deadline *string `json:"deadline"`
}

// UniversityEltTestRequest is one accepted English test.
type UniversityEltTestRequest struct {
	TestName     string `json:"testName" validate:"required,max=50"`
	MinimumScore string `json:"minimumScore" validate:"omitempty,max=20"`
}
