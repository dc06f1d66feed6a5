package models

import "time"

// University is reference data browsed by counselors.
type University struct {
	ID                    string                  `db:"id" json:"id"`
	Name                  string                  `db:"name" json:"name"`
	Country               string                  `db:"country" json:"country"`
	City                  string                  `db:"city" json:"city"`
	Website               string                  `db:"website" json:"website"`
	Ranking               *int                    `db:"ranking" json:"ranking"`
	Description           string                  `db:"description" json:"description"`
	AdmissionRequirements string                  `db:"admission_requirements" json:"admissionRequirements"`
	ApplicationFee        *float64                `db:"application_fee" json:"applicationFee"`
	Currency              string                  `db:"currency" json:"currency"`
	CreatedAt             time.Time               `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time               `db:"updated_at" json:"updatedAt"`
	Courses               []UniversityCourse      `db:"-" json:"courses,omitempty"`
	Intakes               []UniversityIntake      `db:"-" json:"intakes,omitempty"`
	AcceptedElts          []UniversityAcceptedElt `db:"-" json:"acceptedElts,omitempty"`
}

// UniversityCourse is a program offered by a university.
type UniversityCourse struct {
	ID           string   `db:"id" json:"id"`
	UniversityID string   `db:"university_id" json:"universityId"`
	Name         string   `db:"name" json:"name"`
	Level        string   `db:"level" json:"level"`
	Duration     string   `db:"duration" json:"duration"`
	TuitionFee   *float64 `db:"tuition_fee" json:"tuitionFee"`
	Currency     string   `db:"currency" json:"currency"`
}

// UniversityIntake is an admission window.
type UniversityIntake struct {
	ID           string     `db:"id" json:"id"`
	UniversityID string     `db:"university_id" json:"universityId"`
	Month        string     `db:"month" json:"month"`
	Deadline     *time.Time `db:"deadline" json:"deadline"`
}

// UniversityAcceptedElt is an English language test the university accepts.
type UniversityAcceptedElt struct {
	ID           string `db:"id" json:"id"`
	UniversityID string `db:"university_id" json:"universityId"`
	TestName     string `db:"test_name" json:"testName"`
	MinimumScore string `db:"minimum_score" json:"minimumScore"`
}

// UniversityFilter captures list filters for universities.
type UniversityFilter struct {
	Country  string
	Search   string
	Page     int
	PageSize int
}
