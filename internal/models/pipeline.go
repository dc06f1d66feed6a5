package models

import "time"

// GroupCount is one bucket of a grouped tally.
type GroupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// PipelineFilter bounds the rows fed into dashboard and report tallies.
type PipelineFilter struct {
	From        time.Time
	To          time.Time
	Branch      string
	CounselorID string
}

// LeadFact is the slice of a lead needed for aggregation.
type LeadFact struct {
	Status      string  `db:"status"`
	Source      string  `db:"source"`
	Branch      string  `db:"branch"`
	CounselorID *string `db:"counselor_id"`
}

// StudentFact is the slice of a student needed for aggregation.
type StudentFact struct {
	Status        string `db:"status"`
	Branch        string `db:"branch"`
	TargetCountry string `db:"target_country"`
}

// ApplicationFact is the slice of an application needed for aggregation.
type ApplicationFact struct {
	University string `db:"university"`
	Country    string `db:"country"`
	AppStatus  string `db:"app_status"`
}

// AdmissionFact is the slice of an admission needed for aggregation.
type AdmissionFact struct {
	VisaStatus string `db:"visa_status"`
}

// DashboardTotals holds headline counts for the dashboard.
type DashboardTotals struct {
	Leads        int `json:"leads"`
	Students     int `json:"students"`
	Applications int `json:"applications"`
	Admissions   int `json:"admissions"`
	Events       int `json:"events"`
}

// DashboardSummary is the current-month overview.
type DashboardSummary struct {
	Month                  string          `json:"month"`
	Totals                 DashboardTotals `json:"totals"`
	LeadsByStatus          []GroupCount    `json:"leadsByStatus"`
	LeadsBySource          []GroupCount    `json:"leadsBySource"`
	ApplicationsByStatus   []GroupCount    `json:"applicationsByStatus"`
	AdmissionsByVisaStatus []GroupCount    `json:"admissionsByVisaStatus"`
	GeneratedAt            time.Time       `json:"generatedAt"`
}

// ReportSection is one grouped table of a report.
type ReportSection struct {
	Name   string       `json:"name"`
	Title  string       `json:"title"`
	Total  int          `json:"total"`
	Groups []GroupCount `json:"groups"`
}

// Report is the grouped-count output for a date range.
type Report struct {
	From        string          `json:"from"`
	To          string          `json:"to"`
	Branch      string          `json:"branch,omitempty"`
	CounselorID string          `json:"counselorId,omitempty"`
	Sections    []ReportSection `json:"sections"`
	GeneratedAt time.Time       `json:"generatedAt"`
}
