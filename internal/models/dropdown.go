package models

import "time"

// Dropdown modules.
const (
	ModuleLeads        = "leads"
	ModuleStudents     = "students"
	ModuleApplications = "applications"
	ModuleAdmissions   = "admissions"
	ModuleEvents       = "events"
)

// DropdownFields is the fixed set of lookup fields per module. Lookups outside
// this table are rejected when dropdown rows are written or queried.
var DropdownFields = map[string][]string{
	ModuleLeads:        {"status", "source", "type", "program", "country", "branch", "region"},
	ModuleStudents:     {"status", "englishProficiency", "highestQualification", "nationality"},
	ModuleApplications: {"appStatus", "caseStatus", "courseType", "channelPartner", "intake"},
	ModuleAdmissions:   {"visaStatus"},
	ModuleEvents:       {"type"},
}

// KnownDropdownField reports whether module/field is part of the lookup table.
func KnownDropdownField(module, field string) bool {
	for _, f := range DropdownFields[module] {
		if f == field {
			return true
		}
	}
	return false
}

// Dropdown is one selectable value of a module field.
type Dropdown struct {
	ID        string    `db:"id" json:"id"`
	Module    string    `db:"module" json:"module"`
	FieldName string    `db:"field_name" json:"fieldName"`
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	Sequence  int       `db:"sequence" json:"sequence"`
	IsDefault bool      `db:"is_default" json:"isDefault"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// DropdownGroup maps field name to its ordered options for a module.
type DropdownGroup map[string][]Dropdown
