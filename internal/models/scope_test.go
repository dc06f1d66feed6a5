package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestScopeCanSee(t *testing.T) {
	lead := &Lead{CounselorID: strPtr("c1")}
	student := &Student{CounselorID: strPtr("c1"), AdmissionOfficerID: strPtr("o1")}

	counselor := Scope{UserID: "c1", Role: RoleCounselor}
	other := Scope{UserID: "c2", Role: RoleCounselor}
	officer := Scope{UserID: "o1", Role: RoleAdmissionOfficer}
	otherOfficer := Scope{UserID: "o2", Role: RoleAdmissionOfficer}
	manager := Scope{UserID: "m1", Role: RoleBranchManager}

	assert.True(t, counselor.CanSee(lead))
	assert.False(t, other.CanSee(lead))
	assert.True(t, otherOfficer.CanSee(lead), "officers are not scoped on leads")
	assert.True(t, officer.CanSee(student))
	assert.False(t, otherOfficer.CanSee(student))
	assert.True(t, manager.CanSee(student))
	assert.False(t, counselor.CanSee(&Application{}), "unassigned rows are hidden from counselors")
}

func TestStudentStatusLabel(t *testing.T) {
	assert.Equal(t, "Open", StudentStatusActive.Label())
	assert.Equal(t, "Closed", StudentStatusInactive.Label())
	assert.Equal(t, "Enrolled", StudentStatusEnrolled.Label())
	assert.Equal(t, "archived", StudentStatus("archived").Label())
}

func TestKnownDropdownField(t *testing.T) {
	assert.True(t, KnownDropdownField(ModuleLeads, "status"))
	assert.True(t, KnownDropdownField(ModuleApplications, "caseStatus"))
	assert.False(t, KnownDropdownField(ModuleLeads, "Status"))
	assert.False(t, KnownDropdownField("unknown", "status"))
}

func TestNormalizePage(t *testing.T) {
	page, size := NormalizePage(0, 500)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)
}
