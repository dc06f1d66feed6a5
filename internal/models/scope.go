package models

// Scope identifies the caller on whose behalf a query runs. It is derived from
// the verified access token for every request.
type Scope struct {
	UserID   string
	UserName string
	Role     UserRole
}

// Assigned is implemented by rows that carry staff assignments.
type Assigned interface {
	AssignedCounselor() string
	// AssignedAdmissionOfficer returns false when the row has no officer column.
	AssignedAdmissionOfficer() (string, bool)
}

// CanSee applies row-level visibility. Counselors see rows assigned to them,
// admission officers see rows where they are the officer, everyone else sees all.
func (s Scope) CanSee(row Assigned) bool {
	switch s.Role {
	case RoleCounselor:
		return row.AssignedCounselor() == s.UserID
	case RoleAdmissionOfficer:
		officer, tracked := row.AssignedAdmissionOfficer()
		if !tracked {
			return true
		}
		return officer == s.UserID
	default:
		return true
	}
}

// Actor returns the user id pointer stored in created_by/updated_by columns.
func (s Scope) Actor() *string {
	if s.UserID == "" {
		return nil
	}
	id := s.UserID
	return &id
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
