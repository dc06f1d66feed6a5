package repository

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/educrm-api/internal/models"
)

// scopeCondition returns the visibility filter of scope for a table aliased
// alias. Tables without an admission_officer_id column pass tracksOfficer=false
// and are not filtered for admission officers.
func scopeCondition(scope models.Scope, alias string, tracksOfficer bool, next int) (string, interface{}, bool) {
	switch scope.Role {
	case models.RoleCounselor:
		return fmt.Sprintf("%s.counselor_id = $%d", alias, next), scope.UserID, true
	case models.RoleAdmissionOfficer:
		if !tracksOfficer {
			return "", nil, false
		}
		return fmt.Sprintf("%s.admission_officer_id = $%d", alias, next), scope.UserID, true
	default:
		return "", nil, false
	}
}

// orderClause resolves a whitelisted sort column and direction.
func orderClause(alias, sortBy, sortOrder string, allowed map[string]bool, fallback string) string {
	if !allowed[sortBy] {
		sortBy = fallback
	}
	sortOrder = strings.ToUpper(sortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s.%s %s", alias, sortBy, sortOrder)
}

func whereClause(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps q for a substring match under ESCAPE '\', so wildcard
// characters typed by users match literally.
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(q)) + "%"
}

func execOr(db *sqlx.DB, exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return db
}
