package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/educrm-api/internal/models"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
	"github.com/noah-isme/educrm-api/pkg/validation"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// isMissing reports lookups that cannot match a row: no rows, or an id
// postgres refused to cast to uuid.
func isMissing(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || pqCode(err) == "22P02"
}

func isUniqueViolation(err error) bool {
	return pqCode(err) == "23505"
}

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

// loadFailure maps a repository lookup error onto a public error.
func loadFailure(err error, what string) error {
	if isMissing(err) {
		return appErrors.Clone(appErrors.ErrNotFound, what+" not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+what)
}

// saveFailure maps a repository write error onto a public error.
func saveFailure(err error, what string) error {
	if isMissing(err) {
		return appErrors.Clone(appErrors.ErrNotFound, what+" not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update "+what)
}

// visible hides rows outside scope behind ACCESS_DENIED.
func visible(scope models.Scope, row models.Assigned, what string) error {
	if !scope.CanSee(row) {
		return appErrors.Clone(appErrors.ErrAccessDenied, what+" not found")
	}
	return nil
}

// optionalDate parses an optional date string, mapping failures onto field.
func optionalDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := validation.ParseDate(field, *raw)
	if err != nil {
		return nil, validation.Bind(err, "invalid date")
	}
	return &t, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setOptional(dst **string, src *string) {
	if src == nil {
		return
	}
	if *src == "" {
		*dst = nil
		return
	}
	v := *src
	*dst = &v
}

func setFloat(dst **float64, src *float64) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func nonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// defaultCounselor assigns counselors to their own records when no counselor was given.
func defaultCounselor(requested *string, scope models.Scope) *string {
	if requested != nil && *requested != "" {
		return requested
	}
	if scope.Role == models.RoleCounselor {
		return scope.Actor()
	}
	return nil
}
