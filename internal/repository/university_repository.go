package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/educrm-api/internal/models"
)

const universityColumns = `u.id, u.name, u.country, u.city, u.website, u.ranking, u.description, u.admission_requirements,
u.application_fee, u.currency, u.created_at, u.updated_at`

// UniversityRepository provides database access for university reference data.
type UniversityRepository struct {
	db *sqlx.DB
}

// NewUniversityRepository creates a new instance of UniversityRepository.
func NewUniversityRepository(db *sqlx.DB) *UniversityRepository {
	return &UniversityRepository{db: db}
}

// List returns universities without child rows.
func (r *UniversityRepository) List(ctx context.Context, filter models.UniversityFilter) ([]models.University, int, error) {
	var conditions []string
	var args []interface{}
	if filter.Country != "" {
		conditions = append(conditions, fmt.Sprintf("u.country = $%d", len(args)+1))
		args = append(args, filter.Country)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(u.name ILIKE $%d ESCAPE '\\' OR u.city ILIKE $%d ESCAPE '\\')", len(args)+1, len(args)+1))
		args = append(args, likePattern(filter.Search))
	}

	where := whereClause(conditions)
	page, size := models.NormalizePage(filter.Page, filter.PageSize)
	listQuery := fmt.Sprintf("SELECT %s FROM universities u%s ORDER BY u.ranking NULLS LAST, u.name LIMIT %d OFFSET %d", universityColumns, where, size, (page-1)*size)

	var items []models.University
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list universities: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM universities u%s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count universities: %w", err)
	}
	return items, total, nil
}

// FindByID returns a university with its courses, intakes and accepted tests.
func (r *UniversityRepository) FindByID(ctx context.Context, id string) (*models.University, error) {
	var uni models.University
	if err := r.db.GetContext(ctx, &uni, fmt.Sprintf("SELECT %s FROM universities u WHERE u.id = $1", universityColumns), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find university: %w", err)
	}

	if err := r.db.SelectContext(ctx, &uni.Courses, `SELECT id, university_id, name, level, duration, tuition_fee, currency FROM university_courses WHERE university_id = $1 ORDER BY name`, id); err != nil {
		return nil, fmt.Errorf("load university courses: %w", err)
	}
	if err := r.db.SelectContext(ctx, &uni.Intakes, `SELECT id, university_id, month, deadline FROM university_intakes WHERE university_id = $1 ORDER BY deadline NULLS LAST`, id); err != nil {
		return nil, fmt.Errorf("load university intakes: %w", err)
	}
	if err := r.db.SelectContext(ctx, &uni.AcceptedElts, `SELECT id, university_id, test_name, minimum_score FROM university_accepted_elts WHERE university_id = $1 ORDER BY test_name`, id); err != nil {
		return nil, fmt.Errorf("load university accepted tests: %w", err)
	}
	return &uni, nil
}

// Create inserts a university together with its child rows in one transaction.
func (r *UniversityRepository) Create(ctx context.Context, uni *models.University) error {
	if uni.ID == "" {
		uni.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	uni.CreatedAt = now
	uni.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin university tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insertUni = `INSERT INTO universities (id, name, country, city, website, ranking, description, admission_requirements,
application_fee, currency, created_at, updated_at)
VALUES (:id, :name, :country, :city, :website, :ranking, :description, :admission_requirements,
:application_fee, :currency, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertUni, uni); err != nil {
		return fmt.Errorf("create university: %w", err)
	}

	for i := range uni.Courses {
		c := &uni.Courses[i]
		c.ID, c.UniversityID = uuid.NewString(), uni.ID
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO university_courses (id, university_id, name, level, duration, tuition_fee, currency)
VALUES (:id, :university_id, :name, :level, :duration, :tuition_fee, :currency)`, c); err != nil {
			return fmt.Errorf("create university course: %w", err)
		}
	}
	for i := range uni.Intakes {
		in := &uni.Intakes[i]
		in.ID, in.UniversityID = uuid.NewString(), uni.ID
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO university_intakes (id, university_id, month, deadline)
VALUES (:id, :university_id, :month, :deadline)`, in); err != nil {
			return fmt.Errorf("create university intake: %w", err)
		}
	}
	for i := range uni.AcceptedElts {
		elt := &uni.AcceptedElts[i]
		elt.ID, elt.UniversityID = uuid.NewString(), uni.ID
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO university_accepted_elts (id, university_id, test_name, minimum_score)
VALUES (:id, :university_id, :test_name, :minimum_score)`, elt); err != nil {
			return fmt.Errorf("create university accepted test: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit university: %w", err)
	}
	return nil
}
