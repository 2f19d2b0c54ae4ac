package database

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/luminacrm/lumina/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `id, name, email, COALESCE(phone, ''), COALESCE(company, ''),
	COALESCE(source, 'Website'), status, COALESCE(message, ''), COALESCE(value, 0), created_at`

func scanLead(row interface{ Scan(...any) error }) (entity.Lead, error) {
	var (
		l              entity.Lead
		source, status string
		created        time.Time
	)
	err := row.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Company,
		&source, &status, &l.Message, &l.Value, &created)
	if err != nil {
		return entity.Lead{}, err
	}
	l.Source = entity.ParseSource(source)
	l.Status = entity.ParseStatus(status)
	l.Value = entity.NormalizeValue(l.Value)
	l.DateAdded = created
	l.LastInteraction = created
	return l, nil
}

// FindAll returns every lead, newest first.
func (r *LeadRepository) FindAll(ctx context.Context) ([]entity.Lead, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeads(rows)
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	l, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts the lead, assigning its id.
func (r *LeadRepository) Create(ctx context.Context, l *entity.Lead) error {
	l.ID = uuid.New().String()
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO leads (id, name, email, phone, company, source, message, status, value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING created_at`,
		l.ID, l.Name, l.Email, nullString(l.Phone), nullString(l.Company),
		l.Source.String(), nullString(l.Message), l.Status.Wire(), l.Value,
	)
	if err := row.Scan(&l.DateAdded); err != nil {
		return err
	}
	l.LastInteraction = l.DateAdded
	return nil
}

// Update applies a partial update with COALESCE semantics: nil patch
// fields keep the stored value.
func (r *LeadRepository) Update(ctx context.Context, id string, patch entity.LeadPatch) (*entity.Lead, error) {
	var source *string
	if patch.Source != nil {
		s := patch.Source.String()
		source = &s
	}
	row := r.DB.QueryRowContext(ctx, `
		UPDATE leads
		SET name    = COALESCE($1, name),
		    email   = COALESCE($2, email),
		    phone   = COALESCE($3, phone),
		    company = COALESCE($4, company),
		    source  = COALESCE($5, source),
		    message = COALESCE($6, message),
		    value   = COALESCE($7, value)
		WHERE id = $8
		RETURNING `+leadColumns,
		patch.Name, patch.Email, patch.Phone, patch.Company, source, patch.Message, patch.Value, id,
	)
	l, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status entity.Status) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx,
		`UPDATE leads SET status = $1 WHERE id = $2 RETURNING `+leadColumns,
		status.Wire(), id)
	l, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Delete removes the lead (notes cascade) and returns the deleted row.
func (r *LeadRepository) Delete(ctx context.Context, id string) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx,
		`DELETE FROM leads WHERE id = $1 RETURNING `+leadColumns, id)
	l, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Search filters by free-text query (name/email, case-insensitive),
// status and source; empty arguments are skipped.
func (r *LeadRepository) Search(ctx context.Context, query string, status entity.Status, source string) ([]entity.Lead, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + leadColumns + ` FROM leads WHERE 1=1`)
	var args []any

	if query != "" {
		args = append(args, "%"+query+"%")
		sb.WriteString(` AND (name ILIKE $1 OR email ILIKE $1)`)
	}
	if status != entity.StatusUnknown {
		args = append(args, status.Wire())
		sb.WriteString(` AND status = $` + itoa(len(args)))
	}
	if source != "" {
		args = append(args, entity.ParseSource(source).String())
		sb.WriteString(` AND source = $` + itoa(len(args)))
	}
	sb.WriteString(` ORDER BY created_at DESC`)

	rows, err := r.DB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeads(rows)
}

// AnalyticsRow is the aggregate the analytics endpoint serves.
type AnalyticsRow struct {
	Total, New, Contacted, Converted, Lost int
	PipelineValue                          float64
}

func (r *LeadRepository) Analytics(ctx context.Context) (*AnalyticsRow, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'new'),
		       COUNT(*) FILTER (WHERE status = 'contacted'),
		       COUNT(*) FILTER (WHERE status = 'converted'),
		       COUNT(*) FILTER (WHERE status = 'lost'),
		       COALESCE(SUM(value), 0)
		FROM leads`)
	var a AnalyticsRow
	if err := row.Scan(&a.Total, &a.New, &a.Contacted, &a.Converted, &a.Lost, &a.PipelineValue); err != nil {
		return nil, err
	}
	return &a, nil
}

func collectLeads(rows *sql.Rows) ([]entity.Lead, error) {
	leads := []entity.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
