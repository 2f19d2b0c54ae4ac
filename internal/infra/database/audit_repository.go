package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"strings"
	"time"
)

// AuditEntry is one recorded admin action.
type AuditEntry struct {
	ID         int64             `json:"id"`
	UserEmail  string            `json:"user_email"`
	ActionType string            `json:"action_type"`
	EntityType string            `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	Details    map[string]string `json:"details"`
	CreatedAt  time.Time         `json:"created_at"`
}

type AuditRepository struct {
	DB *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{DB: db}
}

// Record writes one audit entry. Failures are logged and swallowed:
// auditing must never break the operation it describes.
func (r *AuditRepository) Record(ctx context.Context, userEmail, actionType, entityType, entityID string, details map[string]string) {
	payload, err := json.Marshal(details)
	if err != nil {
		payload = []byte("{}")
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO audit_logs (user_email, action_type, entity_type, entity_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())`,
		userEmail, actionType, entityType, entityID, payload)
	if err != nil {
		log.Printf("audit log not recorded (%s %s %s): %v", actionType, entityType, entityID, err)
	}
}

// Find returns entries newest first, filtered by entity type, action
// type and acting user when given, with limit/offset pagination. The
// second return is the total matching count.
func (r *AuditRepository) Find(ctx context.Context, entityType, actionType, userEmail string, limit, offset int) ([]AuditEntry, int, error) {
	var (
		where strings.Builder
		args  []any
	)
	where.WriteString(` WHERE 1=1`)
	if entityType != "" {
		args = append(args, entityType)
		where.WriteString(` AND entity_type = $` + itoa(len(args)))
	}
	if actionType != "" {
		args = append(args, actionType)
		where.WriteString(` AND action_type = $` + itoa(len(args)))
	}
	if userEmail != "" {
		args = append(args, userEmail)
		where.WriteString(` AND user_email = $` + itoa(len(args)))
	}

	var total int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs`+where.String(), args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	args = append(args, limit)
	limitArg := itoa(len(args))
	args = append(args, offset)
	offsetArg := itoa(len(args))

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_email, action_type, entity_type, entity_id, details, created_at
		FROM audit_logs`+where.String()+`
		ORDER BY created_at DESC
		LIMIT $`+limitArg+` OFFSET $`+offsetArg, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := []AuditEntry{}
	for rows.Next() {
		var (
			e   AuditEntry
			raw []byte
		)
		if err := rows.Scan(&e.ID, &e.UserEmail, &e.ActionType, &e.EntityType, &e.EntityID, &raw, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal(raw, &e.Details); err != nil {
			e.Details = map[string]string{}
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
