package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/review-campaigns/backend/internal/models"
)

// AuditRepo always writes through the pool, never through a caller's
// transaction, so a failed audit insert cannot abort business writes.
type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

const auditColumns = `id, actor_user_id, actor_type, action, entity_type, entity_id, meta, created_at`

func scanAudit(row pgx.CollectableRow) (models.AuditLog, error) {
	var l models.AuditLog
	err := row.Scan(&l.ID, &l.ActorUserID, &l.ActorType, &l.Action, &l.EntityType, &l.EntityID, &l.Meta, &l.CreatedAt)
	return l, err
}

func (r *AuditRepo) Log(ctx context.Context, entry models.AuditLog) error {
	if entry.ActorType == "" {
		entry.ActorType = models.ActorSystem
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_log (actor_user_id, actor_type, action, entity_type, entity_id, meta)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.ActorUserID, entry.ActorType, entry.Action, entry.EntityType, entry.EntityID, entry.Meta)
	if err != nil {
		return fmt.Errorf("insert audit %q for %s: %w", entry.Action, entry.EntityType, err)
	}
	return nil
}

// GetByEntity pages through the trail of one entity, newest first. Entries
// written in the same instant keep a stable order across pages.
func (r *AuditRepo) GetByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]models.AuditLog, error) {
	limit, offset = pageBounds(limit, offset)

	rows, err := r.pool.Query(ctx, `
		SELECT `+auditColumns+`
		FROM audit_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`, entityType, entityID, limit, offset)
	if err != nil {
		return nil, err
	}
	logs, err := pgx.CollectRows(rows, scanAudit)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}
	return logs, nil
}
