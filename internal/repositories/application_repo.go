package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/review-campaigns/backend/internal/db"
	"github.com/review-campaigns/backend/internal/models"
)

type ApplicationRepo struct {
	pool *pgxpool.Pool
}

func NewApplicationRepo(pool *pgxpool.Pool) *ApplicationRepo {
	return &ApplicationRepo{pool: pool}
}

const applicationColumns = `
	a.id, a.campaign_id, a.influencer_id, a.message, to_char(a.visit_date, 'YYYY-MM-DD'),
	a.status, a.created_at, a.updated_at`

func scanApplication(row pgx.Row, a *models.Application, extra ...any) error {
	dest := []any{&a.ID, &a.CampaignID, &a.InfluencerID, &a.Message, &a.VisitDate,
		&a.Status, &a.CreatedAt, &a.UpdatedAt}
	return row.Scan(append(dest, extra...)...)
}

// Create inserts a pending application. A second application from the same
// influencer for the same campaign fails with ErrConflict.
func (r *ApplicationRepo) Create(ctx context.Context, a *models.Application) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO applications (campaign_id, influencer_id, message, visit_date, status)
		VALUES ($1, $2, $3, $4::date, $5)
		RETURNING id, created_at, updated_at
	`, a.CampaignID, a.InfluencerID, a.Message, a.VisitDate, a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return translate(err)
}

func (r *ApplicationRepo) ListByInfluencer(ctx context.Context, influencerID uuid.UUID, status *models.ApplicationStatus) ([]models.ApplicationWithCampaign, error) {
	query := `
		SELECT ` + applicationColumns + `,
		       c.title, c.benefits, to_char(c.recruitment_end_date, 'YYYY-MM-DD'), c.status
		FROM applications a
		JOIN campaigns c ON c.id = a.campaign_id
		WHERE a.influencer_id = $1`
	args := []any{influencerID}
	if status != nil {
		query += ` AND a.status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY a.created_at DESC`

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []models.ApplicationWithCampaign{}
	for rows.Next() {
		var a models.ApplicationWithCampaign
		if err := scanApplication(rows, &a.Application,
			&a.Campaign.Title, &a.Campaign.Benefits, &a.Campaign.RecruitmentEndDate, &a.Campaign.Status); err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// ListByCampaign returns applicants oldest first with their contact details.
func (r *ApplicationRepo) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]models.ApplicationWithInfluencer, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT `+applicationColumns+`,
		       ip.channel_name, ip.channel_url, ip.follower_count,
		       p.name, p.phone, p.email, to_char(p.birth_date, 'YYYY-MM-DD')
		FROM applications a
		JOIN influencer_profiles ip ON ip.id = a.influencer_id
		JOIN profiles p ON p.id = ip.user_id
		WHERE a.campaign_id = $1
		ORDER BY a.created_at ASC
	`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []models.ApplicationWithInfluencer{}
	for rows.Next() {
		var a models.ApplicationWithInfluencer
		inf := &a.Influencer
		if err := scanApplication(rows, &a.Application,
			&inf.ChannelName, &inf.ChannelURL, &inf.FollowerCount,
			&inf.Profile.Name, &inf.Profile.Phone, &inf.Profile.Email, &inf.Profile.BirthDate); err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// UpdatePendingStatus moves the listed applications of one campaign out of
// pending. Ids from other campaigns and already decided rows are left untouched.
func (r *ApplicationRepo) UpdatePendingStatus(ctx context.Context, campaignID uuid.UUID, ids []uuid.UUID, status models.ApplicationStatus) ([]models.ApplicationChange, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		UPDATE applications a SET status = $1, updated_at = now()
		FROM influencer_profiles ip
		WHERE ip.id = a.influencer_id
		  AND a.campaign_id = $2
		  AND a.id = ANY($3)
		  AND a.status = $4
		RETURNING a.id, ip.user_id, a.status
	`, status, campaignID, ids, models.ApplicationStatusPending)
	if err != nil {
		return nil, err
	}
	return collectChanges(rows)
}

// RejectPendingExcept rejects every pending application of the campaign
// whose id is not in keep.
func (r *ApplicationRepo) RejectPendingExcept(ctx context.Context, campaignID uuid.UUID, keep []uuid.UUID) ([]models.ApplicationChange, error) {
	if keep == nil {
		keep = []uuid.UUID{}
	}
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		UPDATE applications a SET status = $1, updated_at = now()
		FROM influencer_profiles ip
		WHERE ip.id = a.influencer_id
		  AND a.campaign_id = $2
		  AND a.status = $3
		  AND NOT (a.id = ANY($4))
		RETURNING a.id, ip.user_id, a.status
	`, models.ApplicationStatusRejected, campaignID, models.ApplicationStatusPending, keep)
	if err != nil {
		return nil, err
	}
	return collectChanges(rows)
}

func collectChanges(rows pgx.Rows) ([]models.ApplicationChange, error) {
	defer rows.Close()

	var changes []models.ApplicationChange
	for rows.Next() {
		var ch models.ApplicationChange
		if err := rows.Scan(&ch.ApplicationID, &ch.InfluencerUserID, &ch.Status); err != nil {
			return nil, err
		}
		changes = append(changes, ch)
	}
	return changes, rows.Err()
}
