package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/review-campaigns/backend/internal/db"
	"github.com/review-campaigns/backend/internal/models"
)

type CampaignRepo struct {
	pool *pgxpool.Pool
}

func NewCampaignRepo(pool *pgxpool.Pool) *CampaignRepo {
	return &CampaignRepo{pool: pool}
}

const campaignColumns = `
	c.id, c.advertiser_id, ap.user_id, c.title,
	to_char(c.recruitment_start_date, 'YYYY-MM-DD'), to_char(c.recruitment_end_date, 'YYYY-MM-DD'),
	c.recruitment_count, c.benefits, c.store_info, c.mission, c.status, c.created_at, c.updated_at`

func scanCampaign(row pgx.Row, c *models.Campaign, extra ...any) error {
	dest := []any{&c.ID, &c.AdvertiserID, &c.AdvertiserUserID, &c.Title,
		&c.RecruitmentStartDate, &c.RecruitmentEndDate,
		&c.RecruitmentCount, &c.Benefits, &c.StoreInfo, &c.Mission, &c.Status, &c.CreatedAt, &c.UpdatedAt}
	return row.Scan(append(dest, extra...)...)
}

func (r *CampaignRepo) Create(ctx context.Context, c *models.Campaign) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO campaigns (advertiser_id, title, recruitment_start_date, recruitment_end_date,
		                       recruitment_count, benefits, store_info, mission, status)
		VALUES ($1, $2, $3::date, $4::date, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, c.AdvertiserID, c.Title, c.RecruitmentStartDate, c.RecruitmentEndDate,
		c.RecruitmentCount, c.Benefits, c.StoreInfo, c.Mission, c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return translate(err)
}

func (r *CampaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	var c models.Campaign
	row := db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns c
		JOIN advertiser_profiles ap ON ap.id = c.advertiser_id
		WHERE c.id = $1
	`, id)
	if err := scanCampaign(row, &c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CampaignRepo) GetDetail(ctx context.Context, id uuid.UUID) (*models.CampaignDetail, error) {
	var d models.CampaignDetail
	var businessPhone string
	row := db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+campaignColumns+`,
		       ap.company_name, ap.address, ap.business_phone,
		       (SELECT count(*) FROM applications a WHERE a.campaign_id = c.id)
		FROM campaigns c
		JOIN advertiser_profiles ap ON ap.id = c.advertiser_id
		WHERE c.id = $1
	`, id)
	err := scanCampaign(row, &d.Campaign,
		&d.Advertiser.CompanyName, &d.Advertiser.Address, &businessPhone, &d.ApplicationCount)
	if err != nil {
		return nil, translate(err)
	}
	d.Advertiser.BusinessPhone = &businessPhone
	return &d, nil
}

// ListRecruiting returns the public feed. Status and end date are checked
// independently so campaigns whose status was never flipped still drop out.
func (r *CampaignRepo) ListRecruiting(ctx context.Context, today string, limit, offset int) ([]models.CampaignWithAdvertiser, error) {
	limit, offset = pageBounds(limit, offset)

	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT `+campaignColumns+`, ap.company_name, ap.address
		FROM campaigns c
		JOIN advertiser_profiles ap ON ap.id = c.advertiser_id
		WHERE c.status = $1 AND c.recruitment_end_date >= $2::date
		ORDER BY c.created_at DESC
		LIMIT $3 OFFSET $4
	`, models.CampaignStatusRecruiting, today, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []models.CampaignWithAdvertiser{}
	for rows.Next() {
		var c models.CampaignWithAdvertiser
		if err := scanCampaign(rows, &c.Campaign, &c.Advertiser.CompanyName, &c.Advertiser.Address); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *CampaignRepo) ListByAdvertiser(ctx context.Context, advertiserID uuid.UUID) ([]models.CampaignWithCount, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT `+campaignColumns+`,
		       (SELECT count(*) FROM applications a WHERE a.campaign_id = c.id)
		FROM campaigns c
		JOIN advertiser_profiles ap ON ap.id = c.advertiser_id
		WHERE c.advertiser_id = $1
		ORDER BY c.created_at DESC
	`, advertiserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []models.CampaignWithCount{}
	for rows.Next() {
		var c models.CampaignWithCount
		if err := scanCampaign(rows, &c.Campaign, &c.ApplicationCount); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// LockByID is GetByID with a row lock; call it inside TxManager.WithinTx.
func (r *CampaignRepo) LockByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	var c models.Campaign
	row := db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns c
		JOIN advertiser_profiles ap ON ap.id = c.advertiser_id
		WHERE c.id = $1
		FOR UPDATE OF c
	`, id)
	if err := scanCampaign(row, &c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// UpdateStatus is a compare-and-set on status: the row only changes while it
// still holds from.
func (r *CampaignRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.CampaignStatus) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE campaigns SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrCampaignStatusChanged
	}
	return nil
}

// ListExpiredRecruiting returns campaigns still marked recruiting after their end date.
func (r *CampaignRepo) ListExpiredRecruiting(ctx context.Context, today string) ([]models.Campaign, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns c
		JOIN advertiser_profiles ap ON ap.id = c.advertiser_id
		WHERE c.status = $1 AND c.recruitment_end_date < $2::date
		ORDER BY c.recruitment_end_date
		LIMIT 500
	`, models.CampaignStatusRecruiting, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []models.Campaign
	for rows.Next() {
		var c models.Campaign
		if err := scanCampaign(rows, &c); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}
