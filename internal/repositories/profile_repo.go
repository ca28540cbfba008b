package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/review-campaigns/backend/internal/db"
	"github.com/review-campaigns/backend/internal/models"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Create(ctx context.Context, p *models.Profile) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO profiles (id, name, birth_date, phone, email, role)
		VALUES ($1, $2, $3::date, $4, $5, $6)
		RETURNING terms_agreed_at, created_at
	`, p.ID, p.Name, p.BirthDate, p.Phone, p.Email, p.Role,
	).Scan(&p.TermsAgreedAt, &p.CreatedAt)
	return translate(err)
}

func (r *ProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, name, to_char(birth_date, 'YYYY-MM-DD'), phone, email, role, terms_agreed_at, created_at
		FROM profiles WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.BirthDate, &p.Phone, &p.Email, &p.Role, &p.TermsAgreedAt, &p.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// SetRole overwrites the profile role. Returns ErrNotFound when no profile exists.
func (r *ProfileRepo) SetRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `UPDATE profiles SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *ProfileRepo) CreateInfluencer(ctx context.Context, ip *models.InfluencerProfile) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO influencer_profiles (user_id, channel_name, channel_url, follower_count)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, ip.UserID, ip.ChannelName, ip.ChannelURL, ip.FollowerCount,
	).Scan(&ip.ID, &ip.CreatedAt)
	return translate(err)
}

func (r *ProfileRepo) GetInfluencerByUserID(ctx context.Context, userID uuid.UUID) (*models.InfluencerProfile, error) {
	var ip models.InfluencerProfile
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, user_id, channel_name, channel_url, follower_count, created_at
		FROM influencer_profiles WHERE user_id = $1
	`, userID).Scan(&ip.ID, &ip.UserID, &ip.ChannelName, &ip.ChannelURL, &ip.FollowerCount, &ip.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &ip, nil
}

func (r *ProfileRepo) CreateAdvertiser(ctx context.Context, ap *models.AdvertiserProfile) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO advertiser_profiles (user_id, company_name, address, business_phone, business_number, representative_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, ap.UserID, ap.CompanyName, ap.Address, ap.BusinessPhone, ap.BusinessNumber, ap.RepresentativeName,
	).Scan(&ap.ID, &ap.CreatedAt)
	return translate(err)
}

func (r *ProfileRepo) GetAdvertiserByUserID(ctx context.Context, userID uuid.UUID) (*models.AdvertiserProfile, error) {
	var ap models.AdvertiserProfile
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, user_id, company_name, address, business_phone, business_number, representative_name, created_at
		FROM advertiser_profiles WHERE user_id = $1
	`, userID).Scan(&ap.ID, &ap.UserID, &ap.CompanyName, &ap.Address, &ap.BusinessPhone,
		&ap.BusinessNumber, &ap.RepresentativeName, &ap.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &ap, nil
}
