package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/review-campaigns/backend/internal/events"
	"github.com/review-campaigns/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateCampaign(t *testing.T) {
	env := newTestEnv()
	owner := env.newAdvertiser(t)

	c := env.newCampaign(t, owner, "2025-03-01", "2025-03-15")
	assert.Equal(t, models.CampaignStatusRecruiting, c.Status)
	assert.NotEqual(t, uuid.Nil, c.AdvertiserID)
	assert.Len(t, env.pub.ofType(events.EventCampaignCreated), 1)
	assert.Contains(t, env.audit.actions(), "campaign_created")
}

func TestCreateCampaignValidation(t *testing.T) {
	env := newTestEnv()
	owner := env.newAdvertiser(t)
	ctx := context.Background()

	tests := []struct {
		name string
		c    models.Campaign
	}{
		{"end before start", models.Campaign{RecruitmentStartDate: "2025-03-10", RecruitmentEndDate: "2025-03-09", RecruitmentCount: 1}},
		{"bad start date", models.Campaign{RecruitmentStartDate: "03/10/2025", RecruitmentEndDate: "2025-03-09", RecruitmentCount: 1}},
		{"zero recruits", models.Campaign{RecruitmentStartDate: "2025-03-01", RecruitmentEndDate: "2025-03-09", RecruitmentCount: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.c
			assert.ErrorIs(t, env.campaigns.Create(ctx, owner, &c), models.ErrValidation)
		})
	}
}

func TestCreateCampaignRequiresAdvertiser(t *testing.T) {
	env := newTestEnv()
	influencer := env.newInfluencer(t)

	err := env.campaigns.Create(context.Background(), influencer, &models.Campaign{
		RecruitmentStartDate: "2025-03-01", RecruitmentEndDate: "2025-03-15", RecruitmentCount: 1,
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, err, ErrNoAdvertiserProfile)
}

func TestListRecruitingExcludesEndedAndClosed(t *testing.T) {
	env := newTestEnv()
	owner := env.newAdvertiser(t)
	ctx := context.Background()

	open := env.newCampaign(t, owner, "2025-03-01", "2025-03-20")
	lastDay := env.newCampaign(t, owner, "2025-03-01", env.today)
	stale := env.newCampaign(t, owner, "2025-02-01", "2025-03-09") // still recruiting, window over
	closed := env.newCampaign(t, owner, "2025-03-01", "2025-03-30")
	_, err := env.campaigns.UpdateStatus(ctx, owner, closed.ID, models.CampaignStatusClosed)
	require.NoError(t, err)

	feed, err := env.campaigns.ListRecruiting(ctx, 0, 0)
	require.NoError(t, err)

	var ids []uuid.UUID
	for _, c := range feed {
		assert.GreaterOrEqual(t, c.RecruitmentEndDate, env.today)
		assert.Equal(t, "Cafe Seoul", c.Advertiser.CompanyName)
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []uuid.UUID{lastDay.ID, open.ID}, ids, "newest first")
	assert.NotContains(t, ids, stale.ID)
	assert.NotContains(t, ids, closed.ID)
}

func TestListRecruitingPagination(t *testing.T) {
	env := newTestEnv()
	owner := env.newAdvertiser(t)
	for i := 0; i < 5; i++ {
		env.newCampaign(t, owner, "2025-03-01", "2025-04-01")
	}

	page, err := env.campaigns.ListRecruiting(context.Background(), 2, 4)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	all, err := env.campaigns.ListRecruiting(context.Background(), 1000, -3)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestGetCampaignDetail(t *testing.T) {
	env := newTestEnv()
	owner := env.newAdvertiser(t)
	c := env.newCampaign(t, owner, "2025-03-01", "2025-03-20")
	env.apply(t, env.newInfluencer(t), c.ID)

	d, err := env.campaigns.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, d.ApplicationCount)
	require.NotNil(t, d.Advertiser.BusinessPhone)
	assert.Equal(t, "0212345678", *d.Advertiser.BusinessPhone)

	_, err = env.campaigns.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListMineOnlyOwnCampaigns(t *testing.T) {
	env := newTestEnv()
	a, b := env.newAdvertiser(t), env.newAdvertiser(t)
	env.newCampaign(t, a, "2025-03-01", "2025-03-20")
	env.newCampaign(t, a, "2025-03-01", "2025-03-21")
	env.newCampaign(t, b, "2025-03-01", "2025-03-22")

	mine, err := env.campaigns.ListMine(context.Background(), a)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	assert.True(t, mine[0].CreatedAt.After(mine[1].CreatedAt))
}

func TestUpdateStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		path    []models.CampaignStatus
		wantErr error
	}{
		{"close", []models.CampaignStatus{models.CampaignStatusClosed}, nil},
		{"close then complete", []models.CampaignStatus{models.CampaignStatusClosed, models.CampaignStatusCompleted}, nil},
		{"skip to completed", []models.CampaignStatus{models.CampaignStatusCompleted}, models.ErrInvalidState},
		{"reopen", []models.CampaignStatus{models.CampaignStatusClosed, models.CampaignStatusRecruiting}, models.ErrInvalidState},
		{"unknown", []models.CampaignStatus{"archived"}, models.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			owner := env.newAdvertiser(t)
			c := env.newCampaign(t, owner, "2025-03-01", "2025-03-20")

			var err error
			for _, st := range tt.path {
				if _, err = env.campaigns.UpdateStatus(context.Background(), owner, c.ID, st); err != nil {
					break
				}
			}
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.path[len(tt.path)-1], env.campaign(c.ID).Status)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestUpdateStatusForeignOwnerForbidden(t *testing.T) {
	env := newTestEnv()
	a, b := env.newAdvertiser(t), env.newAdvertiser(t)
	c := env.newCampaign(t, b, "2025-03-01", "2025-03-20")

	_, err := env.campaigns.UpdateStatus(context.Background(), a, c.ID, models.CampaignStatusClosed)
	assert.ErrorIs(t, err, models.ErrForbidden)
	assert.Equal(t, models.CampaignStatusRecruiting, env.campaign(c.ID).Status)
}

func TestCloseExpired(t *testing.T) {
	env := newTestEnv()
	owner := env.newAdvertiser(t)
	expired := env.newCampaign(t, owner, "2025-02-01", "2025-03-09")
	lastDay := env.newCampaign(t, owner, "2025-03-01", env.today)
	done := env.newCampaign(t, owner, "2025-02-01", "2025-03-01")
	env.db.campaigns[done.ID] = func() models.Campaign {
		c := env.db.campaigns[done.ID]
		c.Status = models.CampaignStatusCompleted
		return c
	}()

	n, err := env.campaigns.CloseExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, models.CampaignStatusClosed, env.campaign(expired.ID).Status)
	assert.Equal(t, models.CampaignStatusRecruiting, env.campaign(lastDay.ID).Status)
	assert.Equal(t, models.CampaignStatusCompleted, env.campaign(done.ID).Status)

	var system bool
	for _, e := range env.audit.entries {
		if e.Action == "campaign_status_recruiting_to_closed" && e.ActorType == models.ActorSystem {
			system = e.ActorUserID == nil
		}
	}
	assert.True(t, system)

	changed := env.pub.ofType(events.EventCampaignStatusChanged)
	require.Len(t, changed, 1)
	assert.Equal(t, []uuid.UUID{owner}, changed[0].Recipients)
}

// racingCampaigns runs beforeClose once, right after the expired list is
// read and before any campaign is closed.
type racingCampaigns struct {
	fakeCampaigns
	beforeClose func()
}

func (r racingCampaigns) ListExpiredRecruiting(ctx context.Context, today string) ([]models.Campaign, error) {
	out, err := r.fakeCampaigns.ListExpiredRecruiting(ctx, today)
	if r.beforeClose != nil {
		r.beforeClose()
	}
	return out, err
}

func TestCloseExpiredSkipsCampaignCompletedByOwner(t *testing.T) {
	env := newTestEnv()
	owner := env.newAdvertiser(t)
	c := env.newCampaign(t, owner, "2025-02-01", "2025-03-09")
	ctx := context.Background()

	store := racingCampaigns{
		fakeCampaigns: fakeCampaigns{env.db},
		beforeClose: func() {
			res, err := env.applications.BulkUpdate(ctx, owner, c.ID, nil, models.ApplicationStatusSelected)
			require.NoError(t, err)
			require.Equal(t, models.CampaignStatusCompleted, res.CampaignStatus)
		},
	}
	worker := NewCampaignService(store, NewAuthorizer(fakeProfiles{env.db}, fakeCampaigns{env.db}),
		env.audit, env.pub, env.campaigns.calendar, zap.NewNop())

	n, err := worker.CloseExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, models.CampaignStatusCompleted, env.campaign(c.ID).Status)

	var systemClose int
	for _, e := range env.audit.entries {
		if e.ActorType == models.ActorSystem {
			systemClose++
		}
	}
	assert.Zero(t, systemClose)
}

func TestUpdateStatusRejectsStaleRead(t *testing.T) {
	env := newTestEnv()
	owner := env.newAdvertiser(t)
	c := env.newCampaign(t, owner, "2025-03-01", "2025-03-20")
	store := fakeCampaigns{env.db}

	stale := env.campaign(c.ID)
	require.NoError(t, store.UpdateStatus(context.Background(), c.ID, models.CampaignStatusRecruiting, models.CampaignStatusClosed))

	_, err := transitionCampaign(context.Background(), store, &stale, models.CampaignStatusClosed)
	assert.ErrorIs(t, err, models.ErrCampaignStatusChanged)
	assert.ErrorIs(t, err, models.ErrInvalidState)
	assert.Equal(t, models.CampaignStatusRecruiting, stale.Status)
	assert.Equal(t, models.CampaignStatusClosed, env.campaign(c.ID).Status)
}

func TestCampaignHistory(t *testing.T) {
	env := newTestEnv()
	owner, stranger := env.newAdvertiser(t), env.newAdvertiser(t)
	c := env.newCampaign(t, owner, "2025-03-01", "2025-03-20")
	other := env.newCampaign(t, owner, "2025-03-01", "2025-03-21")
	_, err := env.campaigns.UpdateStatus(context.Background(), owner, c.ID, models.CampaignStatusClosed)
	require.NoError(t, err)

	logs, err := env.campaigns.History(context.Background(), owner, c.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "campaign_status_recruiting_to_closed", logs[0].Action)
	assert.Equal(t, "campaign_created", logs[1].Action)

	logs, err = env.campaigns.History(context.Background(), owner, other.ID, 1, 5)
	require.NoError(t, err)
	assert.Empty(t, logs)
	assert.NotNil(t, logs)

	_, err = env.campaigns.History(context.Background(), stranger, c.ID, 10, 0)
	assert.ErrorIs(t, err, models.ErrForbidden)
}
