package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/review-campaigns/backend/internal/events"
	"github.com/review-campaigns/backend/internal/models"
	"go.uber.org/zap"
)

// memDB is an in-memory stand-in for the Postgres schema. WithinTx
// snapshots all tables and restores them when fn fails.
type memDB struct {
	mu           sync.Mutex
	clock        time.Time
	profiles     map[uuid.UUID]models.Profile
	influencers  map[uuid.UUID]models.InfluencerProfile // by user id
	advertisers  map[uuid.UUID]models.AdvertiserProfile // by user id
	campaigns    map[uuid.UUID]models.Campaign
	applications map[uuid.UUID]models.Application
	failSetRole  bool
	txCount      int
}

func newMemDB() *memDB {
	return &memDB{
		clock:        time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		profiles:     map[uuid.UUID]models.Profile{},
		influencers:  map[uuid.UUID]models.InfluencerProfile{},
		advertisers:  map[uuid.UUID]models.AdvertiserProfile{},
		campaigns:    map[uuid.UUID]models.Campaign{},
		applications: map[uuid.UUID]models.Application{},
	}
}

func (m *memDB) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (m *memDB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.txCount++
	profiles, influencers, advertisers := cloneMap(m.profiles), cloneMap(m.influencers), cloneMap(m.advertisers)
	campaigns, applications := cloneMap(m.campaigns), cloneMap(m.applications)
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.profiles, m.influencers, m.advertisers = profiles, influencers, advertisers
		m.campaigns, m.applications = campaigns, applications
		m.mu.Unlock()
		return err
	}
	return nil
}

type fakeProfiles struct{ *memDB }

func (f fakeProfiles) Create(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[p.ID]; ok {
		return models.ErrConflict
	}
	p.CreatedAt = f.tick()
	p.TermsAgreedAt = p.CreatedAt
	f.profiles[p.ID] = *p
	return nil
}

func (f fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (f fakeProfiles) SetRole(_ context.Context, id uuid.UUID, role models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSetRole {
		return context.DeadlineExceeded
	}
	p, ok := f.profiles[id]
	if !ok {
		return models.ErrNotFound
	}
	p.Role = &role
	f.profiles[id] = p
	return nil
}

func (f fakeProfiles) CreateInfluencer(_ context.Context, ip *models.InfluencerProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.influencers[ip.UserID]; ok {
		return models.ErrConflict
	}
	ip.ID = uuid.New()
	ip.CreatedAt = f.tick()
	f.influencers[ip.UserID] = *ip
	return nil
}

func (f fakeProfiles) GetInfluencerByUserID(_ context.Context, userID uuid.UUID) (*models.InfluencerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ip, ok := f.influencers[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &ip, nil
}

func (f fakeProfiles) CreateAdvertiser(_ context.Context, ap *models.AdvertiserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.advertisers[ap.UserID]; ok {
		return models.ErrConflict
	}
	ap.ID = uuid.New()
	ap.CreatedAt = f.tick()
	f.advertisers[ap.UserID] = *ap
	return nil
}

func (f fakeProfiles) GetAdvertiserByUserID(_ context.Context, userID uuid.UUID) (*models.AdvertiserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ap, ok := f.advertisers[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &ap, nil
}

func (m *memDB) advertiserByID(id uuid.UUID) (models.AdvertiserProfile, bool) {
	for _, ap := range m.advertisers {
		if ap.ID == id {
			return ap, true
		}
	}
	return models.AdvertiserProfile{}, false
}

func (m *memDB) countApplications(campaignID uuid.UUID) int {
	n := 0
	for _, a := range m.applications {
		if a.CampaignID == campaignID {
			n++
		}
	}
	return n
}

type fakeCampaigns struct{ *memDB }

func (f fakeCampaigns) Create(_ context.Context, c *models.Campaign) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ap, ok := f.advertiserByID(c.AdvertiserID)
	if !ok {
		return models.ErrNotFound
	}
	c.ID = uuid.New()
	c.AdvertiserUserID = ap.UserID
	c.CreatedAt = f.tick()
	c.UpdatedAt = c.CreatedAt
	f.campaigns[c.ID] = *c
	return nil
}

func (f fakeCampaigns) GetByID(_ context.Context, id uuid.UUID) (*models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &c, nil
}

func (f fakeCampaigns) GetDetail(_ context.Context, id uuid.UUID) (*models.CampaignDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	ap, _ := f.advertiserByID(c.AdvertiserID)
	phone := ap.BusinessPhone
	return &models.CampaignDetail{
		Campaign: c,
		Advertiser: models.CampaignAdvertiser{
			CompanyName:   ap.CompanyName,
			Address:       ap.Address,
			BusinessPhone: &phone,
		},
		ApplicationCount: f.countApplications(id),
	}, nil
}

func (f fakeCampaigns) ListRecruiting(_ context.Context, today string, limit, offset int) ([]models.CampaignWithAdvertiser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.CampaignWithAdvertiser
	for _, c := range f.campaigns {
		if c.Status != models.CampaignStatusRecruiting || c.RecruitmentEndDate < today {
			continue
		}
		ap, _ := f.advertiserByID(c.AdvertiserID)
		out = append(out, models.CampaignWithAdvertiser{
			Campaign:   c,
			Advertiser: models.CampaignAdvertiser{CompanyName: ap.CompanyName, Address: ap.Address},
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return []models.CampaignWithAdvertiser{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f fakeCampaigns) ListByAdvertiser(_ context.Context, advertiserID uuid.UUID) ([]models.CampaignWithCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.CampaignWithCount{}
	for _, c := range f.campaigns {
		if c.AdvertiserID == advertiserID {
			out = append(out, models.CampaignWithCount{Campaign: c, ApplicationCount: f.countApplications(c.ID)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f fakeCampaigns) LockByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	return f.GetByID(ctx, id)
}

func (f fakeCampaigns) UpdateStatus(_ context.Context, id uuid.UUID, from, to models.CampaignStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok || c.Status != from {
		return models.ErrCampaignStatusChanged
	}
	c.Status = to
	c.UpdatedAt = f.tick()
	f.campaigns[id] = c
	return nil
}

func (f fakeCampaigns) ListExpiredRecruiting(_ context.Context, today string) ([]models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Campaign
	for _, c := range f.campaigns {
		if c.Status == models.CampaignStatusRecruiting && c.RecruitmentEndDate < today {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeApplications struct{ *memDB }

func (f fakeApplications) Create(_ context.Context, a *models.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.applications {
		if existing.CampaignID == a.CampaignID && existing.InfluencerID == a.InfluencerID {
			return models.ErrConflict
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = f.tick()
	a.UpdatedAt = a.CreatedAt
	f.applications[a.ID] = *a
	return nil
}

func (m *memDB) influencerByID(id uuid.UUID) (models.InfluencerProfile, bool) {
	for _, ip := range m.influencers {
		if ip.ID == id {
			return ip, true
		}
	}
	return models.InfluencerProfile{}, false
}

func (f fakeApplications) ListByInfluencer(_ context.Context, influencerID uuid.UUID, status *models.ApplicationStatus) ([]models.ApplicationWithCampaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.ApplicationWithCampaign{}
	for _, a := range f.applications {
		if a.InfluencerID != influencerID || (status != nil && a.Status != *status) {
			continue
		}
		c := f.campaigns[a.CampaignID]
		out = append(out, models.ApplicationWithCampaign{
			Application: a,
			Campaign: models.ApplicationCampaignSummary{
				Title: c.Title, Benefits: c.Benefits, RecruitmentEndDate: c.RecruitmentEndDate, Status: c.Status,
			},
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f fakeApplications) ListByCampaign(_ context.Context, campaignID uuid.UUID) ([]models.ApplicationWithInfluencer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.ApplicationWithInfluencer{}
	for _, a := range f.applications {
		if a.CampaignID != campaignID {
			continue
		}
		ip, _ := f.influencerByID(a.InfluencerID)
		p := f.profiles[ip.UserID]
		out = append(out, models.ApplicationWithInfluencer{
			Application: a,
			Influencer: models.ApplicantInfluencer{
				ChannelName: ip.ChannelName, ChannelURL: ip.ChannelURL, FollowerCount: ip.FollowerCount,
				Profile: models.ApplicantContact{Name: p.Name, Phone: p.Phone, Email: p.Email, BirthDate: p.BirthDate},
			},
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f fakeApplications) setPending(campaignID uuid.UUID, match func(uuid.UUID) bool, status models.ApplicationStatus) []models.ApplicationChange {
	var changes []models.ApplicationChange
	for id, a := range f.applications {
		if a.CampaignID != campaignID || a.Status != models.ApplicationStatusPending || !match(id) {
			continue
		}
		a.Status = status
		a.UpdatedAt = f.tick()
		f.applications[id] = a
		ip, _ := f.influencerByID(a.InfluencerID)
		changes = append(changes, models.ApplicationChange{ApplicationID: id, InfluencerUserID: ip.UserID, Status: status})
	}
	return changes
}

func (f fakeApplications) UpdatePendingStatus(_ context.Context, campaignID uuid.UUID, ids []uuid.UUID, status models.ApplicationStatus) ([]models.ApplicationChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := toSet(ids)
	return f.setPending(campaignID, func(id uuid.UUID) bool { return set[id] }, status), nil
}

func (f fakeApplications) RejectPendingExcept(_ context.Context, campaignID uuid.UUID, keep []uuid.UUID) ([]models.ApplicationChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := toSet(keep)
	return f.setPending(campaignID, func(id uuid.UUID) bool { return !set[id] }, models.ApplicationStatusRejected), nil
}

func toSet(ids []uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (a *fakeAudit) Log(_ context.Context, entry models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

func (a *fakeAudit) GetByEntity(_ context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]models.AuditLog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []models.AuditLog
	for i := len(a.entries) - 1; i >= 0; i-- {
		e := a.entries[i]
		if e.EntityType == entityType && e.EntityID != nil && *e.EntityID == entityID {
			out = append(out, e)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (a *fakeAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *fakePublisher) Publish(_ context.Context, _ string, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) ofType(t string) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, ev := range p.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// testEnv wires real services over the in-memory stores.
type testEnv struct {
	db           *memDB
	audit        *fakeAudit
	pub          *fakePublisher
	today        string
	profiles     *ProfileService
	campaigns    *CampaignService
	applications *ApplicationService
}

func newTestEnv() *testEnv {
	env := &testEnv{db: newMemDB(), audit: &fakeAudit{}, pub: &fakePublisher{}, today: "2025-03-10"}
	cal := Calendar{Location: time.UTC, Now: func() time.Time {
		t, _ := time.Parse(models.DateLayout, env.today)
		return t.Add(12 * time.Hour)
	}}
	log := zap.NewNop()
	profiles := fakeProfiles{env.db}
	campaigns := fakeCampaigns{env.db}
	authz := NewAuthorizer(profiles, campaigns)

	env.profiles = NewProfileService(profiles, env.db, env.audit, log)
	env.campaigns = NewCampaignService(campaigns, authz, env.audit, env.pub, cal, log)
	env.applications = NewApplicationService(fakeApplications{env.db}, campaigns, authz, env.db, env.audit, env.pub, cal, log)
	return env
}

func (e *testEnv) newAdvertiser(t testingT) uuid.UUID {
	id := uuid.New()
	ctx := context.Background()
	mustNoErr(t, e.profiles.CreateProfile(ctx, id, &models.Profile{
		Name: "Owner", BirthDate: "1990-01-01", Phone: "01012345678", Email: "owner@example.com",
	}))
	mustNoErr(t, e.profiles.CreateAdvertiserProfile(ctx, id, &models.AdvertiserProfile{
		CompanyName: "Cafe Seoul", Address: "Gangnam 1", BusinessPhone: "0212345678",
		BusinessNumber: "123-45-67890", RepresentativeName: "Kim",
	}))
	return id
}

func (e *testEnv) newInfluencer(t testingT) uuid.UUID {
	id := uuid.New()
	ctx := context.Background()
	mustNoErr(t, e.profiles.CreateProfile(ctx, id, &models.Profile{
		Name: "Blogger", BirthDate: "1995-05-05", Phone: "01098765432", Email: id.String() + "@example.com",
	}))
	mustNoErr(t, e.profiles.CreateInfluencerProfile(ctx, id, &models.InfluencerProfile{
		ChannelName: "daily eats", ChannelURL: "https://blog.example.com/eats", FollowerCount: 1200,
	}))
	return id
}

func (e *testEnv) newCampaign(t testingT, owner uuid.UUID, start, end string) *models.Campaign {
	c := &models.Campaign{
		Title: "Brunch review", RecruitmentStartDate: start, RecruitmentEndDate: end,
		RecruitmentCount: 3, Benefits: "Brunch for two", StoreInfo: "Gangnam", Mission: "Post a review",
	}
	mustNoErr(t, e.campaigns.Create(context.Background(), owner, c))
	return c
}

func (e *testEnv) apply(t testingT, influencer, campaignID uuid.UUID) *models.Application {
	a := &models.Application{CampaignID: campaignID, Message: "I'd love to visit", VisitDate: "2025-03-20"}
	mustNoErr(t, e.applications.Create(context.Background(), influencer, a))
	return a
}

func (e *testEnv) application(id uuid.UUID) models.Application {
	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	return e.db.applications[id]
}

func (e *testEnv) campaign(id uuid.UUID) models.Campaign {
	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	return e.db.campaigns[id]
}

type testingT interface {
	Helper()
	Fatalf(format string, args ...any)
}

func mustNoErr(t testingT, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
