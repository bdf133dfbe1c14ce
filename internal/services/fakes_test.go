package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"greenia/internal/models"
	"greenia/internal/repository"
)

type sentMail struct {
	To, Subject, Body string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(to string, subject string, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

type fakeAdmins struct {
	byID      map[string]*models.Administrator
	created   int
	createErr error
}

func newFakeAdmins(admins ...*models.Administrator) *fakeAdmins {
	f := &fakeAdmins{byID: map[string]*models.Administrator{}}
	for _, a := range admins {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAdmins) CreateWithCompany(_ context.Context, c *models.Company, a *models.Administrator) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created++
	a.CompanyID = c.ID
	a.CompanyName = c.Name
	a.CreatedAt = time.Now()
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAdmins) GetByID(_ context.Context, id string) (*models.Administrator, error) {
	if a, ok := f.byID[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, repository.ErrAdminNotFound
}

func (f *fakeAdmins) GetByEmail(_ context.Context, email string) (*models.Administrator, error) {
	for _, a := range f.byID {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrAdminNotFound
}

func (f *fakeAdmins) UpdateContact(_ context.Context, id string, req *models.UpdateAdminProfileRequest) error {
	a, ok := f.byID[id]
	if !ok {
		return repository.ErrAdminNotFound
	}
	if req.PhoneNumber != nil {
		a.PhoneNumber = *req.PhoneNumber
	}
	if req.Email != nil {
		a.Email = *req.Email
	}
	if req.Address != nil {
		a.Address = *req.Address
	}
	return nil
}

func (f *fakeAdmins) UpdatePasswordHash(_ context.Context, id string, hash string) error {
	a, ok := f.byID[id]
	if !ok {
		return repository.ErrAdminNotFound
	}
	a.PasswordHash = hash
	return nil
}

type fakeUsers struct {
	byID    map[string]*models.User
	creates int
	updates []models.UserChanges
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]*models.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	for _, existing := range f.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return &repository.ConflictError{Constraint: "users_email_key"}
		}
	}
	f.creates++
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUsers) GetForAdmin(ctx context.Context, adminID string, id string) (*models.User, error) {
	u, err := f.GetByID(ctx, id)
	if err != nil || u.AdminID != adminID {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) ListByAdmin(_ context.Context, adminID string) ([]models.User, error) {
	out := []models.User{}
	for _, u := range f.byID {
		if u.AdminID == adminID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) CountActiveByAdmin(_ context.Context, adminID string) (int, error) {
	n := 0
	for _, u := range f.byID {
		if u.AdminID == adminID && u.Active {
			n++
		}
	}
	return n, nil
}

func (f *fakeUsers) Update(_ context.Context, adminID string, id string, c models.UserChanges) error {
	u, ok := f.byID[id]
	if !ok || u.AdminID != adminID {
		return repository.ErrUserNotFound
	}
	f.updates = append(f.updates, c)
	if c.Name != nil {
		u.Name = *c.Name
	}
	if c.Email != nil {
		u.Email = *c.Email
	}
	if c.TaxID != nil {
		u.TaxID = *c.TaxID
	}
	if c.PhoneNumber != nil {
		u.PhoneNumber = *c.PhoneNumber
	}
	if c.PasswordHash != nil {
		u.PasswordHash = *c.PasswordHash
	}
	if c.Active != nil {
		u.Active = *c.Active
	}
	return nil
}

func (f *fakeUsers) UpdatePasswordHash(_ context.Context, id string, hash string) error {
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

type fakeResets struct {
	byHash    map[string]*models.PasswordResetToken
	redeemed  []string
	redeemErr error
	onRedeem  func(t *models.PasswordResetToken, hash string)
}

func newFakeResets() *fakeResets {
	return &fakeResets{byHash: map[string]*models.PasswordResetToken{}}
}

func (f *fakeResets) Create(_ context.Context, t *models.PasswordResetToken) error {
	f.byHash[t.TokenHash] = t
	return nil
}

func (f *fakeResets) GetByTokenHash(_ context.Context, hash string) (*models.PasswordResetToken, error) {
	if t, ok := f.byHash[hash]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, repository.ErrResetTokenNotFound
}

func (f *fakeResets) Redeem(_ context.Context, t *models.PasswordResetToken, hash string, usedAt time.Time) error {
	if f.redeemErr != nil {
		return f.redeemErr
	}
	stored, ok := f.byHash[t.TokenHash]
	if !ok || stored.Used {
		return repository.ErrResetTokenNotFound
	}
	stored.Used = true
	stored.UsedAt = &usedAt
	f.redeemed = append(f.redeemed, t.ID)
	if f.onRedeem != nil {
		f.onRedeem(t, hash)
	}
	return nil
}

type fakeRecognitions struct {
	totals     models.Totals
	trend      []models.TrendPoint
	trendCalls []string
	trendRange []models.DateRange
	stats      models.UserStats
	recent     []models.Recognition
	count      int
	err        error
}

func (f *fakeRecognitions) SaveBatch(context.Context, []models.Recognition) error { return f.err }

func (f *fakeRecognitions) AttachImage(context.Context, string, string) error { return f.err }

func (f *fakeRecognitions) ListByUser(_ context.Context, _ string, limit int, _ int) ([]models.Recognition, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeRecognitions) CountByUser(context.Context, string) (int, error) { return f.count, f.err }

func (f *fakeRecognitions) UserStats(context.Context, string) (*models.UserStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := f.stats
	return &s, nil
}

func (f *fakeRecognitions) ActivityByUser(context.Context, string, models.DateRange) ([]models.UserActivity, error) {
	return []models.UserActivity{}, f.err
}

func (f *fakeRecognitions) ImpactByType(context.Context, string, models.DateRange) ([]models.PlasticImpact, error) {
	return []models.PlasticImpact{}, f.err
}

func (f *fakeRecognitions) Totals(context.Context, string, models.DateRange) (*models.Totals, error) {
	if f.err != nil {
		return nil, f.err
	}
	t := f.totals
	return &t, nil
}

func (f *fakeRecognitions) Trend(_ context.Context, _ string, unit string, rng models.DateRange) ([]models.TrendPoint, error) {
	f.trendCalls = append(f.trendCalls, unit)
	f.trendRange = append(f.trendRange, rng)
	return f.trend, f.err
}

var errBoom = errors.New("boom")
