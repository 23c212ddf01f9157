package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/example/collex/internal/db"
	"github.com/example/collex/internal/identity"
	"github.com/example/collex/internal/models"
	"github.com/example/collex/internal/session"
	"github.com/example/collex/pkg/mailer"
)

type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) Create(ctx context.Context, l *models.Listing) (string, error) {
	args := m.Called(ctx, l)
	return args.String(0), args.Error(1)
}

func (m *MockListingRepository) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).(*models.Listing)
	return l, args.Error(1)
}

func (m *MockListingRepository) GetOwned(ctx context.Context, id, owner string) (*models.Listing, error) {
	args := m.Called(ctx, id, owner)
	l, _ := args.Get(0).(*models.Listing)
	return l, args.Error(1)
}

func (m *MockListingRepository) ListAll(ctx context.Context) ([]*models.Listing, error) {
	args := m.Called(ctx)
	ls, _ := args.Get(0).([]*models.Listing)
	return ls, args.Error(1)
}

func (m *MockListingRepository) ListByOwner(ctx context.Context, owner string) ([]*models.Listing, error) {
	args := m.Called(ctx, owner)
	ls, _ := args.Get(0).([]*models.Listing)
	return ls, args.Error(1)
}

func (m *MockListingRepository) UpdateOwned(ctx context.Context, id, owner string, u models.ListingUpdate) error {
	return m.Called(ctx, id, owner, u).Error(0)
}

func (m *MockListingRepository) DeleteOwned(ctx context.Context, id, owner string) error {
	return m.Called(ctx, id, owner).Error(0)
}

func (m *MockListingRepository) ListCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	cs, _ := args.Get(0).([]string)
	return cs, args.Error(1)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.Error(1)
}

func (m *MockProfileService) GetOrCreate(ctx context.Context, u models.AuthUser) (*models.Profile, bool, error) {
	args := m.Called(ctx, u)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.Bool(1), args.Error(2)
}

func (m *MockProfileService) Save(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.Profile, error) {
	args := m.Called(ctx, userID, req)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.Error(1)
}

func (m *MockProfileService) StartEdit(ctx context.Context, sid string, f models.ProfileField) (EditState, error) {
	args := m.Called(ctx, sid, f)
	return args.Get(0).(EditState), args.Error(1)
}

func (m *MockProfileService) CancelEdit(ctx context.Context, sid string) (EditState, error) {
	args := m.Called(ctx, sid)
	return args.Get(0).(EditState), args.Error(1)
}

func (m *MockProfileService) EditState(ctx context.Context, sid string) (EditState, error) {
	args := m.Called(ctx, sid)
	return args.Get(0).(EditState), args.Error(1)
}

func (m *MockProfileService) CommitField(ctx context.Context, sid, userID string, f models.ProfileField, v string) (*models.Profile, error) {
	args := m.Called(ctx, sid, userID, f, v)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.Error(1)
}

func (m *MockProfileService) UploadAvatar(ctx context.Context, userID string, file models.FileUpload) (*models.Profile, error) {
	args := m.Called(ctx, userID, file)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.Error(1)
}

type MockMediaService struct {
	mock.Mock
}

func (m *MockMediaService) UploadListingImage(ctx context.Context, userID string, file models.FileUpload) (string, error) {
	args := m.Called(ctx, userID, file)
	return args.String(0), args.Error(1)
}

func (m *MockMediaService) UploadAvatar(ctx context.Context, userID string, file models.FileUpload) (string, error) {
	args := m.Called(ctx, userID, file)
	return args.String(0), args.Error(1)
}

type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) SignUp(ctx context.Context, email, password string) (*models.AuthUser, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(0).(*models.AuthUser)
	return u, args.Error(1)
}

func (m *MockIdentityProvider) EmailVerificationLink(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityProvider) SignIn(ctx context.Context, email, password string) (*identity.Credentials, error) {
	args := m.Called(ctx, email, password)
	c, _ := args.Get(0).(*identity.Credentials)
	return c, args.Error(1)
}

func (m *MockIdentityProvider) CreateSessionCookie(ctx context.Context, idToken string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, idToken, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityProvider) VerifySessionCookie(ctx context.Context, cookie string) (*models.AuthUser, error) {
	args := m.Called(ctx, cookie)
	u, _ := args.Get(0).(*models.AuthUser)
	return u, args.Error(1)
}

func (m *MockIdentityProvider) VerifyIDToken(ctx context.Context, idToken string) (*models.AuthUser, error) {
	args := m.Called(ctx, idToken)
	u, _ := args.Get(0).(*models.AuthUser)
	return u, args.Error(1)
}

func (m *MockIdentityProvider) RevokeSessions(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	return m.Called(ctx, msg).Error(0)
}

// recordingPublisher collects published auth events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []session.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev session.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) kinds() []session.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	kinds := make([]session.EventKind, 0, len(p.events))
	for _, ev := range p.events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

// memoryListingRepository is an in-process ListingRepository with the same
// ordering and ownership rules as the Firestore one.
type memoryListingRepository struct {
	mu       sync.Mutex
	listings map[string]*models.Listing
	seq      int
	clock    time.Time
}

func newMemoryListingRepository() *memoryListingRepository {
	return &memoryListingRepository{
		listings: make(map[string]*models.Listing),
		clock:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (r *memoryListingRepository) Create(_ context.Context, l *models.Listing) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.clock = r.clock.Add(time.Minute)
	stored := *l
	stored.ID = fmt.Sprintf("listing-%d", r.seq)
	stored.CreatedAt = r.clock
	r.listings[stored.ID] = &stored
	return stored.ID, nil
}

func (r *memoryListingRepository) GetByID(_ context.Context, id string) (*models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	c := *l
	return &c, nil
}

func (r *memoryListingRepository) GetOwned(ctx context.Context, id, owner string) (*models.Listing, error) {
	l, err := r.GetByID(ctx, id)
	if err != nil || l.OwnerID != owner {
		return nil, db.ErrNotFound
	}
	return l, nil
}

func (r *memoryListingRepository) list(keep func(*models.Listing) bool) []*models.Listing {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Listing
	for _, l := range r.listings {
		if keep(l) {
			c := *l
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memoryListingRepository) ListAll(context.Context) ([]*models.Listing, error) {
	return r.list(func(*models.Listing) bool { return true }), nil
}

func (r *memoryListingRepository) ListByOwner(_ context.Context, owner string) ([]*models.Listing, error) {
	return r.list(func(l *models.Listing) bool { return l.OwnerID == owner }), nil
}

func (r *memoryListingRepository) UpdateOwned(_ context.Context, id, owner string, u models.ListingUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok || l.OwnerID != owner {
		return db.ErrNotFound
	}
	l.Title, l.Description, l.Price, l.Category = u.Title, u.Description, u.Price, u.Category
	l.OwnerName, l.Location = u.OwnerName, u.Location
	if u.ImageURL != nil {
		l.ImageURL = u.ImageURL
	}
	return nil
}

func (r *memoryListingRepository) DeleteOwned(_ context.Context, id, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok || l.OwnerID != owner {
		return db.ErrNotFound
	}
	delete(r.listings, id)
	return nil
}

func (r *memoryListingRepository) ListCategories(context.Context) ([]string, error) {
	var cats []string
	for _, l := range r.list(func(*models.Listing) bool { return true }) {
		cats = append(cats, l.Category)
	}
	return cats, nil
}

// memoryProfileRepository is an in-process ProfileRepository.
type memoryProfileRepository struct {
	mu       sync.Mutex
	profiles map[string]map[string]interface{}
}

func newMemoryProfileRepository() *memoryProfileRepository {
	return &memoryProfileRepository{profiles: make(map[string]map[string]interface{})}
}

func (r *memoryProfileRepository) GetByID(_ context.Context, id string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.profiles[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	p := &models.Profile{ID: id}
	p.Name, _ = doc["name"].(string)
	p.AvatarURL = strField(doc["avatarUrl"])
	p.ContactInfo = strField(doc["contactInfo"])
	p.Location = strField(doc["location"])
	return p, nil
}

func strField(v interface{}) *string {
	switch t := v.(type) {
	case string:
		return &t
	case *string:
		if t == nil {
			return nil
		}
		c := *t
		return &c
	}
	return nil
}

func (r *memoryProfileRepository) Create(_ context.Context, p *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.ID]; ok {
		return db.ErrAlreadyExists
	}
	r.profiles[p.ID] = map[string]interface{}{
		"name": p.Name, "avatarUrl": p.AvatarURL, "contactInfo": p.ContactInfo, "location": p.Location,
	}
	return nil
}

func (r *memoryProfileRepository) UpdateFields(_ context.Context, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.profiles[id]
	if !ok {
		doc = map[string]interface{}{}
		r.profiles[id] = doc
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

// plainSealer marks sealed values without encrypting them.
type plainSealer struct{}

func (plainSealer) Seal(s string) (string, error) { return "sealed:" + s, nil }

func (plainSealer) Open(s string) (string, error) {
	const prefix = "sealed:"
	if len(s) < len(prefix) || s[:len(prefix)] != prefix {
		return "", fmt.Errorf("not sealed")
	}
	return s[len(prefix):], nil
}
