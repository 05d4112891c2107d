package services

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"duopet-backend/models"
	"duopet-backend/repositories"
)

const testSecret = "test-secret-test-secret-test-secret-0123456789"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type memUserStore struct {
	mu     sync.Mutex
	users  map[int64]*models.User
	nextID int64
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[int64]*models.User{}, nextID: 1}
}

func (m *memUserStore) add(t *testing.T, loginID, password, status string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	u := &models.User{LoginID: loginID, Password: string(hashed), Nickname: "nick-" + loginID, Role: models.RoleUser, Status: status}
	if err := m.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (m *memUserStore) FindByLoginID(_ context.Context, loginID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.LoginID == loginID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memUserStore) FindByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserStore) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.LoginID == u.LoginID {
			return repositories.ErrDuplicate
		}
	}
	u.ID = m.nextID
	m.nextID++
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserStore) UpdateStatus(_ context.Context, id int64, status string, until *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Status = status
	u.SuspendedUntil = until
	return nil
}

func (m *memUserStore) CountUsers(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

type memRefreshStore struct {
	mu      sync.Mutex
	records map[int64]*models.RefreshToken
	nextID  int64
	saves   int
}

func newMemRefreshStore() *memRefreshStore {
	return &memRefreshStore{records: map[int64]*models.RefreshToken{}, nextID: 1}
}

func (m *memRefreshStore) Save(_ context.Context, rt *models.RefreshToken) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt.ID = m.nextID
	m.nextID++
	cp := *rt
	m.records[rt.ID] = &cp
	m.saves++
	return rt.ID, nil
}

func (m *memRefreshStore) DeleteByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

func (m *memRefreshStore) DeleteAllForUser(_ context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, rt := range m.records {
		if rt.UserID == userID {
			delete(m.records, id)
			n++
		}
	}
	return n, nil
}

func (m *memRefreshStore) FindIDByUserAndToken(_ context.Context, userID int64, token string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, rt := range m.records {
		if rt.UserID == userID && rt.Token == token {
			return id, nil
		}
	}
	return 0, repositories.ErrNotFound
}

func (m *memRefreshStore) TouchSession(_ context.Context, userID int64, token, ip, device string, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, rt := range m.records {
		if rt.UserID == userID && rt.Token == token && rt.Status == models.RefreshStatusActive {
			rt.IPAddress = ip
			rt.DeviceInfo = device
			t := now
			rt.LastUsedAt = &t
			n++
		}
	}
	return n, nil
}

func (m *memRefreshStore) countFor(userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, rt := range m.records {
		if rt.UserID == userID {
			n++
		}
	}
	return n
}

type memAudit struct {
	mu     sync.Mutex
	events []models.LoginEvent
}

func (a *memAudit) Record(_ context.Context, e models.LoginEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
	return nil
}

func (a *memAudit) CountAttempts(context.Context) (int64, int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var failed int64
	for _, e := range a.events {
		if !e.Success {
			failed++
		}
	}
	return int64(len(a.events)), failed, nil
}

// fixture wires the auth services over in-memory stores.
type fixture struct {
	clock    *testClock
	users    *memUserStore
	refresh  *memRefreshStore
	audit    *memAudit
	tokens   *TokenService
	sessions *RefreshService
	auth     *AuthService
	reissue  *ReissueService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock:   newTestClock(),
		users:   newMemUserStore(),
		refresh: newMemRefreshStore(),
		audit:   &memAudit{},
	}
	log := quietLogger()
	f.tokens = NewTokenService(testSecret, 30*time.Minute, 24*time.Hour, f.clock.Now)
	f.sessions = NewRefreshService(f.refresh, log, f.clock.Now)
	f.auth = NewAuthService(f.users, f.tokens, f.sessions, f.audit, log, f.clock.Now)
	f.reissue = NewReissueService(f.users, f.tokens, f.sessions, log)
	return f
}

var testClient = ClientInfo{IP: "203.0.113.7", UserAgent: "duopet-test/1.0"}
