package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/baechuer/sports-portal/services/auth-service/internal/domain"
)

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

/*
Fakes for ports
*/

type fakeStore struct {
	mu sync.Mutex

	students map[string]domain.User // email -> user
	trainers map[string]domain.User
	nextID   int

	// injected errors (if set, method returns error)
	findErr   error
	existsErr error
	insertErr error

	// existsLies makes EmailExists report false so the insert path decides
	existsLies bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		students: map[string]domain.User{},
		trainers: map[string]domain.User{},
	}
}

func (f *fakeStore) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findErr != nil {
		return domain.User{}, f.findErr
	}
	if u, ok := f.students[email]; ok {
		return u, nil
	}
	if u, ok := f.trainers[email]; ok {
		return u, nil
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (f *fakeStore) EmailExists(ctx context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.existsErr != nil {
		return false, f.existsErr
	}
	if f.existsLies {
		return false, nil
	}
	_, s := f.students[email]
	_, t := f.trainers[email]
	return s || t, nil
}

func (f *fakeStore) insert(part map[string]domain.User, role domain.Role, p domain.Profile, hash string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.insertErr != nil {
		return "", f.insertErr
	}
	_, s := f.students[p.Email]
	_, t := f.trainers[p.Email]
	if s || t {
		return "", domain.ErrEmailAlreadyExists()
	}
	f.nextID++
	id := fmt.Sprintf("id-%d", f.nextID)
	part[p.Email] = domain.User{
		ID:           id,
		Role:         role,
		Email:        p.Email,
		PasswordHash: hash,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		MiddleName:   p.MiddleName,
		Gender:       p.Gender,
	}
	return id, nil
}

func (f *fakeStore) InsertStudent(ctx context.Context, s domain.NewStudent) (string, error) {
	return f.insert(f.students, domain.RoleStudent, s.Profile, s.PasswordHash)
}

func (f *fakeStore) InsertTrainer(ctx context.Context, t domain.NewTrainer) (string, error) {
	return f.insert(f.trainers, domain.RoleTrainer, t.Profile, t.PasswordHash)
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.students) + len(f.trainers)
}

type fakeHasher struct {
	hashFn   func(pw string) (string, error)
	verifyFn func(pw, hash string) (bool, error)
}

func (h *fakeHasher) Hash(ctx context.Context, password string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(password)
	}
	return "hash:" + password, nil
}

func (h *fakeHasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	if h.verifyFn != nil {
		return h.verifyFn(password, hash)
	}
	return hash == "hash:"+password, nil
}

// fakeTokens keeps issued tokens in memory; each issuance gets a new serial.
type fakeTokens struct {
	mu sync.Mutex

	serial  int
	access  map[string]domain.Claims
	refresh map[string]domain.Claims
	expired map[string]bool

	signErr error
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{
		access:  map[string]domain.Claims{},
		refresh: map[string]domain.Claims{},
		expired: map[string]bool{},
	}
}

func (f *fakeTokens) issue(kind string, c domain.Claims, into map[string]domain.Claims) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.signErr != nil {
		return "", f.signErr
	}
	f.serial++
	tok := fmt.Sprintf("%s(%s,%s)#%d", kind, c.UserID, c.Role, f.serial)
	into[tok] = c
	return tok, nil
}

func (f *fakeTokens) verify(tok string, from map[string]domain.Claims) (domain.Claims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.expired[tok] {
		return domain.Claims{}, domain.ErrTokenExpired()
	}
	c, ok := from[tok]
	if !ok {
		return domain.Claims{}, domain.ErrTokenInvalid()
	}
	return c, nil
}

func (f *fakeTokens) IssueAccessToken(c domain.Claims) (string, error) {
	return f.issue("access", c, f.access)
}

func (f *fakeTokens) IssueRefreshToken(c domain.Claims) (string, error) {
	return f.issue("refresh", c, f.refresh)
}

func (f *fakeTokens) VerifyAccessToken(tok string) (domain.Claims, error) {
	return f.verify(tok, f.access)
}

func (f *fakeTokens) VerifyRefreshToken(tok string) (domain.Claims, error) {
	return f.verify(tok, f.refresh)
}

func (f *fakeTokens) expire(tok string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired[tok] = true
}

type fakePublisher struct {
	mu sync.Mutex

	err  error
	evts []UserRegisteredEvent
}

func (p *fakePublisher) PublishUserRegistered(ctx context.Context, evt UserRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.evts = append(p.evts, evt)
	return nil
}

/*
Service factory for tests
*/

type testDeps struct {
	store  *fakeStore
	hasher *fakeHasher
	tokens *fakeTokens
	pub    *fakePublisher
	audits *[]auditEntry
}

func newSvcForTest(t *testing.T) (*Service, testDeps) {
	t.Helper()

	d := testDeps{
		store:  newFakeStore(),
		hasher: &fakeHasher{},
		tokens: newFakeTokens(),
		pub:    &fakePublisher{},
		audits: &[]auditEntry{},
	}

	var mu sync.Mutex
	svc := NewService(d.store, d.hasher, d.tokens, d.pub, Config{}).
		WithAudit(func(_ context.Context, action string, fields map[string]string) {
			cp := map[string]string{}
			for k, v := range fields {
				cp[k] = v
			}
			mu.Lock()
			*d.audits = append(*d.audits, auditEntry{action: action, fields: cp})
			mu.Unlock()
		})

	// sanity check: no nil ports
	if svc == nil {
		t.Fatalf("svc is nil")
	}

	return svc, d
}

var errBoom = errors.New("boom")

/*
Small assertions
*/

func requireDomainCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	got := domainCode(err)
	if got != wantCode {
		t.Fatalf("expected domain code %q, got %q (err=%v)", wantCode, got, err)
	}
}

func lastAudit(audits *[]auditEntry) (auditEntry, bool) {
	if audits == nil || len(*audits) == 0 {
		return auditEntry{}, false
	}
	return (*audits)[len(*audits)-1], true
}

func requireAuditAction(t *testing.T, audits *[]auditEntry, wantAction string) auditEntry {
	t.Helper()
	e, ok := lastAudit(audits)
	if !ok {
		t.Fatalf("expected audit entry, got none")
	}
	if e.action != wantAction {
		t.Fatalf("expected audit action %q, got %q", wantAction, e.action)
	}
	return e
}

func requireAuditField(t *testing.T, e auditEntry, k, want string) {
	t.Helper()
	got := strings.TrimSpace(e.fields[k])
	if got != want {
		t.Fatalf("expected audit field %q=%q, got %q (all=%v)", k, want, got, e.fields)
	}
}
