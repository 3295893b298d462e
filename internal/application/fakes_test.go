package application

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/fitness-app-api/internal/domain/entity"
	repo "github.com/oksasatya/fitness-app-api/internal/domain/repository"
	"github.com/oksasatya/fitness-app-api/pkg/helpers"
	"github.com/oksasatya/fitness-app-api/pkg/mailer"
)

var errBoom = errors.New("boom")

// memUsers is an in-memory UserRepository with the same uniqueness rule as postgres.
type memUsers struct {
	mu      sync.Mutex
	byID    map[string]*entity.User
	byEmail map[string]string

	getErr    error
	createErr error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*entity.User{}, byEmail: map[string]string{}}
}

func clone(u *entity.User) *entity.User {
	c := *u
	c.Roles = append([]entity.RoleName(nil), u.Roles...)
	return &c
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.byEmail[u.Email]; ok {
		return repo.ErrEmailTaken
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = clone(u)
	m.byEmail[u.Email] = u.ID
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return clone(u), nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	id, ok := m.byEmail[email]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return clone(m.byID[id]), nil
}

func (m *memUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byEmail[email]
	return ok, nil
}

func (m *memUsers) Update(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[u.ID]
	if !ok {
		return repo.ErrNotFound
	}
	cur.Name = u.Name
	cur.AvatarURL = u.AvatarURL
	cur.UpdatedAt = time.Now()
	return nil
}

func (m *memUsers) countEmail(email string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.byID {
		if u.Email == email {
			n++
		}
	}
	return n
}

type memRoles struct {
	mu    sync.Mutex
	roles map[entity.RoleName]*entity.Role
}

func (m *memRoles) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.roles), nil
}

func (m *memRoles) Create(_ context.Context, name entity.RoleName) (*entity.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.roles == nil {
		m.roles = map[entity.RoleName]*entity.Role{}
	}
	if r, ok := m.roles[name]; ok {
		return r, nil
	}
	r := &entity.Role{ID: int64(len(m.roles) + 1), Name: name}
	m.roles[name] = r
	return r, nil
}

func (m *memRoles) GetByName(_ context.Context, name entity.RoleName) (*entity.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.roles[name]; ok {
		return r, nil
	}
	return nil, repo.ErrNotFound
}

func (m *memRoles) Assign(context.Context, string, entity.RoleName) error { return nil }

type recordingPublisher struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, body.(mailer.EmailJob))
	return nil
}

type recordingIndex struct {
	mu      sync.Mutex
	indexed []string
	hits    []map[string]any
}

func (i *recordingIndex) Index(_ context.Context, u *entity.User) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.indexed = append(i.indexed, u.ID)
	return nil
}

func (i *recordingIndex) Search(context.Context, string, int) ([]map[string]any, error) {
	return i.hits, nil
}

type memAvatars struct {
	objects map[string][]byte
	err     error
}

func (a *memAvatars) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if a.objects == nil {
		a.objects = map[string][]byte{}
	}
	a.objects[objectPath] = b
	return "https://cdn.example/" + objectPath, nil
}

func testJWT() *helpers.JWTManager {
	return helpers.NewJWTManager("test-secret", "fitness-test", time.Hour)
}

func testHasher() helpers.BcryptHasher {
	return helpers.NewBcryptHasher(bcrypt.MinCost)
}
