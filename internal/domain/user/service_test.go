package user

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type memoryUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*User
	byMail map[string]int64
	nextID int64
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{
		users:  make(map[int64]*User),
		byMail: make(map[string]int64),
		nextID: 1,
	}
}

func (r *memoryUserRepo) Create(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt = time.Now()
	copyUser := *u
	r.users[u.ID] = &copyUser
	r.byMail[u.Email] = u.ID
	return nil
}

func (r *memoryUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byMail[email]
	if !ok {
		return nil, errors.New("not found")
	}
	copyUser := *r.users[id]
	return &copyUser, nil
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id int64) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copyUser := *u
	return &copyUser, nil
}

func (r *memoryUserRepo) List(ctx context.Context) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]User, 0, len(r.users))
	for _, u := range r.users {
		res = append(res, *u)
	}
	return res, nil
}

func (r *memoryUserRepo) UpdateRole(ctx context.Context, id int64, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return errors.New("not found")
	}
	u.Role = role
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewService(repo)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", ""); err == nil {
		t.Fatalf("expected error for empty credentials")
	}

	u, err := svc.Register(ctx, "voter@test.com", "pass123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if u.Role != "user" {
		t.Fatalf("expected default role user, got %s", u.Role)
	}
	if u.PasswordHash == "pass123" {
		t.Fatalf("password must be hashed")
	}

	if _, err := svc.Register(ctx, "voter@test.com", "other"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}

	if _, err := svc.Login(ctx, "voter@test.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for wrong password, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@test.com", "pass123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}

	logged, err := svc.Login(ctx, "voter@test.com", "pass123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if logged.ID != u.ID {
		t.Fatalf("login returned wrong user")
	}
}

func TestUpdateRole(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewService(repo)
	ctx := context.Background()

	u, err := svc.Register(ctx, "voter@test.com", "pass123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.UpdateRole(ctx, u.ID, "superuser"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected invalid role error, got %v", err)
	}
	if err := svc.UpdateRole(ctx, u.ID, "admin"); err != nil {
		t.Fatalf("role update failed: %v", err)
	}

	got, err := svc.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Role != "admin" {
		t.Fatalf("expected admin role, got %s", got.Role)
	}
}
