package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Ch4rC0M1n0U/osintgenerator/internal/domain"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/security/auth"
)

type memUserRepo struct {
	nextID int64
	byID   map[int64]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[int64]*domain.User{}}
}

func (m *memUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, existing := range m.byID {
		if existing.Email == u.Email || existing.Matricule == u.Matricule {
			return domain.ErrDuplicate
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	m.byID[u.ID] = u
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) GetByMatricule(_ context.Context, matricule string) (*domain.User, error) {
	for _, u := range m.byID {
		if u.Matricule == matricule {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) UpdateLanguage(_ context.Context, id int64, language string) error {
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Language = language
	return nil
}

func (m *memUserRepo) TouchLastLogin(_ context.Context, id int64) error {
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.LastLogin = time.Now()
	return nil
}

func (m *memUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.byID)), nil
}

func newTestAuthService(repo domain.UserRepository) *AuthService {
	return NewAuthService(repo, auth.NewTokenManager("test-secret", "osintgen", time.Hour), nil)
}

const validPassword = "Str0ng!Passw0rd"

func validRegisterInput() RegisterInput {
	return RegisterInput{
		FirstName: "Anne",
		LastName:  "Maes",
		Matricule: "412345678",
		Email:     "anne.maes@police.belgium.eu",
		Password:  validPassword,
		Language:  "fr",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newMemUserRepo()
	s := newTestAuthService(repo)
	ctx := context.Background()

	r, err := s.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if r.User.ID == 0 || r.Token == "" {
		t.Fatalf("expected user id and token")
	}

	// Duplicate email/matricule
	if _, err := s.Register(ctx, validRegisterInput()); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Login ok
	lr, err := s.Login(ctx, "anne.maes@police.belgium.eu", validPassword)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if lr.Token == "" {
		t.Fatalf("expected token on login")
	}
	if repo.byID[r.User.ID].LastLogin.IsZero() {
		t.Fatalf("expected last login to be stamped")
	}

	// Login wrong password
	if _, err := s.Login(ctx, "anne.maes@police.belgium.eu", "Wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	// Login unknown email is indistinguishable from wrong password
	if _, err := s.Login(ctx, "nobody@police.belgium.eu", validPassword); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	mutations := map[string]func(*RegisterInput){
		"missing name":        func(in *RegisterInput) { in.FirstName = "" },
		"bad matricule":       func(in *RegisterInput) { in.Matricule = "512345678" },
		"short matricule":     func(in *RegisterInput) { in.Matricule = "41234" },
		"wrong email domain":  func(in *RegisterInput) { in.Email = "anne@example.com" },
		"short password":      func(in *RegisterInput) { in.Password = "Sh0rt!pw" },
		"no special char":     func(in *RegisterInput) { in.Password = "NoSpecial1234" },
		"no uppercase":        func(in *RegisterInput) { in.Password = "weak!passw0rd" },
		"unsupported language": func(in *RegisterInput) { in.Language = "de" },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			s := newTestAuthService(newMemUserRepo())
			input := validRegisterInput()
			mutate(&input)

			if _, err := s.Register(context.Background(), input); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestRegisterDefaultsLanguage(t *testing.T) {
	s := newTestAuthService(newMemUserRepo())
	input := validRegisterInput()
	input.Language = ""

	r, err := s.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if r.User.Language != "en" {
		t.Fatalf("expected default language en, got %q", r.User.Language)
	}
}

func TestTokenCarriesOperatorClaims(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "osintgen", time.Hour)
	s := NewAuthService(newMemUserRepo(), tm, nil)

	r, err := s.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	claims, err := tm.ValidateToken(r.Token)
	if err != nil {
		t.Fatalf("token validation failed: %v", err)
	}
	if claims.UserID != r.User.ID || claims.Email != r.User.Email || claims.Language != "fr" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.FirstName != "Anne" || claims.LastName != "Maes" {
		t.Fatalf("expected name claims, got %+v", claims)
	}
}

func TestUpdateLanguage(t *testing.T) {
	repo := newMemUserRepo()
	s := newTestAuthService(repo)
	ctx := context.Background()

	r, err := s.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := s.UpdateLanguage(ctx, r.User.ID, "nl"); err != nil {
		t.Fatalf("update language failed: %v", err)
	}
	if repo.byID[r.User.ID].Language != "nl" {
		t.Fatalf("language not updated")
	}

	if err := s.UpdateLanguage(ctx, r.User.ID, "es"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
