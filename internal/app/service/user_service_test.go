package service

import (
	"context"
	"errors"
	"testing"

	"github.com/lnky-dev/lnky/internal/app/model"
	"github.com/lnky-dev/lnky/internal/app/repository"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepository struct {
	createFn        func(ctx context.Context, user *model.User) error
	getByIDFn       func(ctx context.Context, id string) (*model.User, error)
	getByEmailFn    func(ctx context.Context, email string) (*model.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*model.User, error)
	listUsernamesFn func(ctx context.Context) ([]string, error)
	updateFn        func(ctx context.Context, id string, fields map[string]interface{}) error

	usernameLookups int
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	m.usernameLookups++
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) ListUsernames(ctx context.Context) ([]string, error) {
	if m.listUsernamesFn != nil {
		return m.listUsernamesFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, fields)
	}
	return nil
}

func TestUserService_Signup(t *testing.T) {
	var created *model.User
	repo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	index := NewUsernameIndex(nil)
	svc := NewUserService(repo, index)

	user, err := svc.Signup(context.Background(), SignupInput{
		Email:    "alex@example.com",
		Password: "hunter22",
		Username: "Alex",
	})
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if created == nil {
		t.Fatal("expected user to be persisted")
	}
	if user.Username != "alex" {
		t.Fatalf("expected lowercased username, got %s", user.Username)
	}
	if user.DisplayName == nil || *user.DisplayName != "alex" {
		t.Fatal("expected display name defaulted to username")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("hunter22")); err != nil {
		t.Fatal("expected stored password to be a bcrypt hash of the input")
	}
	if !index.MightExist("alex") {
		t.Fatal("expected signup to register the username in the index")
	}
}

func TestUserService_Signup_Conflicts(t *testing.T) {
	repo := &mockUserRepository{
		getByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email == "taken@example.com" {
				return &model.User{Email: email}, nil
			}
			return nil, repository.ErrUserNotFound
		},
		getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			if username == "taken" {
				return &model.User{Username: username}, nil
			}
			return nil, repository.ErrUserNotFound
		},
	}
	svc := NewUserService(repo, nil)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Email: "taken@example.com", Password: "x", Username: "fresh"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	_, err = svc.Signup(ctx, SignupInput{Email: "new@example.com", Password: "x", Username: "taken"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestUserService_Authenticate(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcryptCost)
	repo := &mockUserRepository{
		getByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "u1", Email: email, Password: string(hash)}, nil
		},
	}
	svc := NewUserService(repo, nil)
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, "a@example.com", "correct")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if user.ID != "u1" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := svc.Authenticate(ctx, "a@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserService_Authenticate_UnknownEmail(t *testing.T) {
	svc := NewUserService(&mockUserRepository{}, nil)
	if _, err := svc.Authenticate(context.Background(), "none@example.com", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserService_CheckUsername_BloomShortCircuit(t *testing.T) {
	repo := &mockUserRepository{
		getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			if username == "taken" {
				return &model.User{Username: username}, nil
			}
			return nil, repository.ErrUserNotFound
		},
	}
	index := NewUsernameIndex([]string{"taken"})
	svc := NewUserService(repo, index)
	ctx := context.Background()

	available, err := svc.CheckUsername(ctx, "definitely-free-name")
	if err != nil {
		t.Fatalf("CheckUsername returned error: %v", err)
	}
	if !available {
		t.Fatal("expected unseen username to be available")
	}
	if repo.usernameLookups != 0 {
		t.Fatalf("expected bloom filter to skip the store, got %d lookups", repo.usernameLookups)
	}

	available, err = svc.CheckUsername(ctx, "Taken")
	if err != nil {
		t.Fatalf("CheckUsername returned error: %v", err)
	}
	if available {
		t.Fatal("expected taken username to be unavailable")
	}
	if repo.usernameLookups != 1 {
		t.Fatalf("expected exactly one store lookup, got %d", repo.usernameLookups)
	}
}

func TestUserService_UpdateColors_ClearsEmpty(t *testing.T) {
	var gotFields map[string]interface{}
	repo := &mockUserRepository{
		updateFn: func(ctx context.Context, id string, fields map[string]interface{}) error {
			gotFields = fields
			return nil
		},
	}
	svc := NewUserService(repo, nil)

	err := svc.UpdateColors(context.Background(), "u1", ColorsInput{
		BgColor:     "#112233",
		TextColor:   "",
		AccentColor: "#abcdef",
	})
	if err != nil {
		t.Fatalf("UpdateColors returned error: %v", err)
	}
	if gotFields["bg_color"] != "#112233" {
		t.Fatalf("expected bg color set, got %v", gotFields["bg_color"])
	}
	if gotFields["text_color"] != nil {
		t.Fatalf("expected empty text color stored as NULL, got %v", gotFields["text_color"])
	}
}

func TestUserService_Settings_RequireOwner(t *testing.T) {
	svc := NewUserService(&mockUserRepository{}, nil)
	ctx := context.Background()

	if err := svc.UpdateProfile(ctx, "", ProfileInput{}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := svc.ClearBackground(ctx, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
