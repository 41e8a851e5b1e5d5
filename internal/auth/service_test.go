package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgauth "github.com/henriquelv/rottava-agro-pet-sub003/pkg/auth"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/auth/session"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/config"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/db/models"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/enums"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/errors"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret",
		Issuer:                 "rottava-agro-pet",
		ExpirationMinutes:      30,
		RefreshTokenTTLMinutes: 43200,
	}
}

type stubUserRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: map[string]*models.User{}, byID: map[uuid.UUID]*models.User{}}
}

func (s *stubUserRepo) Create(_ context.Context, user *models.User) error {
	if _, ok := s.byEmail[user.Email]; ok {
		return errors.New(errors.CodeConflict, "email already registered")
	}
	user.ID = uuid.New()
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
	return nil
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "user not found")
	}
	return user, nil
}

func (s *stubUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "user not found")
	}
	return user, nil
}

type stubSessions struct {
	tokens  map[string]string
	revoked []string
}

func newStubSessions() *stubSessions {
	return &stubSessions{tokens: map[string]string{}}
}

func (s *stubSessions) Generate(_ context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.tokens[accessID] = token
	return token, nil
}

func (s *stubSessions) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := s.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.tokens, oldAccessID)
	newID := session.NewAccessID()
	token := "refresh-" + newID
	s.tokens[newID] = token
	return newID, token, nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	delete(s.tokens, accessID)
	s.revoked = append(s.revoked, accessID)
	return nil
}

func newTestService(t *testing.T) (Service, *stubUserRepo, *stubSessions) {
	t.Helper()
	repo := newStubUserRepo()
	sessions := newStubSessions()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, sessions
}

func registerReq() RegisterRequest {
	return RegisterRequest{
		Name:     "Henrique",
		Email:    "Henrique@Example.com",
		Password: "correct-horse-battery",
	}
}

func TestRegisterOpensSession(t *testing.T) {
	svc, repo, _ := newTestService(t)

	resp, err := svc.Register(context.Background(), registerReq())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if resp.User.Email != "henrique@example.com" {
		t.Fatalf("expected normalized email, got %q", resp.User.Email)
	}
	if resp.User.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role, got %s", resp.User.Role)
	}

	stored := repo.byEmail["henrique@example.com"]
	if stored == nil {
		t.Fatal("expected user stored under normalized email")
	}
	if stored.PasswordHash == registerReq().Password {
		t.Fatal("password must not be stored in clear")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.UserID != stored.ID {
		t.Fatalf("expected token subject %s, got %s", stored.ID, claims.UserID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerReq()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, registerReq()); !errors.IsCode(err, errors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLoginVerifiesPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerReq()); err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := svc.Login(ctx, LoginRequest{Email: "henrique@example.com", Password: "correct-horse-battery"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected access token")
	}

	_, err = svc.Login(ctx, LoginRequest{Email: "henrique@example.com", Password: "wrong"})
	if !errors.IsCode(err, errors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownEmailIsUnauthorized(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	if !errors.IsCode(err, errors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized rather than leaking existence, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, registerReq())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	second, err := svc.Refresh(ctx, RefreshRequest{AccessToken: first.AccessToken, RefreshToken: first.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.AccessToken == first.AccessToken {
		t.Fatal("expected a new access token")
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("expected a new refresh token")
	}

	// old pair must be unusable after rotation
	_, err = svc.Refresh(ctx, RefreshRequest{AccessToken: first.AccessToken, RefreshToken: first.RefreshToken})
	if !errors.IsCode(err, errors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for reused pair, got %v", err)
	}

	if len(sessions.tokens) != 1 {
		t.Fatalf("expected exactly one live session, got %d", len(sessions.tokens))
	}
}

func TestRefreshRejectsForgedToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	forged, err := pkgauth.MintAccessToken(config.JWTConfig{
		Secret:            "other-secret",
		Issuer:            "rottava-agro-pet",
		ExpirationMinutes: 30,
	}, time.Now(), pkgauth.AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleCustomer, JTI: "x"})
	if err != nil {
		t.Fatalf("mint forged: %v", err)
	}

	_, err = svc.Refresh(ctx, RefreshRequest{AccessToken: forged, RefreshToken: "anything"})
	if !errors.IsCode(err, errors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerReq())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if err := svc.Logout(ctx, claims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != claims.ID {
		t.Fatalf("expected session revoked, got %+v", sessions.revoked)
	}

	if err := svc.Logout(ctx, ""); !errors.IsCode(err, errors.CodeValidation) {
		t.Fatalf("expected validation error for empty access id, got %v", err)
	}
}
