package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/henriquelv/rottava-agro-pet-sub003/internal/users"
	pkgauth "github.com/henriquelv/rottava-agro-pet-sub003/pkg/auth"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/auth/session"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/config"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/db/models"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/enums"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/errors"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*SessionResponse, error)
	Login(ctx context.Context, req LoginRequest) (*SessionResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*SessionResponse, error)
	Logout(ctx context.Context, accessID string) error
}

type userRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
}

type service struct {
	users       userRepository
	session     sessionManager
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.JWTConfig.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &service{
		users:       params.UserRepo,
		session:     params.SessionManager,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		now:         time.Now,
	}, nil
}

// Register creates a customer account and opens a session.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*SessionResponse, error) {
	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "hashing password")
	}

	user := models.User{
		Name:         req.Name,
		Email:        users.NormalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         enums.UserRoleCustomer,
		Phone:        req.Phone,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return nil, err
	}
	return s.openSession(ctx, user)
}

// Login authenticates credentials and opens a session.
func (s *service) Login(ctx context.Context, req LoginRequest) (*SessionResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.IsCode(err, errors.CodeNotFound) {
			return nil, errors.New(errors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, err
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, errors.New(errors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return s.openSession(ctx, *user)
}

// Refresh rotates the session named by the (possibly expired) access token.
func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*SessionResponse, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, errors.New(errors.CodeUnauthorized, "invalid access token")
	}

	newAccessID, newRefreshToken, err := s.session.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if stderrors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, errors.New(errors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "rotating session")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    newAccessID,
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "minting access token")
	}

	return &SessionResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		User:         toUserDTO(*user),
	}, nil
}

// Logout revokes the refresh session tied to the access token id.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if accessID == "" {
		return errors.New(errors.CodeValidation, "access id is required")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "revoking session")
	}
	return nil
}

func (s *service) openSession(ctx context.Context, user models.User) (*SessionResponse, error) {
	accessID := session.NewAccessID()
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "creating session")
	}

	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "minting access token")
	}

	return &SessionResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         toUserDTO(user),
	}, nil
}
