package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"techstore/internal/entity"
	"techstore/internal/repository"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthTokens carries a freshly issued access/refresh pair. The refresh
// token is delivered to clients as an httpOnly cookie.
type AuthTokens struct {
	AccessToken  string
	RefreshToken string
	RefreshTTL   time.Duration
}

type UserService struct {
	users      UserRepository
	sessions   SessionStore
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewUserService(users UserRepository, sessions SessionStore, secret []byte, accessTTL, refreshTTL time.Duration) *UserService {
	return &UserService{
		users:      users,
		sessions:   sessions,
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// Register creates a customer account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" || input.Username == "" {
		return nil, fmt.Errorf("%w: username and email are required", ErrValidation)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username: input.Username,
		Email:    input.Email,
		Password: string(hash),
		FullName: input.FullName,
		Role:     entity.RoleCustomer,
		Active:   true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		logger.Error().Err(err).Msg("Error creating user")
		return nil, err
	}
	return user, nil
}

// Login verifies the password and issues an access JWT plus a refresh token
// stored in the session store.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthTokens, *entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !user.Active {
		return nil, nil, ErrAccountDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return tokens, user, nil
}

// Refresh rotates the refresh token and returns a new access JWT.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*AuthTokens, *entity.User, error) {
	userID, err := s.sessions.Get(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrSessionExpired
		}
		return nil, nil, err
	}

	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil, ErrSessionExpired
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, nil, ErrSessionExpired
	}
	if !user.Active {
		return nil, nil, ErrAccountDisabled
	}

	if err := s.sessions.Delete(ctx, refreshToken); err != nil {
		logger.Error().Err(err).Msg("Error deleting refresh token")
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return tokens, user, nil
}

func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	return s.sessions.Delete(ctx, refreshToken)
}

func (s *UserService) issueTokens(ctx context.Context, user *entity.User) (*AuthTokens, error) {
	claims := &JwtCustomClaims{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	refresh := uuid.NewString()
	if err := s.sessions.Save(ctx, refresh, user.ID.Hex(), s.refreshTTL); err != nil {
		return nil, err
	}

	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		RefreshTTL:   s.refreshTTL,
	}, nil
}

func (s *UserService) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error) {
	return s.users.GetByID(ctx, id)
}

type ProfileUpdate struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, input ProfileUpdate) (*entity.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Username != "" {
		user.Username = input.Username
	}
	user.FullName = input.FullName
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListCustomers(ctx context.Context, page repository.Page) ([]*entity.User, int64, error) {
	return s.users.List(ctx, entity.RoleCustomer, page)
}

func (s *UserService) ListStaff(ctx context.Context, page repository.Page) ([]*entity.User, int64, error) {
	return s.users.List(ctx, entity.RoleStaff, page)
}

// CreateStaff registers a back-office account. Admin only.
func (s *UserService) CreateStaff(ctx context.Context, input RegisterInput) (*entity.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" || input.Username == "" {
		return nil, fmt.Errorf("%w: username and email are required", ErrValidation)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username: input.Username,
		Email:    input.Email,
		Password: string(hash),
		FullName: input.FullName,
		Role:     entity.RoleStaff,
		Active:   true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

type UserUpdate struct {
	Role   string `json:"role"`
	Active *bool  `json:"active"`
}

// UpdateUser changes role and active flag. Admin only.
func (s *UserService) UpdateUser(ctx context.Context, id primitive.ObjectID, input UserUpdate) (*entity.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Role != "" {
		switch input.Role {
		case entity.RoleCustomer, entity.RoleStaff, entity.RoleAdmin:
			user.Role = input.Role
		default:
			return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, input.Role)
		}
	}
	if input.Active != nil {
		user.Active = *input.Active
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
