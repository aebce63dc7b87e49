package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/tent-booking/internal/model"
	"github.com/iliyamo/tent-booking/internal/repository"
	"github.com/iliyamo/tent-booking/internal/utils"
)

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, u *model.User) error
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AuthService is the authentication collaborator: accounts, credentials,
// token pairs and profiles.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (model.User, TokenPair, error)
	CreateAdmin(ctx context.Context, in RegisterInput) (model.User, error)
	Login(ctx context.Context, username, password string) (model.User, TokenPair, error)
	Refresh(ctx context.Context, rawRefresh string) (model.User, TokenPair, error)
	Logout(ctx context.Context, rawRefresh string) error
	LogoutAll(ctx context.Context, userID uint64) error
	Profile(ctx context.Context, id model.Identity) (model.User, error)
	UpdateProfile(ctx context.Context, id model.Identity, in ProfileInput) (model.User, error)
	ListUsers(ctx context.Context, id model.Identity) ([]model.User, error)
}

type TokenPair struct {
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber *string
	// Role is only honoured when admin signup is allowed.
	Role model.Role
}

// ProfileInput is a partial update of the self-service profile fields.
type ProfileInput struct {
	Email       *string
	FirstName   *string
	LastName    *string
	PhoneNumber *string
}

type AuthOptions struct {
	JWTSecret        string
	AccessTTLMin     int
	RefreshTTLDays   int
	BcryptCost       int
	AllowAdminSignup bool
	Logger           *zap.Logger
}

type authService struct {
	users  UserStore
	tokens TokenStore
	opts   AuthOptions
	log    *zap.Logger
}

func NewAuthService(users UserStore, tokens TokenStore, opts AuthOptions) AuthService {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{users: users, tokens: tokens, opts: opts, log: log}
}

// Register creates a customer account (or an admin when admin signup is
// enabled) and signs it in.
func (s *authService) Register(ctx context.Context, in RegisterInput) (model.User, TokenPair, error) {
	role := model.RoleCustomer
	if s.opts.AllowAdminSignup && in.Role == model.RoleAdmin {
		role = model.RoleAdmin
	}
	u, err := s.createUser(ctx, in, role)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	pair, err := s.issue(ctx, u)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	return u, pair, nil
}

// CreateAdmin bootstraps an admin account without issuing tokens.
func (s *authService) CreateAdmin(ctx context.Context, in RegisterInput) (model.User, error) {
	return s.createUser(ctx, in, model.RoleAdmin)
}

func (s *authService) createUser(ctx context.Context, in RegisterInput, role model.Role) (model.User, error) {
	verr := &ValidationError{}
	username := strings.TrimSpace(in.Username)
	switch {
	case username == "":
		verr.Add("username", msgRequired)
	case len(username) > 150:
		verr.Add("username", maxLength(150))
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		verr.Add("email", msgRequired)
	} else if _, err := mail.ParseAddress(email); err != nil {
		verr.Add("email", "Enter a valid email address.")
	}
	for _, perr := range utils.CheckPasswordStrength(in.Password) {
		verr.Add("password", perr.Error())
	}
	phone := normalizePhone(in.PhoneNumber)
	if phone != nil && len(*phone) > 15 {
		verr.Add("phone_number", maxLength(15))
	}
	if err := verr.Err(); err != nil {
		return model.User{}, err
	}

	hash, err := utils.HashPassword(in.Password, s.opts.BcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         role,
		PhoneNumber:  phone,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return model.User{}, invalid("username", "A user with that username already exists.")
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user registered", zap.Uint64("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (model.User, TokenPair, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrUserNotFound) {
		return model.User{}, TokenPair{}, ErrUnauthenticated
	}
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, TokenPair{}, ErrUnauthenticated
	}
	pair, err := s.issue(ctx, u)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (s *authService) Refresh(ctx context.Context, rawRefresh string) (model.User, TokenPair, error) {
	hash := utils.HashRefreshRaw(strings.TrimSpace(rawRefresh))
	userID, err := s.tokens.ValidateRefresh(ctx, hash)
	if errors.Is(err, repository.ErrTokenInvalid) {
		return model.User{}, TokenPair{}, ErrUnauthenticated
	}
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	if err := s.tokens.RevokeByHash(ctx, hash); err != nil {
		return model.User{}, TokenPair{}, fmt.Errorf("revoke refresh: %w", err)
	}
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) || (err == nil && !u.IsActive) {
		return model.User{}, TokenPair{}, ErrUnauthenticated
	}
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	pair, err := s.issue(ctx, u)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	return u, pair, nil
}

// Logout revokes one refresh token.
func (s *authService) Logout(ctx context.Context, rawRefresh string) error {
	hash := utils.HashRefreshRaw(strings.TrimSpace(rawRefresh))
	if _, err := s.tokens.ValidateRefresh(ctx, hash); err != nil {
		if errors.Is(err, repository.ErrTokenInvalid) {
			return ErrUnauthenticated
		}
		return err
	}
	return s.tokens.RevokeByHash(ctx, hash)
}

// LogoutAll revokes every refresh token of the user.
func (s *authService) LogoutAll(ctx context.Context, userID uint64) error {
	return s.tokens.RevokeAllForUser(ctx, userID)
}

func (s *authService) Profile(ctx context.Context, id model.Identity) (model.User, error) {
	u, err := s.users.GetByID(ctx, id.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// UpdateProfile changes contact details only.  Username and role are not
// editable through this path.
func (s *authService) UpdateProfile(ctx context.Context, id model.Identity, in ProfileInput) (model.User, error) {
	u, err := s.Profile(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	verr := &ValidationError{}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" {
			verr.Add("email", msgRequired)
		} else if _, err := mail.ParseAddress(email); err != nil {
			verr.Add("email", "Enter a valid email address.")
		}
		u.Email = email
	}
	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
		if len(u.FirstName) > 150 {
			verr.Add("first_name", maxLength(150))
		}
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
		if len(u.LastName) > 150 {
			verr.Add("last_name", maxLength(150))
		}
	}
	if in.PhoneNumber != nil {
		u.PhoneNumber = normalizePhone(in.PhoneNumber)
		if u.PhoneNumber != nil && len(*u.PhoneNumber) > 15 {
			verr.Add("phone_number", maxLength(15))
		}
	}
	if err := verr.Err(); err != nil {
		return model.User{}, err
	}
	if err := s.users.UpdateProfile(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

func (s *authService) ListUsers(ctx context.Context, id model.Identity) ([]model.User, error) {
	if err := RequireRole(id, MsgUsersAdmin, model.RoleAdmin); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

func (s *authService) issue(ctx context.Context, u model.User) (TokenPair, error) {
	access, err := utils.NewAccessToken(s.opts.JWTSecret, u.Identity(), s.opts.AccessTTLMin)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access: %w", err)
	}
	refresh, err := utils.NewRefreshToken(s.opts.RefreshTTLDays)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue refresh: %w", err)
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return TokenPair{}, fmt.Errorf("save refresh: %w", err)
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// normalizePhone trims the number; blank means none.
func normalizePhone(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
