package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tent-booking/internal/middleware"
	"github.com/iliyamo/tent-booking/internal/model"
	"github.com/iliyamo/tent-booking/internal/service"
	"github.com/iliyamo/tent-booking/internal/utils"
)

// requestTimeout bounds the store calls of a single request.
const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// AuthHandler serves /api/auth.
type AuthHandler struct {
	Svc       service.AuthService
	JWTSecret string
	Log       *zap.Logger
}

func NewAuthHandler(svc service.AuthService, jwtSecret string, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, JWTSecret: jwtSecret, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Username        string  `json:"username" validate:"required,max=150"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required"`
	PasswordConfirm string  `json:"password_confirm" validate:"required,eqfield=Password"`
	FirstName       string  `json:"first_name" validate:"max=150"`
	LastName        string  `json:"last_name" validate:"max=150"`
	PhoneNumber     *string `json:"phone_number" validate:"omitempty,max=15"`
	Role            string  `json:"role" validate:"omitempty,oneof=admin customer"`
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// refreshReq accepts both the "refresh" and "refresh_token" spellings.
type refreshReq struct {
	Refresh      string `json:"refresh"`
	RefreshToken string `json:"refresh_token"`
}

func (r refreshReq) token() string {
	if t := strings.TrimSpace(r.Refresh); t != "" {
		return t
	}
	return strings.TrimSpace(r.RefreshToken)
}

type profileReq struct {
	Email       *string `json:"email" validate:"omitempty,email"`
	FirstName   *string `json:"first_name" validate:"omitempty,max=150"`
	LastName    *string `json:"last_name" validate:"omitempty,max=150"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=15"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type tokenPairResp struct {
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

type authResp struct {
	User    userResp  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
	Message string    `json:"message"`
}

func newTokenPairResp(p service.TokenPair) tokenPairResp {
	return tokenPairResp{
		Access:  tokenPart{Token: p.Access.Token, Expires: p.Access.Exp},
		Refresh: tokenPart{Token: p.Refresh.Raw, Expires: p.Refresh.Exp},
	}
}

func newAuthResp(u model.User, p service.TokenPair, msg string) authResp {
	pair := newTokenPairResp(p)
	return authResp{User: newUserResp(u), Access: pair.Access, Refresh: pair.Refresh, Message: msg}
}

// Register creates an account and returns it with a fresh token pair.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := decode(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, pair, err := h.Svc.Register(ctx, service.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Role:        model.Role(req.Role),
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, newAuthResp(u, pair, "User registered successfully"))
}

// Login verifies credentials and returns the user with a token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := decode(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, pair, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, newAuthResp(u, pair, "Login successful"))
}

// Token is Login without the user payload.
func (h *AuthHandler) Token(c echo.Context) error {
	var req loginReq
	if err := decode(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	_, pair, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, newTokenPairResp(pair))
}

// Refresh rotates the presented refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.Log, errBadBody)
	}
	raw := req.token()
	if raw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"refresh": []string{"This field is required."}})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	_, pair, err := h.Svc.Refresh(ctx, raw)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, newTokenPairResp(pair))
}

// Logout revokes the refresh token in the body.  Without one, a valid
// bearer token revokes every session of its user.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	ctx, cancel := reqCtx(c)
	defer cancel()

	if raw := req.token(); raw != "" {
		if err := h.Svc.Logout(ctx, raw); err != nil {
			return respondError(c, h.Log, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
	if bearer, ok := middleware.BearerToken(c); ok {
		id, err := utils.ParseAccessToken(h.JWTSecret, bearer)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Given token not valid for any token type."})
		}
		if err := h.Svc.LogoutAll(ctx, id.UserID); err != nil {
			return respondError(c, h.Log, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh token"})
}

func (h *AuthHandler) Profile(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Svc.Profile(ctx, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, newUserResp(u))
}

// UpdateProfile serves both PUT and PATCH; absent fields are kept.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var req profileReq
	if err := decode(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Svc.UpdateProfile(ctx, id, service.ProfileInput{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, newUserResp(u))
}

// Users lists every account.  Admin only.
func (h *AuthHandler) Users(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Svc.ListUsers(ctx, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResp(u))
	}
	return c.JSON(http.StatusOK, out)
}
