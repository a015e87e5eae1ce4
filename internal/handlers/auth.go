package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/pkg/apperrors"
	"github.com/anonto42/nano-social/backend/pkg/firebase"
	"github.com/anonto42/nano-social/backend/pkg/logger"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	users        repositories.UserRepository
	firebaseAuth firebase.TokenVerifier
	jwtSecret    string
	jwtExpiry    time.Duration
}

// NewAuthHandler creates a new AuthHandler. firebaseAuth may be nil, in which
// case Firebase login answers 503.
func NewAuthHandler(users repositories.UserRepository, firebaseAuth firebase.TokenVerifier, jwtSecret string, jwtExpiry time.Duration) *AuthHandler {
	return &AuthHandler{
		users:        users,
		firebaseAuth: firebaseAuth,
		jwtSecret:    jwtSecret,
		jwtExpiry:    jwtExpiry,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase-login", h.FirebaseLogin)
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.CreateLocalUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Username:    req.Username,
		Email:       strings.ToLower(req.Email),
		Password:    string(hashedPassword),
		DisplayName: req.Username,
		Role:        models.RoleUser,
	}

	ctx := c.Request().Context()
	if err := h.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return apperrors.Conflict("username or email already registered")
		}
		return apperrors.Internal("failed to create user", err)
	}

	logger.Info("User signed up", "user_id", user.ID)
	return h.issueToken(c, http.StatusCreated, user)
}

// SignIn handles local user authentication with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.GetUserByEmail(c.Request().Context(), strings.ToLower(req.Email))
	if err != nil {
		if repositories.IsNotFound(err) {
			return apperrors.New(apperrors.CodeUnauthorized, "invalid email or password")
		}
		return apperrors.Internal("failed to load user", err)
	}

	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return apperrors.New(apperrors.CodeUnauthorized, "invalid email or password")
	}

	return h.issueToken(c, http.StatusOK, user)
}

// FirebaseLogin verifies a Firebase ID token and issues a local JWT
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebaseAuth == nil {
		return apperrors.Upstream("firebase login is not configured", nil)
	}

	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return apperrors.New(apperrors.CodeUnauthorized, "invalid Firebase ID token")
	}

	email, _ := token.Claims["email"].(string)
	if email == "" {
		return apperrors.Validation("firebase account has no email")
	}
	email = strings.ToLower(email)
	name, _ := token.Claims["name"].(string)
	uid := token.UID

	user, err := h.users.GetUserByFirebaseUID(ctx, uid)
	switch {
	case err == nil:
	case repositories.IsNotFound(err):
		user, err = h.linkOrCreate(c, uid, email, name, req.Username)
		if err != nil {
			return err
		}
	default:
		return apperrors.Internal("failed to load user", err)
	}

	return h.issueToken(c, http.StatusOK, user)
}

func (h *AuthHandler) linkOrCreate(c echo.Context, uid, email, name, username string) (*models.User, error) {
	ctx := c.Request().Context()

	user, err := h.users.GetUserByEmail(ctx, email)
	if err == nil {
		user.FirebaseUID = &uid
		if err := h.users.UpdateUser(ctx, user); err != nil {
			return nil, apperrors.Internal("failed to link Firebase account", err)
		}
		return user, nil
	}
	if !repositories.IsNotFound(err) {
		return nil, apperrors.Internal("failed to load user", err)
	}

	if username == "" {
		username = "user" + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	}
	user = &models.User{
		Username:    username,
		Email:       email,
		FirebaseUID: &uid,
		DisplayName: name,
		Role:        models.RoleUser,
	}
	if err := h.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.Conflict("username already taken")
		}
		return nil, apperrors.Internal("failed to create user", err)
	}

	logger.Info("User created from Firebase login", "user_id", user.ID)
	return user, nil
}

func (h *AuthHandler) issueToken(c echo.Context, status int, user *models.User) error {
	token, err := h.generateJWT(user)
	if err != nil {
		return apperrors.Internal("failed to generate token", err)
	}
	return respond(c, status, echo.Map{"token": token, "user": user})
}

// generateJWT generates a JWT token for a given user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		Roles:  []string{user.Role},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(h.jwtExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
