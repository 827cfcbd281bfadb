package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"
	"github.com/smart-recruiter/assessment-api/internal/authz"
	"github.com/smart-recruiter/assessment-api/internal/models"
	"github.com/smart-recruiter/assessment-api/internal/repository"
)

type AuthHandler struct {
	userRepo  repository.UserRepository
	jwtSecret string
	logger    zerolog.Logger
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewAuthHandler(userRepo repository.UserRepository, jwtSecret string, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		logger:    logger.With().Str("handler", "auth").Logger(),
	}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request payload"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	role := models.UserRole(strings.TrimSpace(req.Role))

	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "name, email and password are required"})
		return
	}
	if !models.IsValidRole(role) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "role must be either recruiter or interviewee"})
		return
	}

	user, err := h.userRepo.Create(r.Context(), req.Name, req.Email, req.Password, role)
	if err != nil {
		if err == repository.ErrDuplicateEmail {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "user already exists"})
			return
		}
		h.logger.Error().Err(err).Msg("failed to create user")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to create user"})
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to sign token")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to generate token"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":      "signup successful",
		"user":         user,
		"access_token": token,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request payload"})
		return
	}

	user, err := h.userRepo.Authenticate(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)), req.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid email or password"})
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to sign token")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to generate token"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "login successful",
		"user":         user,
		"access_token": token,
		"role":         user.Role,
	})
}

func (h *AuthHandler) issueToken(user models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})
	return token.SignedString([]byte(h.jwtSecret))
}

// JWTMiddleware authenticates bearer tokens and stores the actor identity on
// the request context.
func (h *AuthHandler) JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
			return
		}
		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(h.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !claims.VerifyExpiresAt(time.Now().Unix(), true) {
			http.Error(w, "Token expired", http.StatusUnauthorized)
			return
		}
		userID, _ := claims["sub"].(string)
		roleClaim, _ := claims["role"].(string)
		role := models.UserRole(roleClaim)
		if userID == "" || !models.IsValidRole(role) {
			http.Error(w, "Missing token claim", http.StatusUnauthorized)
			return
		}
		ctx := authz.WithIdentity(r.Context(), userID, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
