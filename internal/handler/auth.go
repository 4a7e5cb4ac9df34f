package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Ch4rC0M1n0U/osintgenerator/internal/domain"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/security/middleware"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Matricule string `json:"matricule"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Language  string `json:"language"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of an operator account. The password hash
// never leaves the server.
type UserResponse struct {
	ID        int64      `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Matricule string     `json:"matricule"`
	Email     string     `json:"email"`
	Language  string     `json:"language"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

// AuthResponse is returned on successful registration or login.
type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expiresIn"`
	TokenType string       `json:"tokenType"`
}

func toUserResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Matricule: user.Matricule,
		Email:     user.Email,
		Language:  user.Language,
		CreatedAt: user.CreatedAt,
	}
	if !user.LastLogin.IsZero() {
		last := user.LastLogin
		resp.LastLogin = &last
	}
	return resp
}

func toAuthResponse(result *service.AuthResult) AuthResponse {
	return AuthResponse{
		User:      toUserResponse(result.User),
		Token:     result.Token,
		ExpiresIn: result.ExpiresIn,
		TokenType: "Bearer",
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode register request",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := h.authService.Register(r.Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Matricule: req.Matricule,
		Email:     req.Email,
		Password:  req.Password,
		Language:  req.Language,
	})
	if err != nil {
		h.logger.Info("registration failed",
			slog.String("email", req.Email),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	h.logger.Info("operator registered successfully",
		slog.Int64("user_id", result.User.ID),
		slog.String("email", result.User.Email),
	)

	writeJSON(w, http.StatusCreated, toAuthResponse(result))
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode login request",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(result))
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.authService.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateLanguageRequest represents a language preference change
type UpdateLanguageRequest struct {
	Language string `json:"language"`
}

// UpdateLanguage handles PUT /api/auth/language
func (h *AuthHandler) UpdateLanguage(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.authService.UpdateLanguage(r.Context(), claims.UserID, req.Language); err != nil {
		writeDomainError(w, err)
		return
	}

	h.logger.Info("language updated",
		slog.Int64("user_id", claims.UserID),
		slog.String("language", req.Language),
	)

	writeJSON(w, http.StatusOK, map[string]string{"language": req.Language})
}
