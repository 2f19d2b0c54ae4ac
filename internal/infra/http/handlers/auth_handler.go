package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/luminacrm/lumina/internal/entity"
	"github.com/luminacrm/lumina/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, string, error)
}

type AuthHandler struct {
	users UserStore
	jwt   *jwt.Service
}

func NewAuthHandler(users UserStore, jwtSvc *jwt.Service) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwtSvc}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    entity.User `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errJSON("Invalid JSON"))
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errJSON("Email and password are required."))
		return
	}

	user, stored, err := h.users.FindByEmail(r.Context(), req.Email)
	if errors.Is(err, entity.ErrUserNotFound) {
		writeJSON(w, http.StatusUnauthorized, errJSON("Invalid email or password."))
		return
	}
	if err != nil {
		log.Printf("login error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errJSON("Internal server error during login."))
		return
	}

	if !passwordMatches(req.Password, stored) {
		writeJSON(w, http.StatusUnauthorized, errJSON("Invalid email or password."))
		return
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		log.Printf("login error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errJSON("Internal server error during login."))
		return
	}

	log.Printf("admin user logged in: %s", user.Email)
	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   token,
		User:    *user,
	})
}

// passwordMatches accepts bcrypt hashes and, for rows that predate
// hashing, plain text credentials.
func passwordMatches(given, stored string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return given == stored
}
