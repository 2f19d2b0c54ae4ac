package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/luminacrm/lumina/internal/entity"
	"github.com/luminacrm/lumina/internal/pkg/jwt"
)

type fakeUserStore struct {
	user     *entity.User
	password string
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*entity.User, string, error) {
	if f.user == nil || f.user.Email != email {
		return nil, "", entity.ErrUserNotFound
	}
	return f.user, f.password, nil
}

func loginWith(t *testing.T, users *fakeUserStore, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewAuthHandler(users, jwt.New("test-secret", time.Hour))
	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))
	return rec
}

func TestLoginSuccessWithPlaintextPassword(t *testing.T) {
	users := &fakeUserStore{
		user:     &entity.User{ID: "u1", Name: "Admin", Email: "admin@example.com"},
		password: "secret",
	}

	rec := loginWith(t, users, `{"email":"admin@example.com","password":"secret"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body loginResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Login successful", body.Message)
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "admin@example.com", body.User.Email)
}

func TestLoginSuccessWithBcryptPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	assert.NoError(t, err)

	users := &fakeUserStore{
		user:     &entity.User{ID: "u1", Email: "admin@example.com"},
		password: string(hash),
	}

	rec := loginWith(t, users, `{"email":"admin@example.com","password":"secret"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	users := &fakeUserStore{
		user:     &entity.User{ID: "u1", Email: "admin@example.com"},
		password: "secret",
	}

	rec := loginWith(t, users, `{"email":"admin@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password.")
}

func TestLoginUnknownUserSameErrorAsWrongPassword(t *testing.T) {
	rec := loginWith(t, &fakeUserStore{}, `{"email":"nobody@example.com","password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password.")
}

func TestLoginRequiresEmailAndPassword(t *testing.T) {
	rec := loginWith(t, &fakeUserStore{}, `{"email":"admin@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email and password are required.")
}
