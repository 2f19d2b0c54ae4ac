package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := New("secret", time.Hour)

	token, err := svc.GenerateToken("u1", "admin@example.com")
	assert.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := New("secret-a", time.Hour).GenerateToken("u1", "a@b.c")
	assert.NoError(t, err)

	_, err = New("secret-b", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	token, err := New("secret", -time.Minute).GenerateToken("u1", "a@b.c")
	assert.NoError(t, err)

	_, err = New("secret", -time.Minute).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := New("secret", time.Hour).ValidateToken("not-a-token")
	assert.Error(t, err)
}
