package utils

import (
	"testing"

	"github.com/mealbridge/foodshare-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:    "test-secret",
			ExpiresIn: 3600,
		},
	}
}

func TestJWTRoundTrip(t *testing.T) {
	cfg := testConfig()

	token, err := GenerateJWT("64f0c2a1b3d4e5f678901234", "ngo@x.org", "ngo", cfg)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token, cfg)
	require.NoError(t, err)
	assert.Equal(t, "64f0c2a1b3d4e5f678901234", claims["sub"])
	assert.Equal(t, "ngo@x.org", claims["email"])
	assert.Equal(t, "ngo", claims["role"])
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	token, err := GenerateJWT("id", "a@x.org", "donor", testConfig())
	require.NoError(t, err)

	other := testConfig()
	other.JWT.Secret = "different-secret"
	_, err = ValidateJWT(token, other)
	assert.Error(t, err)
}

func TestValidateJWT_Expired(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.ExpiresIn = -60

	token, err := GenerateJWT("id", "a@x.org", "donor", cfg)
	require.NoError(t, err)

	_, err = ValidateJWT(token, cfg)
	assert.Error(t, err)
}

func TestValidateJWT_Garbage(t *testing.T) {
	_, err := ValidateJWT("not.a.token", testConfig())
	assert.Error(t, err)
}
