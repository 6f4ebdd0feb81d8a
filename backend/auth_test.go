package backend

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/idum-proxy/idum-proxy/auth"
	"github.com/idum-proxy/idum-proxy/config"
)

func TestAuthFromConfig_Basic(t *testing.T) {
	t.Setenv("IDUM_AUTH_X_API_KEY_USER", "svc")
	t.Setenv("IDUM_AUTH_X_API_KEY_PASS", "secret")

	provider := AuthFromConfig(&config.Auth{Type: "basic", HeaderName: "X-Api-Key"})
	assert.IsType(t, &auth.BasicAuth{}, provider)
}

func TestAuthFromConfig_JWT(t *testing.T) {
	t.Setenv("IDUM_AUTH_X_TOKEN_SECRET", "shh")

	provider := AuthFromConfig(&config.Auth{Type: "jwt", HeaderName: "X-Token"})
	assert.IsType(t, &auth.JWTAuth{}, provider)
}

func TestAuthFromConfig_NilWhenNoCredentials(t *testing.T) {
	os.Unsetenv("IDUM_AUTH_X_MISSING_USER")
	os.Unsetenv("IDUM_AUTH_X_MISSING_PASS")

	provider := AuthFromConfig(&config.Auth{Type: "basic", HeaderName: "X-Missing"})
	assert.Nil(t, provider)
}

func TestAuthFromConfig_NilWhenNoAuthConfigured(t *testing.T) {
	assert.Nil(t, AuthFromConfig(nil))
}
