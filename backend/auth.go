package backend

import (
	"os"
	"strings"

	"github.com/idum-proxy/idum-proxy/auth"
	"github.com/idum-proxy/idum-proxy/config"
)

// AuthFromConfig builds the Auth provider an endpoint's auth block names.
//
// The auth block only carries {type, header_name, required}; a checked-in
// JSON config is not where secrets belong. Credentials are instead read
// from environment variables named after the header, e.g.
// `auth.header_name="X-Api-Key"` with `type="basic"` reads
// IDUM_AUTH_X_API_KEY_USER/_PASS.
func AuthFromConfig(cfg *config.Auth) auth.Provider {
	if cfg == nil || cfg.Type == "" {
		return nil
	}
	envKey := strings.ToUpper(strings.NewReplacer("-", "_", " ", "_").Replace(cfg.HeaderName))
	if envKey == "" {
		envKey = "DEFAULT"
	}
	prefix := "IDUM_AUTH_" + envKey

	switch strings.ToLower(cfg.Type) {
	case "basic":
		user, pass := os.Getenv(prefix+"_USER"), os.Getenv(prefix+"_PASS")
		if user == "" && pass == "" {
			return nil
		}
		return &auth.BasicAuth{Username: user, Password: pass}
	case "jwt":
		secret := os.Getenv(prefix + "_SECRET")
		if secret == "" {
			return nil
		}
		return &auth.JWTAuth{SecretKey: secret}
	default:
		return nil
	}
}
