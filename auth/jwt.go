package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// JWTAuth signs and caches a bearer token, regenerating it once it's
// within 30 seconds of expiry.
type JWTAuth struct {
	SecretKey          string
	Algorithm          string // default HS256
	TokenExpireMinutes int    // default 30
	AdditionalClaims   map[string]interface{}

	mu          sync.Mutex
	cachedToken string
	tokenExpiry time.Time
}

const jwtExpiryBuffer = 30 * time.Second

func (j *JWTAuth) GetHeaders(ctx context.Context) (map[string]string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.tokenValidLocked() {
		token, err := j.generateTokenLocked()
		if err != nil {
			return nil, fmt.Errorf("auth: generating JWT: %w", err)
		}
		j.cachedToken = token
	}

	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", j.cachedToken),
	}, nil
}

func (j *JWTAuth) tokenValidLocked() bool {
	if j.cachedToken == "" || j.tokenExpiry.IsZero() {
		return false
	}
	return time.Now().Before(j.tokenExpiry.Add(-jwtExpiryBuffer))
}

func (j *JWTAuth) generateTokenLocked() (string, error) {
	expireMinutes := j.TokenExpireMinutes
	if expireMinutes == 0 {
		expireMinutes = 30
	}
	now := time.Now()
	expiry := now.Add(time.Duration(expireMinutes) * time.Minute)
	j.tokenExpiry = expiry

	claims := jwt.MapClaims{
		"exp": expiry.Unix(),
		"iat": now.Unix(),
	}
	for k, v := range j.AdditionalClaims {
		claims[k] = v
	}

	algorithm := j.Algorithm
	if algorithm == "" {
		algorithm = "HS256"
	}

	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return "", fmt.Errorf("unsupported JWT algorithm %q", algorithm)
	}

	token := jwt.NewWithClaims(method, claims)
	return token.SignedString([]byte(j.SecretKey))
}
