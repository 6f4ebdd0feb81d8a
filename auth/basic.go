package auth

import (
	"context"
	"encoding/base64"
	"fmt"
)

// BasicAuth implements RFC 7617 HTTP Basic Authentication.
type BasicAuth struct {
	Username string
	Password string
}

func (b *BasicAuth) GetHeaders(ctx context.Context) (map[string]string, error) {
	credentials := b.Username + ":" + b.Password
	encoded := base64.StdEncoding.EncodeToString([]byte(credentials))
	return map[string]string{
		"Authorization": fmt.Sprintf("Basic %s", encoded),
	}, nil
}
