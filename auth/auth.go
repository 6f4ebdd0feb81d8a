// Package auth provides the header-injection providers the HTTPS backend
// consults when an endpoint names one in its config.Auth block.
package auth

import "context"

// Provider produces the headers to merge into an outbound backend request.
type Provider interface {
	GetHeaders(ctx context.Context) (map[string]string, error)
}
