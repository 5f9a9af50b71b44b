package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"vet-appointments/internal/platform/httpclient"
	"vet-appointments/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("identity verifier not configured")
	ErrUnauthorized  = errors.New("identity unauthorized")
	ErrUpstream      = errors.New("identity upstream error")
)

// Config del verificador contra el servicio de identidad.
// BaseURL y APIKey vienen de env en quien lo instancie (main/router).
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Verifier implementa auth.AuthVerifier delegando en el servicio de
// identidad de la clínica. Login/sesiones viven allá; acá solo se
// verifica el token y se leen los claims (user + rol).
type Verifier struct {
	apiKey string
	client *httpclient.Client
}

func NewVerifier(cfg Config) (*Verifier, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client, err := httpclient.NewWithBaseURL(cfg.BaseURL, timeout)
	if err != nil {
		return nil, err
	}

	return &Verifier{
		apiKey: strings.TrimSpace(cfg.APIKey),
		client: client,
	}, nil
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil || v.client.BaseURL == "" {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	headers := map[string]string{
		"Authorization": "Bearer " + token,
	}
	if v.apiKey != "" {
		headers["X-Api-Key"] = v.apiKey
	}

	var out struct {
		UserID string `json:"user_id"`
		Email  string `json:"email"`
		Role   string `json:"role"`
	}

	err := v.client.DoJSON(ctx, http.MethodPost, "/v1/tokens/verify",
		headers, map[string]string{"token": token}, &out)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			if httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden {
				return auth.Claims{}, ErrUnauthorized
			}
			return auth.Claims{}, fmt.Errorf("%w: status=%d", ErrUpstream, httpErr.StatusCode)
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	out.UserID = strings.TrimSpace(out.UserID)
	if out.UserID == "" {
		return auth.Claims{}, errors.New("identity response missing user_id")
	}

	role := auth.Role(strings.ToLower(strings.TrimSpace(out.Role)))
	switch role {
	case auth.RoleOwner, auth.RoleVet, auth.RoleAdmin:
		// ok
	default:
		role = auth.RoleOwner
	}

	return auth.Claims{
		UserID: out.UserID,
		Email:  strings.TrimSpace(out.Email),
		Role:   role,
	}, nil
}
