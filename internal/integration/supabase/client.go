// Package supabase talks to the auth provider: token verification for every
// request and the privileged admin endpoints behind the relays.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MalavS298/basiscpk/internal/apperr"
	"github.com/MalavS298/basiscpk/internal/config"
	"github.com/MalavS298/basiscpk/internal/domain/user"
	"github.com/golang-jwt/jwt/v5"
)

const (
	serviceName  = "auth"
	maxBodyBytes = 64 << 10
)

var (
	ErrNotConfigured = errors.New("auth provider not configured")
	ErrInvalidToken  = fmt.Errorf("%w: invalid token", apperr.ErrUnauthenticated)
)

type Client struct {
	baseURL        string
	publishableKey string
	serviceKey     string
	jwtSecret      []byte
	http           *http.Client
}

func NewClient(cfg config.SupabaseConfig) *Client {
	timeout := cfg.AuthTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	var secret []byte
	if cfg.JWTSecret != "" {
		secret = []byte(cfg.JWTSecret)
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.URL, "/"),
		publishableKey: cfg.PublishableKey,
		serviceKey:     cfg.ServiceRoleKey,
		jwtSecret:      secret,
		http:           &http.Client{Timeout: timeout},
	}
}

type userResponse struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	Sub          string                 `json:"sub"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	User         *struct {
		ID           string                 `json:"id"`
		Email        string                 `json:"email"`
		UserMetadata map[string]interface{} `json:"user_metadata"`
	} `json:"user"`
}

func (p userResponse) identity() user.Identity {
	identity := user.Identity{
		ID:       firstNonEmpty(p.ID, p.Sub),
		Email:    p.Email,
		FullName: displayName(p.UserMetadata),
	}
	if p.User != nil {
		identity.ID = firstNonEmpty(identity.ID, p.User.ID)
		identity.Email = firstNonEmpty(identity.Email, p.User.Email)
		identity.FullName = firstNonEmpty(identity.FullName, displayName(p.User.UserMetadata))
	}
	return identity
}

type accessClaims struct {
	jwt.RegisteredClaims
	Email        string                 `json:"email"`
	Role         string                 `json:"role"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

// VerifyToken resolves a bearer token to the identity it was issued for. With a
// JWT secret configured the signature is checked locally, otherwise the
// provider is asked.
func (c *Client) VerifyToken(ctx context.Context, token string) (user.Identity, error) {
	if token == "" {
		return user.Identity{}, ErrInvalidToken
	}
	if len(c.jwtSecret) > 0 {
		return c.verifyLocally(token)
	}
	return c.verifyRemotely(ctx, token)
}

func (c *Client) verifyLocally(raw string) (user.Identity, error) {
	token, err := jwt.ParseWithClaims(raw, &accessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.jwtSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return user.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return user.Identity{}, ErrInvalidToken
	}
	// Tokens issued to the anon or service key carry no user.
	if claims.Role != "" && claims.Role != "authenticated" {
		return user.Identity{}, ErrInvalidToken
	}
	return user.Identity{
		ID:       claims.Subject,
		Email:    claims.Email,
		FullName: displayName(claims.UserMetadata),
	}, nil
}

func (c *Client) verifyRemotely(ctx context.Context, token string) (user.Identity, error) {
	if c.baseURL == "" || c.publishableKey == "" {
		return user.Identity{}, fmt.Errorf("%w: %w", apperr.ErrInternal, ErrNotConfigured)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return user.Identity{}, fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.publishableKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return user.Identity{}, &apperr.UpstreamError{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return user.Identity{}, ErrInvalidToken
	}

	var payload userResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return user.Identity{}, ErrInvalidToken
	}
	identity := payload.identity()
	if identity.ID == "" {
		return user.Identity{}, ErrInvalidToken
	}
	return identity, nil
}

// SignUp registers a new identity through the public signup endpoint.
func (c *Client) SignUp(ctx context.Context, input user.CreateUserInput) (*user.Identity, error) {
	if c.baseURL == "" || c.publishableKey == "" {
		return nil, &apperr.UpstreamError{Service: serviceName, Err: ErrNotConfigured}
	}

	body, err := json.Marshal(map[string]interface{}{
		"email":    input.Email,
		"password": input.Password,
		"data":     map[string]string{"full_name": input.FullName},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/signup", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.publishableKey)

	status, respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return nil, apperr.Validation("%s", providerMessage(respBody))
	case status < 200 || status > 299:
		return nil, &apperr.UpstreamError{Service: serviceName, Status: status, Body: string(respBody)}
	}

	var payload userResponse
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, &apperr.UpstreamError{Service: serviceName, Status: status, Body: string(respBody), Err: err}
	}
	identity := payload.identity()
	if identity.ID == "" {
		return nil, &apperr.UpstreamError{Service: serviceName, Status: status, Body: "signup response carried no user id"}
	}
	return &identity, nil
}

// DeleteIdentity removes a user with the service-role key.
func (c *Client) DeleteIdentity(ctx context.Context, userID string) error {
	if c.baseURL == "" || c.serviceKey == "" {
		return &apperr.UpstreamError{Service: serviceName, Err: ErrNotConfigured}
	}

	endpoint := c.baseURL + "/auth/v1/admin/users/" + url.PathEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)

	status, body, err := c.do(req)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return &apperr.UpstreamError{Service: serviceName, Status: status, Body: providerMessage(body)}
	}
	return nil
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &apperr.UpstreamError{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, &apperr.UpstreamError{Service: serviceName, Status: resp.StatusCode, Err: err}
	}
	return resp.StatusCode, body, nil
}

// providerMessage picks the human readable part of an auth error body.
func providerMessage(body []byte) string {
	var payload struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := firstNonEmpty(payload.Msg, payload.Message, payload.ErrorDescription, payload.Error); msg != "" {
			return msg
		}
	}
	return strings.TrimSpace(string(body))
}

func displayName(metadata map[string]interface{}) string {
	return firstNonEmpty(stringFromMap(metadata, "full_name"), stringFromMap(metadata, "name"))
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func stringFromMap(values map[string]interface{}, key string) string {
	if values == nil {
		return ""
	}
	parsed, _ := values[key].(string)
	return parsed
}
