// Package broker es el cliente HTTP del identity broker externo (estilo
// Keycloak): chequeo y alta de cuentas federadas, emisión del par de tokens
// final y logout. El broker es caja negra; acá solo vive el protocolo.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/crossgate-id/crossgate/internal/observability/logger"
)

// grantTokenExchange es el grant con el que el broker re-emite tokens para
// una identidad federada ya provisionada.
const grantTokenExchange = "urn:ietf:params:oauth:grant-type:token-exchange"

// Config del cliente.
type Config struct {
	BaseURL string
	Realm   string

	// Credenciales de la service account con la que el cliente opera.
	ClientID     string
	ClientSecret string

	Timeout time.Duration
}

// TokenPair es el par emitido por el broker, devuelto tal cual al caller.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// User es la representación mínima de una cuenta en el broker.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Client habla con el broker. El token de servicio se cachea y se renueva
// bajo singleflight: una sola renovación concurrente bajo carga.
type Client struct {
	cfg  Config
	http *http.Client
	tok  *serviceTokenCache
}

// New crea el cliente. Timeout cero usa 15s.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
	c.tok = newServiceTokenCache(c.fetchServiceToken)
	return c
}

func (c *Client) tokenURL() string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Realm)
}

func (c *Client) adminURL(path string) string {
	return fmt.Sprintf("%s/admin/realms/%s%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Realm, path)
}

// UserExists busca la cuenta por username exacto. Retorna el id si existe.
func (c *Client) UserExists(ctx context.Context, identity string) (bool, string, error) {
	q := url.Values{"username": {identity}, "exact": {"true"}}
	body, err := c.doAuthorized(ctx, http.MethodGet, c.adminURL("/users?"+q.Encode()), nil, "")
	if err != nil {
		return false, "", err
	}
	var users []User
	if err := json.Unmarshal(body, &users); err != nil {
		return false, "", fmt.Errorf("broker: users response unparseable: %w", err)
	}
	for _, u := range users {
		if strings.EqualFold(u.Username, identity) {
			return true, u.ID, nil
		}
	}
	return false, "", nil
}

// CreateUser provisiona una cuenta federada habilitada para la identidad.
func (c *Client) CreateUser(ctx context.Context, identity string) error {
	payload, _ := json.Marshal(map[string]any{
		"username": identity,
		"email":    identity,
		"enabled":  true,
	})
	_, err := c.doAuthorized(ctx, http.MethodPost, c.adminURL("/users"), payload, "application/json")
	return err
}

// MintTokenPair pide al broker el par final para la identidad vía
// token-exchange.
func (c *Client) MintTokenPair(ctx context.Context, identity string) (TokenPair, error) {
	form := url.Values{}
	form.Set("grant_type", grantTokenExchange)
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("requested_subject", identity)

	body, err := c.doAuthorized(ctx, http.MethodPost, c.tokenURL(),
		[]byte(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return TokenPair{}, err
	}
	var pair TokenPair
	if err := json.Unmarshal(body, &pair); err != nil || pair.AccessToken == "" {
		return TokenPair{}, fmt.Errorf("broker: token response unparseable")
	}
	return pair, nil
}

// Logout cierra las sesiones del usuario en el broker.
func (c *Client) Logout(ctx context.Context, brokerUserID string) error {
	_, err := c.doAuthorized(ctx, http.MethodPost, c.adminURL("/users/"+brokerUserID+"/logout"), nil, "")
	return err
}

// HandoffIdentity asegura que la cuenta exista y emite su par de tokens.
func (c *Client) HandoffIdentity(ctx context.Context, identity string) (TokenPair, error) {
	exists, _, err := c.UserExists(ctx, identity)
	if err != nil {
		return TokenPair{}, err
	}
	if !exists {
		if err := c.CreateUser(ctx, identity); err != nil {
			return TokenPair{}, err
		}
		logger.From(ctx).Info("federated account provisioned in broker",
			logger.Component("broker"),
		)
	}
	return c.MintTokenPair(ctx, identity)
}

// doAuthorized ejecuta un request con el token de servicio. Ante un 401
// fuerza una renovación (una sola concurrente) y reintenta una vez.
func (c *Client) doAuthorized(ctx context.Context, method, rawurl string, body []byte, contentType string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		tok, err := c.tok.get(ctx, attempt > 0)
		if err != nil {
			return nil, err
		}

		var rd io.Reader
		if body != nil {
			rd = strings.NewReader(string(body))
		}
		req, err := http.NewRequestWithContext(ctx, method, rawurl, rd)
		if err != nil {
			return nil, fmt.Errorf("broker: build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("broker: unreachable: %w", err)
		}
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			// Token de servicio vencido o revocado: renovar y reintentar.
			continue
		}
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("broker: %s %s returned %d", method, rawurl, resp.StatusCode)
		}
		return respBody, nil
	}
}

// fetchServiceToken obtiene un token de servicio fresco (client_credentials).
func (c *Client) fetchServiceToken(ctx context.Context) (string, time.Time, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("broker: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("broker: token endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("broker: service token request returned %d", resp.StatusCode)
	}

	var tr TokenPair
	if err := json.Unmarshal(body, &tr); err != nil || tr.AccessToken == "" {
		return "", time.Time{}, fmt.Errorf("broker: service token response unparseable")
	}

	exp := time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	if tr.ExpiresIn <= 0 {
		exp = time.Now().Add(time.Minute)
	}
	return tr.AccessToken, exp, nil
}
