package federation

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/crossgate-id/crossgate/internal/domain"
	"github.com/crossgate-id/crossgate/internal/observability/logger"
)

// tokenResponse es el body JSON del token endpoint del partner.
type tokenResponse struct {
	IDToken string `json:"id_token"`
}

// ExchangeCodeForIdentity canjea un authorization code por el id_token del
// partner y extrae la identidad federada. El id_token se parsea sin verificar
// firma: la conexión con el partner es el límite de confianza.
func (s *Service) ExchangeCodeForIdentity(ctx context.Context, fed *domain.Federation, code string) (string, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("federation"),
		logger.Op("ExchangeCodeForIdentity"),
		logger.Federation(fed.Name),
	)

	// Paso 1: descifrar el client secret provisionado.
	secret, err := s.deps.Secrets.DecryptSecret(fed.EncryptedSecret)
	if err != nil {
		return "", fmt.Errorf("federation: client secret unusable: %w", err)
	}

	// Paso 2: armar el request según el método de autenticación configurado.
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", fed.RedirectURL)

	var basicAuth string
	switch fed.EffectiveAuthMethod() {
	case domain.AuthMethodClientSecretBasic:
		// id y secret viajan solo en el header; nada de secret en el body.
		basicAuth = "Basic " + base64.StdEncoding.EncodeToString([]byte(fed.ClientID+":"+secret))
	default:
		form.Set("client_id", fed.ClientID)
		form.Set("client_secret", secret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fed.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("federation: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if basicAuth != "" {
		req.Header.Set("Authorization", basicAuth)
	}

	// Paso 3: POST al token endpoint.
	resp, err := s.deps.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("federation: token endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		log.Warn("token endpoint rejected the code", logger.Status(resp.StatusCode))
		return "", fmt.Errorf("%w: token endpoint returned %d", ErrProtocol, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil || tr.IDToken == "" {
		return "", fmt.Errorf("%w: response has no id_token", ErrProtocol)
	}

	// Paso 4: extraer la identidad del id_token.
	ident, err := identityFromIDToken(tr.IDToken)
	if err != nil {
		return "", err
	}
	log.Info("federated identity extracted")
	return ident, nil
}

// identityFromIDToken parsea el id_token sin verificar firma y aplica la
// prioridad de claims: email, preferred_username, name.
func identityFromIDToken(idToken string) (string, error) {
	claims := jwtv5.MapClaims{}
	parser := jwtv5.NewParser()
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return "", fmt.Errorf("%w: id_token unparseable", ErrProtocol)
	}

	for _, claim := range []string{"email", "preferred_username", "name"} {
		if v, ok := claims[claim].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), nil
		}
	}
	return "", fmt.Errorf("%w: id_token carries no usable identity claim", ErrProtocol)
}
