package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authsvc "github.com/crossgate-id/crossgate/internal/auth"
	"github.com/crossgate-id/crossgate/internal/cache"
	"github.com/crossgate-id/crossgate/internal/domain"
	"github.com/crossgate-id/crossgate/internal/domain/repository"
	dto "github.com/crossgate-id/crossgate/internal/http/dto/auth"
	"github.com/crossgate-id/crossgate/internal/http/helpers"
	"github.com/crossgate-id/crossgate/internal/identity"
	"github.com/crossgate-id/crossgate/internal/jwt"
	"github.com/crossgate-id/crossgate/internal/revocation"
)

// fakeVerifier acepta exactamente alice@example.com / Secret123.
type fakeVerifier struct{}

var aliceMapping = domain.PlatformMapping{
	Platform: "epic", Instance: "acme", Role: "learner",
	AccountID: 12345, UserType: domain.UserTypeEpicLearner,
}

var alice = &domain.Identity{ID: 1, Username: "alice@example.com", FirstName: "Alice", LastName: "Doe"}

func (fakeVerifier) FindMatches(ctx context.Context, username, password string, ut domain.UserType, site domain.SiteType) (identity.Result, error) {
	if !strings.EqualFold(username, "alice@example.com") {
		return identity.Result{}, nil
	}
	res := identity.Result{Identity: alice}
	if password == "" || password == "Secret123" {
		res.Good = []identity.Match{{Mapping: aliceMapping}}
	} else {
		res.Bad = []identity.Match{{Mapping: aliceMapping}}
	}
	return res, nil
}

func (fakeVerifier) ResolveUniqueID(ctx context.Context, uid domain.UniqueID) (*domain.Identity, *domain.PlatformMapping, error) {
	if aliceMapping.UniqueID() != uid {
		return nil, nil, repository.ErrNotFound
	}
	return alice, &aliceMapping, nil
}

func newTestControllers() *Controllers {
	issuer := jwt.NewIssuer(jwt.Config{
		Own: jwt.TrustedPair{
			Issuer: "crossgate", Audience: "crossgate-clients",
			Secret: []byte("own-secret-own-secret-own-secret"),
		},
		Exchange: jwt.TrustedPair{
			Issuer: "partner-sso", Audience: "crossgate-exchange",
			Secret: []byte("exch-secret-exch-secret-exch-sec"),
		},
		AccessTTL:   15 * time.Minute,
		RefreshTTL:  8 * time.Hour,
		ExchangeTTL: 5 * time.Minute,
	}, nil)

	svc := authsvc.NewService(authsvc.Deps{
		Verifier:    fakeVerifier{},
		Issuer:      issuer,
		Revocations: revocation.NewStore(cache.NewMemory("")),
	})
	return NewControllers(Deps{Auth: svc, Issuer: issuer, SecureCookies: true})
}

func postJSON(handler http.HandlerFunc, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func fgpCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == helpers.FingerprintCookie {
			return c
		}
	}
	t.Fatal("falta la cookie de fingerprint")
	return nil
}

func TestLogin_OK(t *testing.T) {
	t.Parallel()
	c := newTestControllers()

	rec := postJSON(c.Login.Login, "/v1/auth/login",
		`{"username":"alice@example.com","password":"Secret123"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(900), resp.ExpiresIn)

	cookie := fgpCookie(t, rec)
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)
}

func TestLogin_UnauthorizedEsGenerico(t *testing.T) {
	t.Parallel()
	c := newTestControllers()

	// Password malo y usuario inexistente responden byte a byte lo mismo.
	badPass := postJSON(c.Login.Login, "/v1/auth/login",
		`{"username":"alice@example.com","password":"nope"}`)
	unknown := postJSON(c.Login.Login, "/v1/auth/login",
		`{"username":"nadie@example.com","password":"nope"}`)

	assert.Equal(t, http.StatusUnauthorized, badPass.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, badPass.Body.String(), unknown.Body.String())
}

func TestRefresh_SingleUse(t *testing.T) {
	t.Parallel()
	c := newTestControllers()

	login := postJSON(c.Login.Login, "/v1/auth/login",
		`{"username":"alice@example.com","password":"Secret123"}`)
	require.Equal(t, http.StatusOK, login.Code)
	var pair dto.TokenResponse
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &pair))
	cookie := fgpCookie(t, login)

	body := `{"refresh_token":"` + pair.RefreshToken + `"}`
	first := postJSON(c.Refresh.Refresh, "/v1/auth/refresh", body, cookie)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	var refreshed dto.TokenResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &refreshed))
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Empty(t, refreshed.RefreshToken, "el refresh no se re-emite")

	// Segundo uso del mismo refresh: consumido.
	second := postJSON(c.Refresh.Refresh, "/v1/auth/refresh", body, cookie)
	assert.Equal(t, http.StatusUnauthorized, second.Code)
}

func TestAuthorize_FingerprintYDenylist(t *testing.T) {
	t.Parallel()
	c := newTestControllers()

	login := postJSON(c.Login.Login, "/v1/auth/login",
		`{"username":"alice@example.com","password":"Secret123"}`)
	require.Equal(t, http.StatusOK, login.Code)
	var pair dto.TokenResponse
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &pair))
	cookie := fgpCookie(t, login)

	authorize := func(token string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/auth/authorize", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		for _, ck := range cookies {
			req.AddCookie(ck)
		}
		rec := httptest.NewRecorder()
		c.Authorize.Authorize(rec, req)
		return rec
	}

	// Con cookie correcta pasa.
	rec := authorize(pair.AccessToken, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp dto.AuthorizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "epic:acme:learner:12345", resp.UniqueID)
	assert.Equal(t, []string{"learner"}, resp.Roles)

	// Sin cookie o con seed ajeno: 401.
	assert.Equal(t, http.StatusUnauthorized, authorize(pair.AccessToken).Code)
	wrong := &http.Cookie{Name: cookie.Name, Value: "otro-seed"}
	assert.Equal(t, http.StatusUnauthorized, authorize(pair.AccessToken, wrong).Code)

	// Logout deja el jti en la denylist: el mismo token deja de autorizar.
	logoutReq := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	logoutReq.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	logoutRec := httptest.NewRecorder()
	c.Logout.Logout(logoutRec, logoutReq)
	require.Equal(t, http.StatusNoContent, logoutRec.Code)

	assert.Equal(t, http.StatusUnauthorized, authorize(pair.AccessToken, cookie).Code)
}

func TestExchange_TokenDelEmisorExterno(t *testing.T) {
	t.Parallel()
	c := newTestControllers()

	// Un token firmado por el emisor de exchange habilita un par propio. El
	// claim username permite re-resolver la identidad sin password.
	now := time.Now()
	tok, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		"iss":       "partner-sso",
		"aud":       "crossgate-exchange",
		"sub":       "Alice Doe",
		"jti":       "exch-1",
		"iat":       now.Unix(),
		"exp":       now.Add(5 * time.Minute).Unix(),
		"username":  "alice@example.com",
		"user_type": int(domain.UserTypeEpicLearner),
		"rol":       []string{"learner"},
	}).SignedString([]byte("exch-secret-exch-secret-exch-sec"))
	require.NoError(t, err)

	rec := postJSON(c.Exchange.Exchange, "/v1/auth/exchange", `{"token":"`+tok+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var pair dto.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	// Un token propio no es canjeable.
	own := postJSON(c.Login.Login, "/v1/auth/login",
		`{"username":"alice@example.com","password":"Secret123"}`)
	var ownPair dto.TokenResponse
	require.NoError(t, json.Unmarshal(own.Body.Bytes(), &ownPair))
	rejected := postJSON(c.Exchange.Exchange, "/v1/auth/exchange", `{"token":"`+ownPair.AccessToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rejected.Code)
}
