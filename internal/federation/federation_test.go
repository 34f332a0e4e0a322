package federation

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossgate-id/crossgate/internal/cache"
	"github.com/crossgate-id/crossgate/internal/domain"
	"github.com/crossgate-id/crossgate/internal/domain/repository"
	"github.com/crossgate-id/crossgate/internal/security/rsacrypt"
	"github.com/crossgate-id/crossgate/internal/state"
)

// fakeFedRepo sirve federaciones desde memoria.
type fakeFedRepo struct {
	feds []domain.Federation
}

func (f *fakeFedRepo) GetByName(ctx context.Context, name string) (*domain.Federation, error) {
	for i := range f.feds {
		if f.feds[i].Name == name {
			return &f.feds[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeFedRepo) List(ctx context.Context) ([]domain.Federation, error) {
	return f.feds, nil
}

func testKeyring(t *testing.T) *rsacrypt.Keyring {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	k, err := rsacrypt.New(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(priv),
	}))
	require.NoError(t, err)
	return k
}

func signIDToken(t *testing.T, claims jwtv5.MapClaims) string {
	t.Helper()
	s, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString([]byte("partner-key"))
	require.NoError(t, err)
	return s
}

func newTestService(t *testing.T, repo *fakeFedRepo) (*Service, *rsacrypt.Keyring) {
	t.Helper()
	kr := testKeyring(t)
	svc := NewService(Deps{
		Federations: repo,
		States:      state.NewStore(cache.NewMemory("")),
		Secrets:     kr,
	})
	return svc, kr
}

func TestBuildAuthorizationURL(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, &fakeFedRepo{})

	fed := &domain.Federation{
		Name:        "acme",
		ClientID:    "crossgate-client",
		AuthInitURL: "https://sso.acme.com/auth?tenant=x",
		RedirectURL: "https://id.example.com/v1/federation/acme/callback",
		IdpHint:     "acme-saml",
	}

	raw, err := svc.BuildAuthorizationURL(fed, "state-123")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "crossgate-client", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "openid", q.Get("scope"), "sin scope configurado usa el default OIDC")
	assert.Equal(t, fed.RedirectURL, q.Get("redirect_uri"))
	assert.Equal(t, "acme-saml", q.Get("kc_idp_hint"))
	assert.Equal(t, "x", q.Get("tenant"), "la query original del partner se preserva")

	// Sin IdpHint el parámetro no aparece.
	fed.IdpHint = ""
	raw, err = svc.BuildAuthorizationURL(fed, "s")
	require.NoError(t, err)
	u, _ = url.Parse(raw)
	assert.False(t, u.Query().Has("kc_idp_hint"))
}

func TestGetByEmail_Prioridades(t *testing.T) {
	t.Parallel()
	repo := &fakeFedRepo{feds: []domain.Federation{
		{Name: "acme", EmailDomains: []string{"acme.com"}},
		{Name: "globex", EmailDomains: []string{"globex.com"}, TestUsers: []string{"piloto@acme.com"}},
	}}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	// La allowlist de usuarios de prueba gana sobre el dominio.
	fed, err := svc.GetByEmail(ctx, "piloto@acme.com")
	require.NoError(t, err)
	assert.Equal(t, "globex", fed.Name)

	// Dominio normal.
	fed, err = svc.GetByEmail(ctx, "alice@acme.com")
	require.NoError(t, err)
	assert.Equal(t, "acme", fed.Name)

	// Sin match.
	_, err = svc.GetByEmail(ctx, "bob@initech.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestExchangeCode_ClientSecretPost(t *testing.T) {
	t.Parallel()
	svc, kr := newTestService(t, &fakeFedRepo{})
	encSecret, err := kr.EncryptSecret("super-secreto")
	require.NoError(t, err)

	idToken := signIDToken(t, jwtv5.MapClaims{
		"email": "alice@acme.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "crossgate-client", r.PostForm.Get("client_id"))
		assert.Equal(t, "super-secreto", r.PostForm.Get("client_secret"))
		assert.Empty(t, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id_token":"` + idToken + `"}`))
	}))
	defer srv.Close()

	fed := &domain.Federation{
		Name: "acme", ClientID: "crossgate-client",
		EncryptedSecret: encSecret,
		TokenURL:        srv.URL,
		RedirectURL:     "https://id.example.com/cb",
	}

	ident, err := svc.ExchangeCodeForIdentity(context.Background(), fed, "the-code")
	require.NoError(t, err)
	assert.Equal(t, "alice@acme.com", ident)
}

func TestExchangeCode_ClientSecretBasic(t *testing.T) {
	t.Parallel()
	svc, kr := newTestService(t, &fakeFedRepo{})
	encSecret, err := kr.EncryptSecret("super-secreto")
	require.NoError(t, err)

	// Sin email: cae a preferred_username.
	idToken := signIDToken(t, jwtv5.MapClaims{"preferred_username": "alice.doe"})

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("crossgate-client:super-secreto"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, wantAuth, r.Header.Get("Authorization"))
		// El secret no viaja en el body con client_secret_basic.
		assert.Empty(t, r.PostForm.Get("client_secret"))
		assert.Empty(t, r.PostForm.Get("client_id"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id_token":"` + idToken + `"}`))
	}))
	defer srv.Close()

	fed := &domain.Federation{
		Name: "acme", ClientID: "crossgate-client",
		EncryptedSecret: encSecret,
		TokenURL:        srv.URL,
		AuthMethod:      domain.AuthMethodClientSecretBasic,
	}

	ident, err := svc.ExchangeCodeForIdentity(context.Background(), fed, "c")
	require.NoError(t, err)
	assert.Equal(t, "alice.doe", ident)
}

func TestExchangeCode_ErroresDeProtocolo(t *testing.T) {
	t.Parallel()
	svc, kr := newTestService(t, &fakeFedRepo{})
	encSecret, err := kr.EncryptSecret("s")
	require.NoError(t, err)

	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"partner responde 400", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}},
		{"respuesta sin id_token", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"access_token":"x"}`))
		}},
		{"id_token sin claims de identidad", func(w http.ResponseWriter, r *http.Request) {
			tok := signIDToken(t, jwtv5.MapClaims{"sub": "abc"})
			w.Write([]byte(`{"id_token":"` + tok + `"}`))
		}},
		{"id_token corrupto", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id_token":"no.es.jwt"}`))
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(c.handler)
			defer srv.Close()
			fed := &domain.Federation{
				Name: "acme", ClientID: "id", EncryptedSecret: encSecret, TokenURL: srv.URL,
			}
			_, err := svc.ExchangeCodeForIdentity(context.Background(), fed, "c")
			assert.ErrorIs(t, err, ErrProtocol)
		})
	}
}

func TestIdentityFromIDToken_Prioridad(t *testing.T) {
	t.Parallel()

	// email gana sobre preferred_username y name.
	tok := signIDToken(t, jwtv5.MapClaims{
		"email":              "a@b.com",
		"preferred_username": "a",
		"name":               "A B",
	})
	ident, err := identityFromIDToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", ident)

	// name es el último recurso.
	tok = signIDToken(t, jwtv5.MapClaims{"name": "A B"})
	ident, err = identityFromIDToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "A B", ident)
}
