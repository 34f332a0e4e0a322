package broker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBroker simula el broker: token endpoint + admin de usuarios.
type fakeBroker struct {
	mu          sync.Mutex
	users       map[string]string // username -> id
	tokenIssued int32
	serviceTok  string
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{users: map[string]string{}, serviceTok: "svc-token-1"}
}

func (f *fakeBroker) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/realms/test/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		switch r.PostForm.Get("grant_type") {
		case "client_credentials":
			atomic.AddInt32(&f.tokenIssued, 1)
			json.NewEncoder(w).Encode(TokenPair{AccessToken: f.serviceTok, ExpiresIn: 300})
		case "urn:ietf:params:oauth:grant-type:token-exchange":
			if !f.authorized(r) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			subj := r.PostForm.Get("requested_subject")
			json.NewEncoder(w).Encode(TokenPair{
				AccessToken:  "access-for-" + subj,
				RefreshToken: "refresh-for-" + subj,
				ExpiresIn:    300,
			})
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	mux.HandleFunc("/admin/realms/test/users", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			username := r.URL.Query().Get("username")
			var out []User
			if id, ok := f.users[username]; ok {
				out = append(out, User{ID: id, Username: username})
			}
			json.NewEncoder(w).Encode(out)
		case http.MethodPost:
			var u map[string]any
			_ = json.NewDecoder(r.Body).Decode(&u)
			name, _ := u["username"].(string)
			f.users[name] = "id-" + name
			w.WriteHeader(http.StatusCreated)
		}
	})

	return mux
}

func (f *fakeBroker) authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+f.serviceTok
}

func newTestClient(t *testing.T) (*Client, *fakeBroker) {
	t.Helper()
	fb := newFakeBroker()
	srv := httptest.NewServer(fb.handler())
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL:      srv.URL,
		Realm:        "test",
		ClientID:     "crossgate",
		ClientSecret: "svc-secret",
	}), fb
}

func TestHandoffIdentity_ProvisionaYEmite(t *testing.T) {
	t.Parallel()
	c, fb := newTestClient(t)
	ctx := context.Background()

	// La cuenta no existe: handoff la crea y emite el par.
	pair, err := c.HandoffIdentity(ctx, "alice@acme.com")
	require.NoError(t, err)
	assert.Equal(t, "access-for-alice@acme.com", pair.AccessToken)
	assert.Equal(t, "refresh-for-alice@acme.com", pair.RefreshToken)

	fb.mu.Lock()
	_, created := fb.users["alice@acme.com"]
	fb.mu.Unlock()
	assert.True(t, created, "la cuenta debió provisionarse")

	// Segundo handoff: la cuenta ya existe, no se duplica.
	exists, id, err := c.UserExists(ctx, "alice@acme.com")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "id-alice@acme.com", id)
}

func TestServiceToken_UnaSolaRenovacionConcurrente(t *testing.T) {
	t.Parallel()
	c, fb := newTestClient(t)
	ctx := context.Background()

	// N llamadas concurrentes con cache frío: el token endpoint debe ver
	// una única petición client_credentials.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := c.UserExists(ctx, "nadie")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&fb.tokenIssued),
		"la renovación del token de servicio debe ser única bajo carga")
}

func TestServiceToken_RenuevaTras401(t *testing.T) {
	t.Parallel()
	c, fb := newTestClient(t)
	ctx := context.Background()

	// Primer uso cachea el token vigente.
	_, _, err := c.UserExists(ctx, "x")
	require.NoError(t, err)

	// El broker rota el token: el cacheado empieza a dar 401 y el cliente
	// debe renovarlo y reintentar la llamada una vez.
	fb.mu.Lock()
	fb.serviceTok = "svc-token-2"
	fb.mu.Unlock()

	exists, _, err := c.UserExists(ctx, "x")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&fb.tokenIssued), int32(2))
}

func TestMintTokenPair_RespuestaInvalida(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("grant_type") == "client_credentials" {
			json.NewEncoder(w).Encode(TokenPair{AccessToken: "svc", ExpiresIn: 300})
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Realm: "test", ClientID: "x", ClientSecret: "y", Timeout: 5 * time.Second})
	_, err := c.MintTokenPair(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unparseable"))
}
