package broker

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// serviceTokenCache guarda el token de servicio compartido. La renovación va
// por singleflight: bajo carga, todos los requests que encuentran el token
// vencido esperan una única llamada al broker en vez de dispararla cada uno.
type serviceTokenCache struct {
	fetch func(ctx context.Context) (string, time.Time, error)

	mu    sync.Mutex
	token string
	exp   time.Time

	sf singleflight.Group
}

// expirySlack adelanta el vencimiento para no usar tokens al borde.
const expirySlack = 10 * time.Second

func newServiceTokenCache(fetch func(ctx context.Context) (string, time.Time, error)) *serviceTokenCache {
	return &serviceTokenCache{fetch: fetch}
}

// get retorna el token cacheado si sigue vigente, o renueva. force descarta
// el cacheado (un 401 probó que ya no sirve).
func (c *serviceTokenCache) get(ctx context.Context, force bool) (string, error) {
	c.mu.Lock()
	if !force && c.token != "" && time.Now().Before(c.exp.Add(-expirySlack)) {
		tok := c.token
		c.mu.Unlock()
		return tok, nil
	}
	stale := c.token
	c.mu.Unlock()

	v, err, _ := c.sf.Do("service-token", func() (any, error) {
		// Otro request pudo haber renovado mientras esperábamos el vuelo.
		c.mu.Lock()
		if c.token != "" && c.token != stale && time.Now().Before(c.exp.Add(-expirySlack)) {
			tok := c.token
			c.mu.Unlock()
			return tok, nil
		}
		c.mu.Unlock()

		tok, exp, err := c.fetch(ctx)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.token = tok
		c.exp = exp
		c.mu.Unlock()
		return tok, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
