// Package middlewares contiene los middlewares HTTP del servicio.
package middlewares

import (
	"context"
	"net/http"
)

// Middleware es la forma estándar composable de un middleware.
type Middleware func(http.Handler) http.Handler

// Chain aplica middlewares en orden: el primero de la lista es el más externo.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type ctxKey int

const requestIDKey ctxKey = iota

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

// GetRequestID devuelve el request id del contexto, o vacío.
func GetRequestID(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey).(string)
	return rid
}
