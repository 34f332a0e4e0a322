// Package metrics expone los contadores Prometheus del servicio.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Logins cuenta intentos de login por resultado (ok | unauthorized | error).
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crossgate_login_total",
		Help: "Intentos de login por resultado.",
	}, []string{"outcome"})

	// Refreshes cuenta renovaciones de access token por resultado.
	Refreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crossgate_token_refresh_total",
		Help: "Renovaciones de access token por resultado.",
	}, []string{"outcome"})

	// Exchanges cuenta exchanges de código de federación por resultado.
	Exchanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crossgate_federation_exchange_total",
		Help: "Exchanges de authorization code por resultado.",
	}, []string{"outcome"})

	// Migrations cuenta migraciones de hash legacy al esquema canónico.
	Migrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crossgate_hash_migration_total",
		Help: "Migraciones de hash legacy al esquema canónico.",
	})

	// StoreOps mide la latencia de operaciones contra el store relacional.
	StoreOps = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crossgate_store_op_seconds",
		Help:    "Latencia de operaciones del store relacional.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
)

// Valores de outcome.
const (
	OutcomeOK           = "ok"
	OutcomeUnauthorized = "unauthorized"
	OutcomeError        = "error"
)
