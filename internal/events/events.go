// Package events define la notificación fire-and-forget hacia el bus de
// eventos. Las fallas se loguean y se tragan: nada de este paquete bloquea
// ni hace fallar una operación de autenticación.
package events

import (
	"context"

	"github.com/crossgate-id/crossgate/internal/observability/logger"
)

// Notifier publica eventos de autenticación e identidad.
type Notifier interface {
	LoginSucceeded(ctx context.Context, username, uniqueID string)
	LoginFailed(ctx context.Context, username string)
	IdentityMigrated(ctx context.Context, username string)
}

// LogNotifier es la implementación por defecto: publica al log estructurado.
// Sirve de sink local y de fallback cuando el bus externo está deshabilitado.
type LogNotifier struct{}

// NewLogNotifier crea un LogNotifier.
func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) LoginSucceeded(ctx context.Context, username, uniqueID string) {
	logger.From(ctx).Info("event: login succeeded",
		logger.Component("events"),
		logger.Username(username),
		logger.UniqueID(uniqueID),
	)
}

func (n *LogNotifier) LoginFailed(ctx context.Context, username string) {
	logger.From(ctx).Info("event: login failed",
		logger.Component("events"),
		logger.Username(username),
	)
}

func (n *LogNotifier) IdentityMigrated(ctx context.Context, username string) {
	logger.From(ctx).Info("event: identity migrated to canonical scheme",
		logger.Component("events"),
		logger.Username(username),
	)
}

// Noop descarta todos los eventos.
type Noop struct{}

func (Noop) LoginSucceeded(context.Context, string, string) {}
func (Noop) LoginFailed(context.Context, string)            {}
func (Noop) IdentityMigrated(context.Context, string)       {}
