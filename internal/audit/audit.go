// Package audit registra eventos de auditoría de autenticación. Hoy el sink
// es el log estructurado; el formato de evento queda estable para poder
// enchufar un sink externo después.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/crossgate-id/crossgate/internal/observability/logger"
)

// Eventos conocidos.
const (
	EventLoginOK       = "auth.login.ok"
	EventLoginFailed   = "auth.login.failed"
	EventTokenRefresh  = "auth.token.refresh"
	EventTokenRevoked  = "auth.token.revoked"
	EventSSOExchange   = "auth.sso.exchange"
	EventHashMigration = "auth.hash.migrated"
)

// Log escribe un evento de auditoría estructurado.
func Log(ctx context.Context, event string, fields ...zap.Field) {
	all := append([]zap.Field{
		zap.String("audit_event", event),
		logger.Component("audit"),
	}, fields...)
	logger.From(ctx).Info("audit", all...)
}
