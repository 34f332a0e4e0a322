package logger

import (
	"time"

	"go.uber.org/zap"
)

// Campos estándar HTTP.

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path crea un campo para el path del request.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// Duration crea un campo para la duración del request.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// Bytes crea un campo para los bytes escritos en la respuesta.
func Bytes(v int) zap.Field {
	return zap.Int("bytes", v)
}

// Campos de negocio.

// Username crea un campo para el username (ya case-folded).
func Username(v string) zap.Field {
	return zap.String("username", v)
}

// UniqueID crea un campo para el unique id canónico.
func UniqueID(v string) zap.Field {
	return zap.String("unique_id", v)
}

// Platform crea un campo para la plataforma de origen.
func Platform(v string) zap.Field {
	return zap.String("platform", v)
}

// Federation crea un campo para el nombre de la federación.
func Federation(v string) zap.Field {
	return zap.String("federation", v)
}

// JTI crea un campo para el identificador del token.
func JTI(v string) zap.Field {
	return zap.String("jti", v)
}

// TokenKind crea un campo para el tipo de token (access/refresh/exchange).
func TokenKind(v string) zap.Field {
	return zap.String("token_kind", v)
}

// Campos de sistema.

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op crea un campo para la operación actual.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer crea un campo para la capa (handler, service, repository).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// Count crea un campo para un conteo.
func Count(v int) zap.Field {
	return zap.Int("count", v)
}

// Key crea un campo genérico para una clave.
func Key(v string) zap.Field {
	return zap.String("key", v)
}

// String crea un campo string genérico.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}
