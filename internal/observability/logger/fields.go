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

// Bytes crea un campo para los bytes de respuesta.
func Bytes(v int) zap.Field {
	return zap.Int("bytes", v)
}

// ClientIP crea un campo para la IP del cliente.
func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

// Campos de negocio.

// GrantType crea un campo para el grant_type OAuth2.
func GrantType(v string) zap.Field {
	return zap.String("grant_type", v)
}

// ClientID crea un campo para el client_id OAuth2.
func ClientID(v string) zap.Field {
	return zap.String("client_id", v)
}

// AppID crea un campo para el ID de la aplicación.
func AppID(v int64) zap.Field {
	return zap.Int64("app_id", v)
}

// AccountID crea un campo para el ID de la cuenta (subject).
func AccountID(v string) zap.Field {
	return zap.String("account_id", v)
}

// Scope crea un campo para el scope solicitado/otorgado.
func Scope(v string) zap.Field {
	return zap.String("scope", v)
}

// Campos técnicos.

// Layer identifica la capa (controller, service, store).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Op identifica la operación lógica (ej: "oauth.token.authcode").
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// String es un passthrough para campos ad-hoc.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}

// Int crea un campo entero ad-hoc.
func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}

// Any crea un campo arbitrario (para panics y payloads opacos).
func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}
