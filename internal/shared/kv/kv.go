package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Store é a porta genérica de persistência chave/valor usada para estado de sessão.
// Load devolve def quando a chave não existe; isso não é erro.
type Store[T any] interface {
	Load(ctx context.Context, key string, def T) (T, error)
	Save(ctx context.Context, key string, v T) error
}

var ErrUnknownBackend = errors.New("unknown kv backend")

// ErrDecode marca um valor persistido que não pôde ser decodificado.
// O dado está lá mas é ilegível; o chamador decide se descarta.
var ErrDecode = errors.New("kv: undecodable value")

func decode[T any](b []byte, def T) (T, error) {
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return def, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return v, nil
}

// Backends suportados em KV_BACKEND
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)
