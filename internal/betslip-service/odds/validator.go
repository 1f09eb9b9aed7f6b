package odds

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Validator confere a odd que o cliente viu contra a odd corrente publicada no Redis
type Validator struct {
	Rdb *redis.Client
}

func NewValidator(r *redis.Client) *Validator { return &Validator{Rdb: r} }

func key(gameID, market, selection string) string {
	return fmt.Sprintf("odds:%s:%s:%s", gameID, market, selection)
}

// CurrentOdds espera a chave "odds:{gameID}:{market}:{selection}" => odd americana, ex: "-110".
// ok=false quando não há odd publicada (nada a comparar).
func (v *Validator) CurrentOdds(ctx context.Context, gameID, market, selection string) (odds int, ok bool, err error) {
	val, err := v.Rdb.Get(ctx, key(gameID, market, selection)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("odds %s: %w", key(gameID, market, selection), err)
	}
	return n, true, nil
}
