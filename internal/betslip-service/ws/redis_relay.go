package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Relay publica snapshots no Redis Pub/Sub e repassa o que chega do canal para o Hub local.
// Assim todas as instâncias do betslip-service entregam o update, não só a que aplicou a mutação.
type Relay struct {
	R       *redis.Client
	Channel string
	Hub     *Hub
	Log     *zap.Logger
}

func (rl *Relay) Publish(ctx context.Context, update SlipUpdate) error {
	b, err := json.Marshal(update)
	if err != nil {
		return err
	}
	return rl.R.Publish(ctx, rl.Channel, b).Err()
}

// Start inicia uma goroutine que escuta o canal e faz Broadcast no Hub
func (rl *Relay) Start(ctx context.Context) {
	sub := rl.R.Subscribe(ctx, rl.Channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close() // encerra a inscrição ao finalizar o contexto
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var upd SlipUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &upd); err != nil {
					rl.Log.Warn("betslip relay unmarshal", zap.Error(err))
					continue
				}
				rl.Hub.Broadcast(upd)
			}
		}
	}()
}
