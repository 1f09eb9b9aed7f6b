package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/sports-betslip/internal/placement-worker/repo"
	"github.com/radieske/sports-betslip/pkg/contracts/events"
)

// Reader é o subconjunto de *kafka.Reader usado no loop (commit manual)
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Store interface {
	InsertSlip(ctx context.Context, e events.SlipPlaced) (bool, error)
	SetStatus(ctx context.Context, slipID, status, reason string) error
}

type Wallet interface {
	Commit(ctx context.Context, userID, externalRef string) error
	Refund(ctx context.Context, userID, externalRef string) error
}

// Processor consome slip_placed e confirma cada slip:
// 1. grava slip + pernas no Postgres (idempotente)
// 2. efetiva a reserva na carteira
// 3. publica slip_confirmed
// Falhas são tentadas Retries vezes com backoff linear; depois vão para a DLQ,
// a reserva é estornada e o slip é publicado como REJECTED.
type Processor struct {
	Log       *zap.Logger
	Reader    Reader
	Store     Store
	Wallet    Wallet
	Confirmed Writer
	DLQ       Writer // opcional

	Retries int
	Backoff time.Duration

	OnConsumed  func()
	OnPersisted func()
	OnError     func(stage string)
}

// Run executa o loop até o contexto ser cancelado
func (p *Processor) Run(ctx context.Context) error {
	for {
		msg, err := p.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.fail("fetch")
			p.Log.Warn("kafka fetch", zap.Error(err))
			if !p.sleep(ctx, time.Second) {
				return nil
			}
			continue
		}
		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		if err := p.Handle(ctx, msg); err != nil {
			// não confirma o offset: a mensagem volta na próxima leitura do grupo
			p.Log.Error("handle slip_placed", zap.ByteString("key", msg.Key), zap.Error(err))
			continue
		}
		if err := p.Reader.CommitMessages(ctx, msg); err != nil {
			p.fail("commit")
			p.Log.Warn("kafka commit", zap.Error(err))
		}
	}
}

// Handle processa uma mensagem. Só devolve erro quando nem a DLQ conseguiu receber o slip.
func (p *Processor) Handle(ctx context.Context, msg kafka.Message) error {
	var placed events.SlipPlaced
	if err := json.Unmarshal(msg.Value, &placed); err != nil || placed.SlipID == "" {
		p.fail("decode")
		p.Log.Error("invalid slip_placed", zap.ByteString("value", msg.Value), zap.Error(err))
		return p.deadLetter(ctx, string(msg.Key), msg.Value)
	}

	log := p.Log.With(zap.String("slipId", placed.SlipID), zap.String("userId", placed.UserID))

	err := p.retry(ctx, func() error { return p.confirm(ctx, placed) })
	if err == nil {
		log.Info("slip confirmed", zap.String("mode", placed.Mode), zap.Int("legs", len(placed.Legs)))
		return p.publish(ctx, placed, repo.StatusConfirmed, "")
	}

	log.Error("slip rejected after retries", zap.Error(err))
	if dlqErr := p.deadLetter(ctx, placed.SlipID, msg.Value); dlqErr != nil {
		return dlqErr
	}
	if rerr := p.Wallet.Refund(ctx, placed.UserID, placed.ReservedRef); rerr != nil {
		p.fail("refund")
		log.Error("wallet refund", zap.Error(rerr))
	}
	if serr := p.Store.SetStatus(ctx, placed.SlipID, repo.StatusRejected, err.Error()); serr != nil {
		log.Warn("slip status", zap.Error(serr))
	}
	return p.publish(ctx, placed, repo.StatusRejected, err.Error())
}

func (p *Processor) confirm(ctx context.Context, e events.SlipPlaced) error {
	inserted, err := p.Store.InsertSlip(ctx, e)
	if err != nil {
		p.fail("persist")
		return fmt.Errorf("persist: %w", err)
	}
	if inserted && p.OnPersisted != nil {
		p.OnPersisted()
	}
	if err := p.Wallet.Commit(ctx, e.UserID, e.ReservedRef); err != nil {
		p.fail("wallet")
		return fmt.Errorf("wallet commit: %w", err)
	}
	if err := p.Store.SetStatus(ctx, e.SlipID, repo.StatusConfirmed, ""); err != nil {
		p.fail("persist")
		return fmt.Errorf("status: %w", err)
	}
	return nil
}

// retry tenta fn uma vez e mais Retries vezes, esperando Backoff*(i+1) entre tentativas
func (p *Processor) retry(ctx context.Context, fn func() error) error {
	err := fn()
	for i := 0; err != nil && i < p.Retries; i++ {
		if !p.sleep(ctx, time.Duration(i+1)*p.Backoff) {
			return errors.Join(err, ctx.Err())
		}
		err = fn()
	}
	return err
}

func (p *Processor) publish(ctx context.Context, e events.SlipPlaced, status, reason string) error {
	b, err := json.Marshal(events.SlipConfirmed{
		SlipID: e.SlipID,
		UserID: e.UserID,
		Status: status,
		Reason: reason,
		Ts:     time.Now(),
	})
	if err != nil {
		return err
	}
	if err := p.Confirmed.WriteMessages(ctx, kafka.Message{Key: []byte(e.SlipID), Value: b}); err != nil {
		p.fail("publish")
		return fmt.Errorf("publish slip_confirmed: %w", err)
	}
	return nil
}

func (p *Processor) deadLetter(ctx context.Context, key string, value []byte) error {
	if p.DLQ == nil {
		return nil
	}
	if err := p.DLQ.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value}); err != nil {
		p.fail("dlq")
		return fmt.Errorf("dlq: %w", err)
	}
	return nil
}

func (p *Processor) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
