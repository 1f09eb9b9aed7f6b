package placement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/sports-betslip/internal/betslip"
	"github.com/radieske/sports-betslip/pkg/contracts/events"
)

var (
	ErrEmptySlip   = errors.New("betslip is empty")
	ErrZeroStake   = errors.New("betslip stake must be positive")
	ErrMissingUser = errors.New("userId required")
	ErrWallet      = errors.New("wallet reserve failed")
	ErrPublish     = errors.New("publish slip failed")
)

// Slips é o subconjunto do betslip.Service usado no envio
type Slips interface {
	ClearAfter(ctx context.Context, session string, fn func(betslip.Snapshot) error) (betslip.Snapshot, error)
}

type Wallet interface {
	Reserve(ctx context.Context, userID string, cents int64, externalRef string) (string, error)
	Refund(ctx context.Context, userID, externalRef string) error
}

type Publisher interface {
	PublishSlipPlaced(ctx context.Context, e events.SlipPlaced) error
}

// Placer executa o fluxo assíncrono de envio do slip:
// 1. valida (slip vazio / stake zero)
// 2. reserva o stake total na carteira
// 3. publica slip_placed no Kafka (se falhar, estorna a reserva)
// 4. só então limpa o slip; qualquer falha antes disso deixa o slip como estava
type Placer struct {
	Log       *zap.Logger
	Slips     Slips
	Wallet    Wallet
	Publisher Publisher

	NewID     func() string        // default uuid
	OnOutcome func(outcome string) // métricas
}

func (p *Placer) Place(ctx context.Context, session, userID string) (events.SlipPlaced, error) {
	if userID == "" {
		return events.SlipPlaced{}, ErrMissingUser
	}

	var placed events.SlipPlaced
	var done bool
	_, err := p.Slips.ClearAfter(ctx, session, func(snap betslip.Snapshot) error {
		ev, err := p.submit(ctx, session, userID, snap)
		if err != nil {
			return err
		}
		placed, done = ev, true
		return nil
	})

	switch {
	case err == nil:
		p.outcome("placed")
		p.Log.Info("betslip placed",
			zap.String("slip_id", placed.SlipID),
			zap.String("session", session),
			zap.String("mode", placed.Mode),
			zap.Int("legs", len(placed.Legs)),
			zap.Int64("total_stake_cents", placed.TotalStakeCents),
		)
		return placed, nil
	case done:
		// aposta já foi enviada; só o clear não persistiu
		p.outcome("placed_clear_failed")
		p.Log.Error("betslip placed but clear failed", zap.String("slip_id", placed.SlipID), zap.Error(err))
		return placed, nil
	case errors.Is(err, ErrEmptySlip):
		p.outcome("empty")
	case errors.Is(err, ErrZeroStake):
		p.outcome("zero_stake")
	case errors.Is(err, ErrWallet):
		p.outcome("wallet_failed")
	case errors.Is(err, ErrPublish):
		p.outcome("publish_failed")
	default:
		p.outcome("error")
	}
	return events.SlipPlaced{}, err
}

func (p *Placer) submit(ctx context.Context, session, userID string, snap betslip.Snapshot) (events.SlipPlaced, error) {
	if len(snap.Bets) == 0 {
		return events.SlipPlaced{}, ErrEmptySlip
	}
	if snap.TotalStake <= 0 {
		return events.SlipPlaced{}, ErrZeroStake
	}

	ev := ToEvent(p.newID(), session, userID, snap)

	if _, err := p.Wallet.Reserve(ctx, userID, ev.TotalStakeCents, ev.ReservedRef); err != nil {
		p.Log.Warn("wallet reserve failed", zap.String("slip_id", ev.SlipID), zap.Error(err))
		return events.SlipPlaced{}, fmt.Errorf("%w: %v", ErrWallet, err)
	}

	if err := p.Publisher.PublishSlipPlaced(ctx, ev); err != nil {
		p.Log.Warn("publish slip_placed failed", zap.String("slip_id", ev.SlipID), zap.Error(err))
		// estorno com contexto próprio: o ctx da requisição pode já ter expirado
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if rerr := p.Wallet.Refund(rctx, userID, ev.ReservedRef); rerr != nil {
			p.Log.Error("wallet refund failed", zap.String("slip_id", ev.SlipID), zap.Error(rerr))
		}
		return events.SlipPlaced{}, fmt.Errorf("%w: %v", ErrPublish, err)
	}
	return ev, nil
}

// ToEvent converte o snapshot em evento, com valores monetários em centavos
func ToEvent(slipID, session, userID string, snap betslip.Snapshot) events.SlipPlaced {
	ev := events.SlipPlaced{
		SlipID:           slipID,
		UserID:           userID,
		SessionID:        session,
		Mode:             string(snap.Mode),
		Legs:             make([]events.SlipLegPlaced, 0, len(snap.Bets)),
		TotalStakeCents:  Cents(snap.TotalStake),
		TotalPayoutCents: Cents(snap.TotalPayout),
		TotalOdds:        snap.TotalOdds,
		ReservedRef:      slipID,
	}
	for _, b := range snap.Bets {
		leg := events.SlipLegPlaced{
			BetID:       b.ID,
			GameID:      b.Game.ID,
			Market:      string(b.Market()),
			Selection:   string(b.Selection),
			Odds:        b.Odds,
			StakeCents:  Cents(b.Stake),
			PayoutCents: Cents(b.PotentialPayout),
		}
		if line, ok := b.Line(); ok {
			leg.Line = &line
		}
		if prop, ok := b.PlayerProp(); ok {
			leg.PropID = prop.ID
		}
		ev.Legs = append(ev.Legs, leg)
	}
	return ev
}

// Cents arredonda um valor monetário para centavos (meio para longe do zero)
func Cents(v float64) int64 {
	return decimal.NewFromFloat(v).Shift(2).Round(0).IntPart()
}

func (p *Placer) newID() string {
	if p.NewID != nil {
		return p.NewID()
	}
	return uuid.NewString()
}

func (p *Placer) outcome(o string) {
	if p.OnOutcome != nil {
		p.OnOutcome(o)
	}
}
