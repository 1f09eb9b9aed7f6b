package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/radieske/sports-betslip/pkg/contracts/events"
)

// Postgres implementa a persistência de slips enviados
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// InsertSlip grava o slip e suas pernas numa transação.
// Reentrega da mesma mensagem não duplica nada: inserted=false quando o slip já existe.
func (p *Postgres) InsertSlip(ctx context.Context, e events.SlipPlaced) (inserted bool, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO slips (id,user_id,session_id,mode,total_stake_cents,total_payout_cents,total_odds,status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO NOTHING`,
		e.SlipID, e.UserID, e.SessionID, e.Mode, e.TotalStakeCents, e.TotalPayoutCents, e.TotalOdds, StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("insert slip: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, tx.Commit()
	}

	for i, l := range e.Legs {
		var prop sql.NullString
		if l.PropID != "" {
			prop = sql.NullString{String: l.PropID, Valid: true}
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO slip_legs (slip_id,position,bet_id,game_id,market,selection,odds,line,prop_id,stake_cents,payout_cents)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			e.SlipID, i, l.BetID, l.GameID, l.Market, l.Selection, l.Odds, l.Line, prop, l.StakeCents, l.PayoutCents,
		); err != nil {
			return false, fmt.Errorf("insert slip leg %s: %w", l.BetID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// SetStatus atualiza o status final do slip
func (p *Postgres) SetStatus(ctx context.Context, slipID, status, reason string) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE slips SET status=$1, reason=$2, updated_at=NOW() WHERE id=$3`, status, reason, slipID)
	return err
}
