package repo

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/sports-betslip/pkg/contracts/events"
)

func placed() events.SlipPlaced {
	line := -2.5
	return events.SlipPlaced{
		SlipID: "slip-1", UserID: "u1", SessionID: "s1", Mode: "parlay",
		TotalStakeCents: 1000, TotalPayoutCents: 4770, TotalOdds: 377,
		Legs: []events.SlipLegPlaced{
			{BetID: "g1-spread-home", GameID: "g1", Market: "spread", Selection: "home", Odds: -110, Line: &line, StakeCents: 1000, PayoutCents: 1909},
			{BetID: "g2-player_prop-pp1-over", GameID: "g2", Market: "player_prop", Selection: "over", Odds: 150, PropID: "pp1", StakeCents: 1000, PayoutCents: 2500},
		},
	}
}

func TestInsertSlip(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO slips`)).
		WithArgs("slip-1", "u1", "s1", "parlay", int64(1000), int64(4770), 377, StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO slip_legs`)).
		WithArgs("slip-1", 0, "g1-spread-home", "g1", "spread", "home", -110, -2.5, nil, int64(1000), int64(1909)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO slip_legs`)).
		WithArgs("slip-1", 1, "g2-player_prop-pp1-over", "g2", "player_prop", "over", 150, nil, "pp1", int64(1000), int64(2500)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	inserted, err := NewPostgres(db).InsertSlip(context.Background(), placed())
	require.NoError(t, err)
	assert.True(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertSlipRedelivery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO slips`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	inserted, err := NewPostgres(db).InsertSlip(context.Background(), placed())
	require.NoError(t, err)
	assert.False(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertSlipRollsBackOnLegFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO slips`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO slip_legs`)).WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	_, err = NewPostgres(db).InsertSlip(context.Background(), placed())
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE slips SET status=$1`)).
		WithArgs(StatusRejected, "wallet commit failed", "slip-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostgres(db).SetStatus(context.Background(), "slip-1", StatusRejected, "wallet commit failed"))
	require.NoError(t, mock.ExpectationsWereMet())
}
