package placement_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/sports-betslip/internal/betslip"
	"github.com/radieske/sports-betslip/internal/betslip-service/placement"
	"github.com/radieske/sports-betslip/internal/catalog/dto"
	"github.com/radieske/sports-betslip/internal/shared/kv"
	"github.com/radieske/sports-betslip/pkg/contracts/events"
)

type fakeWallet struct {
	reserveErr error
	reserved   map[string]int64
	refunded   []string
}

func (w *fakeWallet) Reserve(_ context.Context, _ string, cents int64, ref string) (string, error) {
	if w.reserveErr != nil {
		return "", w.reserveErr
	}
	if w.reserved == nil {
		w.reserved = map[string]int64{}
	}
	w.reserved[ref] = cents
	return "res-" + ref, nil
}

func (w *fakeWallet) Refund(_ context.Context, _ string, ref string) error {
	w.refunded = append(w.refunded, ref)
	return nil
}

type fakePublisher struct {
	err       error
	published []events.SlipPlaced
}

func (p *fakePublisher) PublishSlipPlaced(_ context.Context, e events.SlipPlaced) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, e)
	return nil
}

type fixture struct {
	svc      *betslip.Service
	wallet   *fakeWallet
	pub      *fakePublisher
	placer   *placement.Placer
	outcomes []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		svc:    betslip.NewService(zap.NewNop(), betslip.NewBuilder(10), kv.NewMemoryStore[betslip.Snapshot]()),
		wallet: &fakeWallet{},
		pub:    &fakePublisher{},
	}
	f.placer = &placement.Placer{
		Log:       zap.NewNop(),
		Slips:     f.svc,
		Wallet:    f.wallet,
		Publisher: f.pub,
		NewID:     func() string { return "slip-1" },
		OnOutcome: func(o string) { f.outcomes = append(f.outcomes, o) },
	}
	return f
}

func (f *fixture) addParlay(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, _, err := f.svc.AddBet(ctx, "s1", betslip.Request{
		Game: dto.Game{ID: "g1"}, Selection: betslip.SelectionHome, Odds: -110, Leg: betslip.SpreadLeg{Line: -2.5},
	})
	require.NoError(t, err)
	_, _, err = f.svc.AddBet(ctx, "s1", betslip.Request{
		Game: dto.Game{ID: "g2"}, Selection: betslip.SelectionOver, Odds: 150,
		Leg: betslip.PlayerPropLeg{Line: 24.5, Prop: dto.PlayerProp{ID: "pp1"}},
	})
	require.NoError(t, err)
	_, err = f.svc.SetMode(ctx, "s1", betslip.ModeParlay)
	require.NoError(t, err)
}

func TestPlaceClearsOnSuccess(t *testing.T) {
	f := newFixture(t)
	f.addParlay(t)

	ev, err := f.placer.Place(context.Background(), "s1", "u1")
	require.NoError(t, err)

	assert.Equal(t, "slip-1", ev.SlipID)
	assert.Equal(t, "parlay", ev.Mode)
	assert.Equal(t, 377, ev.TotalOdds)
	assert.Equal(t, int64(1000), ev.TotalStakeCents)
	assert.Equal(t, int64(4770), ev.TotalPayoutCents)
	require.Len(t, ev.Legs, 2)
	assert.Equal(t, "g1-spread-home", ev.Legs[0].BetID)
	require.NotNil(t, ev.Legs[0].Line)
	assert.Equal(t, -2.5, *ev.Legs[0].Line)
	assert.Equal(t, "pp1", ev.Legs[1].PropID)

	assert.Equal(t, int64(1000), f.wallet.reserved["slip-1"])
	require.Len(t, f.pub.published, 1)

	snap, err := f.svc.Current(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, betslip.EmptySnapshot(), snap)
	assert.Equal(t, []string{"placed"}, f.outcomes)
}

func TestPlaceEmptySlip(t *testing.T) {
	f := newFixture(t)

	_, err := f.placer.Place(context.Background(), "s1", "u1")
	assert.ErrorIs(t, err, placement.ErrEmptySlip)
	assert.Empty(t, f.wallet.reserved)
	assert.Equal(t, []string{"empty"}, f.outcomes)
}

func TestPlaceMissingUser(t *testing.T) {
	f := newFixture(t)
	f.addParlay(t)

	_, err := f.placer.Place(context.Background(), "s1", "")
	assert.ErrorIs(t, err, placement.ErrMissingUser)
}

func TestPlaceZeroStake(t *testing.T) {
	f := newFixture(t)
	f.addParlay(t)
	_, err := f.svc.UpdateStake(context.Background(), "s1", "g1-spread-home", 0)
	require.NoError(t, err)

	_, err = f.placer.Place(context.Background(), "s1", "u1")
	assert.ErrorIs(t, err, placement.ErrZeroStake)
}

func TestPlaceWalletFailureLeavesSlip(t *testing.T) {
	f := newFixture(t)
	f.addParlay(t)
	before, err := f.svc.Current(context.Background(), "s1")
	require.NoError(t, err)

	f.wallet.reserveErr = errors.New("insufficient funds")
	_, err = f.placer.Place(context.Background(), "s1", "u1")
	assert.ErrorIs(t, err, placement.ErrWallet)
	assert.Empty(t, f.pub.published)

	after, err := f.svc.Current(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPlacePublishFailureRefunds(t *testing.T) {
	f := newFixture(t)
	f.addParlay(t)
	before, err := f.svc.Current(context.Background(), "s1")
	require.NoError(t, err)

	f.pub.err = errors.New("broker unavailable")
	_, err = f.placer.Place(context.Background(), "s1", "u1")
	assert.ErrorIs(t, err, placement.ErrPublish)
	assert.Equal(t, []string{"slip-1"}, f.wallet.refunded)

	after, err := f.svc.Current(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, []string{"publish_failed"}, f.outcomes)
}

// downStore passa a recusar o Save quando down está ligado
type downStore struct {
	*kv.MemoryStore[betslip.Snapshot]
	down bool
}

func (d *downStore) Save(ctx context.Context, key string, v betslip.Snapshot) error {
	if d.down {
		return errors.New("redis down")
	}
	return d.MemoryStore.Save(ctx, key, v)
}

func TestPlaceClearFailureDoesNotDoubleSubmit(t *testing.T) {
	f := newFixture(t)
	store := &downStore{MemoryStore: kv.NewMemoryStore[betslip.Snapshot]()}
	f.svc = betslip.NewService(zap.NewNop(), betslip.NewBuilder(10), store)
	f.placer.Slips = f.svc
	f.addParlay(t)

	store.down = true
	ev, err := f.placer.Place(context.Background(), "s1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "slip-1", ev.SlipID)

	_, err = f.placer.Place(context.Background(), "s1", "u1")
	assert.ErrorIs(t, err, placement.ErrEmptySlip)

	assert.Len(t, f.wallet.reserved, 1)
	assert.Len(t, f.pub.published, 1)
	assert.Equal(t, []string{"placed_clear_failed", "empty"}, f.outcomes)
}

func TestToEventSingleMode(t *testing.T) {
	b := betslip.NewBuilder(10)
	s := betslip.NewSlip(b)
	_, err := s.AddBet(betslip.Request{Game: dto.Game{ID: "g1"}, Selection: betslip.SelectionHome, Odds: -110, Leg: betslip.MoneylineLeg{}})
	require.NoError(t, err)
	_, err = s.AddBet(betslip.Request{Game: dto.Game{ID: "g2"}, Selection: betslip.SelectionHome, Odds: -110, Leg: betslip.MoneylineLeg{}})
	require.NoError(t, err)
	require.True(t, s.UpdateStake("g2-moneyline-home", 20))

	ev := placement.ToEvent("x", "s1", "u1", s.Snapshot())
	assert.Equal(t, int64(3000), ev.TotalStakeCents)
	assert.Equal(t, int64(5727), ev.TotalPayoutCents)
	assert.Equal(t, 0, ev.TotalOdds)
	assert.Nil(t, ev.Legs[0].Line)
	assert.Equal(t, int64(1909), ev.Legs[0].PayoutCents)
	assert.Equal(t, int64(3818), ev.Legs[1].PayoutCents)
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(1909), placement.Cents(19.0909))
	assert.Equal(t, int64(4773), placement.Cents(47.727))
	assert.Equal(t, int64(1), placement.Cents(0.005))
	assert.Equal(t, int64(0), placement.Cents(0))
}
