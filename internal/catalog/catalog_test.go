package catalog_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/sports-betslip/internal/catalog"
	"github.com/radieske/sports-betslip/internal/catalog/cache"
	"github.com/radieske/sports-betslip/internal/catalog/repo"
)

var gameCols = []string{
	"id", "sport", "league", "home_team", "away_team", "start_time",
	"spread_home_line", "spread_home_odds", "spread_away_line", "spread_away_odds",
	"ml_home_odds", "ml_away_odds",
	"total_line", "total_over_odds", "total_under_odds",
}

var propCols = []string{"id", "game_id", "player_id", "player_name", "team", "stat_type", "category", "line", "over_odds", "under_odds"}

func setup(t *testing.T) (*catalog.Catalog, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return catalog.New(zap.NewNop(), &repo.ReadRepo{DB: db}, cache.New(rdb)), mock, mr
}

func TestGameReadThrough(t *testing.T) {
	c, mock, mr := setup(t)
	start := time.Date(2026, 10, 20, 0, 30, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM games`)).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows(gameCols).AddRow(
			"g1", "basketball", "NBA", "BOS", "NYK", start,
			-3.5, -110, 3.5, -110,
			-160, 140,
			221.5, -105, -115,
		))

	g, err := c.Game(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, "BOS", g.HomeTeam)
	assert.Equal(t, -3.5, g.Odds.Spread.HomeLine)
	assert.Equal(t, 140, g.Odds.Moneyline.Away)
	assert.Equal(t, 221.5, g.Odds.Total.Line)
	assert.True(t, mr.Exists("catalog:game:g1"))

	// segunda leitura vem do cache, sem query
	again, err := c.Game(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, g.ID, again.ID)
	assert.True(t, g.StartTime.Equal(again.StartTime))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGameNotFound(t *testing.T) {
	c, mock, _ := setup(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM games`)).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(gameCols))

	_, err := c.Game(context.Background(), "nope")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestPropLookup(t *testing.T) {
	c, mock, _ := setup(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM player_props`)).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows(propCols).
			AddRow("pp1", "g1", "p1", "Jayson Tatum", "BOS", "points", "scoring", 27.5, -115, -105).
			AddRow("pp2", "g1", "p2", "Jalen Brunson", "NYK", "assists", "playmaking", 6.5, 100, -120))

	p, err := c.Prop(context.Background(), "g1", "pp2")
	require.NoError(t, err)
	assert.Equal(t, "Jalen Brunson", p.PlayerName)
	assert.Equal(t, 6.5, p.Line)

	// cache já populado
	_, err = c.Prop(context.Background(), "g1", "pp9")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListGamesFilter(t *testing.T) {
	c, mock, _ := setup(t)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE ($1 = '' OR league = $1)`)).
		WithArgs("NFL").
		WillReturnRows(sqlmock.NewRows(gameCols))

	games, err := c.ListGames(context.Background(), "NFL")
	require.NoError(t, err)
	assert.Empty(t, games)
	assert.NotNil(t, games)
}
