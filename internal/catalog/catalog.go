package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/sports-betslip/internal/catalog/cache"
	"github.com/radieske/sports-betslip/internal/catalog/dto"
	"github.com/radieske/sports-betslip/internal/catalog/repo"
)

var ErrNotFound = errors.New("not found")

// DefaultTTL é o tempo que jogos/props ficam no cache Redis
const DefaultTTL = 30 * time.Second

// Catalog lê jogos e props do Postgres com cache Redis na frente (read-through).
// Falha de cache nunca bloqueia a leitura do banco.
type Catalog struct {
	Log   *zap.Logger
	Repo  *repo.ReadRepo
	Cache *cache.Cache
	TTL   time.Duration
}

func New(log *zap.Logger, r *repo.ReadRepo, c *cache.Cache) *Catalog {
	return &Catalog{Log: log, Repo: r, Cache: c, TTL: DefaultTTL}
}

func (c *Catalog) ListGames(ctx context.Context, league string) ([]dto.Game, error) {
	return c.Repo.ListGames(ctx, league)
}

func (c *Catalog) Game(ctx context.Context, id string) (dto.Game, error) {
	var g dto.Game
	if ok, err := c.Cache.GetGame(ctx, id, &g); err != nil {
		c.Log.Warn("catalog cache get failed", zap.String("game_id", id), zap.Error(err))
	} else if ok {
		return g, nil
	}

	g, err := c.Repo.GetGame(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return dto.Game{}, ErrNotFound
	}
	if err != nil {
		return dto.Game{}, err
	}

	if err := c.Cache.SetGame(ctx, id, g, c.TTL); err != nil {
		c.Log.Warn("catalog cache set failed", zap.String("game_id", id), zap.Error(err))
	}
	return g, nil
}

func (c *Catalog) Props(ctx context.Context, gameID string) ([]dto.PlayerProp, error) {
	var props []dto.PlayerProp
	if ok, err := c.Cache.GetProps(ctx, gameID, &props); err != nil {
		c.Log.Warn("catalog cache get failed", zap.String("game_id", gameID), zap.Error(err))
	} else if ok {
		return props, nil
	}

	props, err := c.Repo.ListProps(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := c.Cache.SetProps(ctx, gameID, props, c.TTL); err != nil {
		c.Log.Warn("catalog cache set failed", zap.String("game_id", gameID), zap.Error(err))
	}
	return props, nil
}

// Prop procura um player prop do jogo pelo id
func (c *Catalog) Prop(ctx context.Context, gameID, propID string) (dto.PlayerProp, error) {
	props, err := c.Props(ctx, gameID)
	if err != nil {
		return dto.PlayerProp{}, err
	}
	for _, p := range props {
		if p.ID == propID {
			return p, nil
		}
	}
	return dto.PlayerProp{}, ErrNotFound
}
