package repo

import (
	"context"
	"database/sql"

	"github.com/radieske/sports-betslip/internal/catalog/dto"
)

// ReadRepo lê o catálogo (jogos, odds e player props) do Postgres.
// O betslip só consome esses registros; nada aqui é alterado pelo engine.
type ReadRepo struct {
	DB *sql.DB
}

const gameColumns = `
	id, sport, league, home_team, away_team, start_time,
	spread_home_line, spread_home_odds, spread_away_line, spread_away_odds,
	ml_home_odds, ml_away_odds,
	total_line, total_over_odds, total_under_odds`

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(s scanner) (dto.Game, error) {
	var g dto.Game
	err := s.Scan(
		&g.ID, &g.Sport, &g.League, &g.HomeTeam, &g.AwayTeam, &g.StartTime,
		&g.Odds.Spread.HomeLine, &g.Odds.Spread.HomeOdds, &g.Odds.Spread.AwayLine, &g.Odds.Spread.AwayOdds,
		&g.Odds.Moneyline.Home, &g.Odds.Moneyline.Away,
		&g.Odds.Total.Line, &g.Odds.Total.Over, &g.Odds.Total.Under,
	)
	return g, err
}

// ListGames lista os jogos, opcionalmente filtrando por liga (string vazia = todas)
func (r *ReadRepo) ListGames(ctx context.Context, league string) ([]dto.Game, error) {
	q := `SELECT` + gameColumns + `
		FROM games
		WHERE ($1 = '' OR league = $1)
		ORDER BY start_time, id;
	`
	rows, err := r.DB.QueryContext(ctx, q, league)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []dto.Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// GetGame retorna um jogo pelo id; sql.ErrNoRows se não existir
func (r *ReadRepo) GetGame(ctx context.Context, id string) (dto.Game, error) {
	q := `SELECT` + gameColumns + `
		FROM games
		WHERE id = $1;
	`
	return scanGame(r.DB.QueryRowContext(ctx, q, id))
}

// ListProps lista os player props de um jogo
func (r *ReadRepo) ListProps(ctx context.Context, gameID string) ([]dto.PlayerProp, error) {
	const q = `
		SELECT id, game_id, player_id, player_name, team, stat_type, category, line, over_odds, under_odds
		FROM player_props
		WHERE game_id = $1
		ORDER BY player_name, stat_type;
	`
	rows, err := r.DB.QueryContext(ctx, q, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []dto.PlayerProp{}
	for rows.Next() {
		var p dto.PlayerProp
		if err := rows.Scan(&p.ID, &p.GameID, &p.PlayerID, &p.PlayerName, &p.Team, &p.StatType, &p.Category, &p.Line, &p.OverOdds, &p.UnderOdds); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
