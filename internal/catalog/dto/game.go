package dto

import "time"

// Game representa uma partida do catálogo com as odds principais publicadas
type Game struct {
	ID        string    `json:"id"`
	Sport     string    `json:"sport"`
	League    string    `json:"league"`
	HomeTeam  string    `json:"homeTeam"`
	AwayTeam  string    `json:"awayTeam"`
	StartTime time.Time `json:"startTime"`
	Odds      GameOdds  `json:"odds"`
}

// GameOdds agrupa os três mercados de jogo (spread, moneyline, total)
type GameOdds struct {
	Spread    SpreadOdds    `json:"spread"`
	Moneyline MoneylineOdds `json:"moneyline"`
	Total     TotalOdds     `json:"total"`
}

type SpreadOdds struct {
	HomeLine float64 `json:"homeLine"`
	HomeOdds int     `json:"homeOdds"`
	AwayLine float64 `json:"awayLine"`
	AwayOdds int     `json:"awayOdds"`
}

type MoneylineOdds struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

type TotalOdds struct {
	Line  float64 `json:"line"`
	Over  int     `json:"over"`
	Under int     `json:"under"`
}

// PlayerProp representa uma aposta de estatística individual de jogador
type PlayerProp struct {
	ID         string  `json:"id"`
	GameID     string  `json:"gameId"`
	PlayerID   string  `json:"playerId"`
	PlayerName string  `json:"playerName"`
	Team       string  `json:"team"`
	StatType   string  `json:"statType"` // ex: "points", "rebounds", "passing_yards"
	Category   string  `json:"category"` // ex: "scoring", "defense"
	Line       float64 `json:"line"`
	OverOdds   int     `json:"overOdds"`
	UnderOdds  int     `json:"underOdds"`
}
