package betslip

import (
	"fmt"
	"math"
)

// Slip é o estado agregado do bet slip: modo, apostas em ordem de inserção e totais derivados.
// Não é seguro para uso concorrente; o Service serializa o acesso.
type Slip struct {
	builder Builder
	mode    Mode
	bets    []Bet
	totals  Totals
}

// Snapshot é a visão somente-leitura usada para renderização e persistência
type Snapshot struct {
	Mode        Mode    `json:"mode"`
	Bets        []Bet   `json:"bets"`
	TotalStake  float64 `json:"totalStake"`
	TotalPayout float64 `json:"totalPayout"`
	TotalOdds   int     `json:"totalOdds"`
}

// EmptySnapshot é o estado inicial (e o resultado de Clear)
func EmptySnapshot() Snapshot {
	return Snapshot{Mode: ModeSingle, Bets: []Bet{}}
}

func NewSlip(b Builder) *Slip {
	return &Slip{builder: b, mode: ModeSingle}
}

// FromSnapshot reconstrói um Slip a partir do estado persistido.
// Apostas inválidas são rejeitadas; payouts e totais são recalculados, nunca confiados.
func FromSnapshot(b Builder, snap Snapshot) (*Slip, error) {
	s := NewSlip(b)
	if snap.Mode != "" {
		m, err := ParseMode(string(snap.Mode))
		if err != nil {
			return nil, err
		}
		s.mode = m
	}
	for _, bet := range snap.Bets {
		if err := validateLeg(bet.Leg, bet.Selection); err != nil {
			return nil, fmt.Errorf("bet %s: %w", bet.ID, err)
		}
		if !validStake(bet.Stake) {
			return nil, fmt.Errorf("bet %s: invalid stake %v", bet.ID, bet.Stake)
		}
		payout, err := potentialPayout(bet.Stake, bet.Odds)
		if err != nil {
			return nil, fmt.Errorf("bet %s: %w", bet.ID, err)
		}
		bet.ID = BetID(bet.Game.ID, bet.Leg, bet.Selection)
		bet.PotentialPayout = payout
		s.bets = append(s.bets, bet)
	}
	if err := checkCombinable(s.bets); err != nil {
		return nil, err
	}
	if err := s.recompute(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Slip) Mode() Mode { return s.mode }

func (s *Slip) Len() int { return len(s.bets) }

func (s *Slip) Totals() Totals { return s.totals }

// Bet retorna a aposta com a identidade dada
func (s *Slip) Bet(id string) (Bet, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.bets[i], true
	}
	return Bet{}, false
}

// Snapshot copia o estado atual; alterações no retorno não afetam o slip
func (s *Slip) Snapshot() Snapshot {
	bets := make([]Bet, len(s.bets))
	copy(bets, s.bets)
	return Snapshot{
		Mode:        s.mode,
		Bets:        bets,
		TotalStake:  s.totals.Stake,
		TotalPayout: s.totals.Payout,
		TotalOdds:   s.totals.Odds,
	}
}

func (s *Slip) Clone() *Slip {
	c := *s
	c.bets = make([]Bet, len(s.bets))
	copy(c.bets, s.bets)
	return &c
}

// AddBet constrói a aposta e insere no slip.
// Mercados de jogo: substitui (na mesma posição) a aposta existente do mesmo (jogo, mercado).
// Player props: substitui só se a identidade for idêntica, senão adiciona ao final.
func (s *Slip) AddBet(req Request) (Bet, error) {
	bet, err := s.builder.Build(req)
	if err != nil {
		return Bet{}, err
	}

	idx := -1
	for i, existing := range s.bets {
		if bet.Market() == MarketPlayerProp {
			if existing.ID == bet.ID {
				idx = i
				break
			}
			continue
		}
		if existing.Game.ID == bet.Game.ID && existing.Market() == bet.Market() {
			idx = i
			break
		}
	}

	next := make([]Bet, len(s.bets), len(s.bets)+1)
	copy(next, s.bets)
	if idx >= 0 {
		next[idx] = bet
	} else {
		next = append(next, bet)
	}
	// a aposta precisa caber numa múltipla mesmo em single: o modo pode mudar depois
	if err := checkCombinable(next); err != nil {
		return Bet{}, err
	}
	s.bets = next
	s.mustRecompute()
	return bet, nil
}

// RemoveBet remove a aposta pela identidade. Id inexistente é no-op.
func (s *Slip) RemoveBet(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.bets = append(s.bets[:i:i], s.bets[i+1:]...)
	s.mustRecompute()
	return true
}

// UpdateStake altera o stake de uma aposta. Stake negativo/não finito ou id inexistente é no-op.
// Em modo parlay o stake é único: o novo valor é propagado para todas as pernas.
func (s *Slip) UpdateStake(id string, stake float64) bool {
	if !validStake(stake) {
		return false
	}
	i := s.indexOf(id)
	if i < 0 {
		return false
	}

	if s.mode == ModeParlay {
		for j := range s.bets {
			s.bets[j] = s.bets[j].withStake(stake)
		}
	} else {
		s.bets[i] = s.bets[i].withStake(stake)
	}
	s.mustRecompute()
	return true
}

// SetMode troca entre single e parlay sem mexer nos stakes individuais
func (s *Slip) SetMode(m Mode) error {
	if _, err := ParseMode(string(m)); err != nil {
		return err
	}
	prev := s.mode
	s.mode = m
	if err := s.recompute(); err != nil {
		s.mode = prev
		return err
	}
	return nil
}

// Clear volta ao slip vazio em modo single
func (s *Slip) Clear() {
	s.bets = nil
	s.mode = ModeSingle
	s.totals = Totals{}
}

func (s *Slip) indexOf(id string) int {
	for i, b := range s.bets {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (s *Slip) recompute() error {
	t, err := ComputeTotals(s.mode, s.bets)
	if err != nil {
		return err
	}
	s.totals = t
	return nil
}

// mustRecompute é usado depois de mutações que só mantêm ou reduzem pernas já
// aceitas por checkCombinable, onde ComputeTotals não tem como falhar.
func (s *Slip) mustRecompute() {
	if err := s.recompute(); err != nil {
		panic(fmt.Sprintf("betslip: totals of accepted legs: %v", err))
	}
}

func validStake(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
