package betslip

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/radieske/sports-betslip/internal/shared/kv"
)

// SlotKey é o nome fixo do slot de persistência; cada sessão ganha seu sufixo
const SlotKey = "betslip"

// Persister é a porta de persistência chave/valor (get-or-default / set)
type Persister interface {
	Load(ctx context.Context, key string, def Snapshot) (Snapshot, error)
	Save(ctx context.Context, key string, v Snapshot) error
}

// Service é o contêiner de estado injetado nos consumidores (HTTP, placement).
// Cada sessão tem seu slip; mutações de uma mesma sessão rodam até o fim, uma por vez,
// e só ficam visíveis depois de persistidas. O store é a fonte da verdade: toda operação
// relê o slip, então várias instâncias podem servir a mesma sessão.
type Service struct {
	Log     *zap.Logger
	Builder Builder
	Store   Persister

	OnChange   func(session string, snap Snapshot) // push p/ websocket
	OnMutation func(op string)                     // métricas
	OnError    func(op string)                     // métricas por operação

	mu      sync.Mutex
	entries map[string]*entry
}

// entry serializa as operações de uma sessão. Vive enquanto houver operação em
// andamento ou um clear pendente.
type entry struct {
	mu   sync.Mutex
	refs int
	// pendingClear: o slip já foi enviado mas o clear não foi persistido.
	// Até o store aceitar o slip vazio a sessão é tratada como vazia.
	pendingClear bool
}

func NewService(log *zap.Logger, b Builder, store Persister) *Service {
	return &Service{Log: log, Builder: b, Store: store, entries: make(map[string]*entry)}
}

func Key(session string) string { return SlotKey + ":" + session }

// Current retorna o snapshot persistido da sessão
func (s *Service) Current(ctx context.Context, session string) (Snapshot, error) {
	e := s.acquire(session)
	defer s.release(session, e)

	sl, err := s.load(ctx, session, e)
	if err != nil {
		return Snapshot{}, err
	}
	return sl.Snapshot(), nil
}

func (s *Service) AddBet(ctx context.Context, session string, req Request) (Bet, Snapshot, error) {
	var added Bet
	snap, err := s.mutate(ctx, session, "add_bet", func(sl *Slip) (bool, error) {
		b, err := sl.AddBet(req)
		if err != nil {
			return false, err
		}
		added = b
		return true, nil
	})
	if err != nil {
		return Bet{}, Snapshot{}, err
	}
	return added, snap, nil
}

func (s *Service) RemoveBet(ctx context.Context, session, betID string) (Snapshot, error) {
	return s.mutate(ctx, session, "remove_bet", func(sl *Slip) (bool, error) {
		return sl.RemoveBet(betID), nil
	})
}

func (s *Service) UpdateStake(ctx context.Context, session, betID string, stake float64) (Snapshot, error) {
	return s.mutate(ctx, session, "update_stake", func(sl *Slip) (bool, error) {
		return sl.UpdateStake(betID, stake), nil
	})
}

func (s *Service) SetMode(ctx context.Context, session string, m Mode) (Snapshot, error) {
	return s.mutate(ctx, session, "set_mode", func(sl *Slip) (bool, error) {
		if sl.Mode() == m {
			return false, nil
		}
		return true, sl.SetMode(m)
	})
}

func (s *Service) Clear(ctx context.Context, session string) (Snapshot, error) {
	return s.mutate(ctx, session, "clear", func(sl *Slip) (bool, error) {
		sl.Clear()
		return true, nil
	})
}

// ClearAfter executa fn (ex.: envio do slip) com o snapshot atual e limpa o slip se fn der certo.
// Roda com a sessão travada, então nenhuma mutação entra entre a leitura e o clear.
// Se fn falhar o slip fica intacto. Se fn der certo e o Save falhar, o erro é devolvido
// mas a sessão já é tratada como vazia: as apostas enviadas não voltam a aparecer.
func (s *Service) ClearAfter(ctx context.Context, session string, fn func(Snapshot) error) (Snapshot, error) {
	e := s.acquire(session)
	defer s.release(session, e)

	sent := false
	snap, err := s.apply(ctx, session, "clear", e, func(sl *Slip) (bool, error) {
		if err := fn(sl.Snapshot()); err != nil {
			return false, err
		}
		sent = true
		sl.Clear()
		return true, nil
	})
	if err != nil && sent {
		e.pendingClear = true
		s.Log.Warn("betslip clear pending", zap.String("session", session), zap.Error(err))
	}
	return snap, err
}

// mutate trava a sessão e aplica fn sobre o slip relido do store
func (s *Service) mutate(ctx context.Context, session, op string, fn func(*Slip) (bool, error)) (Snapshot, error) {
	e := s.acquire(session)
	defer s.release(session, e)
	return s.apply(ctx, session, op, e, fn)
}

// apply aplica fn no slip atual, persiste o resultado e só então o publica.
// Se fn ou o Save falharem o estado persistido fica como estava. e.mu já travado.
func (s *Service) apply(ctx context.Context, session, op string, e *entry, fn func(*Slip) (bool, error)) (Snapshot, error) {
	cur, err := s.load(ctx, session, e)
	if err != nil {
		s.fail(op)
		return Snapshot{}, err
	}

	next := cur.Clone()
	changed, err := fn(next)
	if err != nil {
		s.fail(op)
		return Snapshot{}, err
	}
	if !changed {
		return cur.Snapshot(), nil
	}

	snap := next.Snapshot()
	if err := s.Store.Save(ctx, Key(session), snap); err != nil {
		s.fail(op)
		s.Log.Warn("betslip save failed", zap.String("session", session), zap.String("op", op), zap.Error(err))
		return Snapshot{}, fmt.Errorf("save betslip: %w", err)
	}

	if s.OnMutation != nil {
		s.OnMutation(op)
	}
	s.Log.Debug("betslip updated",
		zap.String("session", session),
		zap.String("op", op),
		zap.String("mode", string(snap.Mode)),
		zap.Int("bets", len(snap.Bets)),
		zap.Float64("total_stake", snap.TotalStake),
		zap.Float64("total_payout", snap.TotalPayout),
		zap.Int("total_odds", snap.TotalOdds),
	)
	if s.OnChange != nil {
		s.OnChange(session, snap)
	}
	return snap, nil
}

// acquire devolve a entry da sessão já travada
func (s *Service) acquire(session string) *entry {
	s.mu.Lock()
	e, ok := s.entries[session]
	if !ok {
		e = &entry{}
		s.entries[session] = e
	}
	e.refs++
	s.mu.Unlock()

	e.mu.Lock()
	return e
}

// release destrava e descarta a entry quando ninguém mais a usa
func (s *Service) release(session string, e *entry) {
	pending := e.pendingClear
	e.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	e.refs--
	if e.refs == 0 && !pending {
		delete(s.entries, session)
	}
}

// load lê o slip persistido (e.mu já travado).
// Estado persistido ilegível ou inválido é descartado e a sessão começa vazia.
func (s *Service) load(ctx context.Context, session string, e *entry) (*Slip, error) {
	if e.pendingClear {
		if err := s.Store.Save(ctx, Key(session), EmptySnapshot()); err != nil {
			s.Log.Warn("betslip clear still pending", zap.String("session", session), zap.Error(err))
		} else {
			e.pendingClear = false
		}
		return NewSlip(s.Builder), nil
	}

	snap, err := s.Store.Load(ctx, Key(session), EmptySnapshot())
	if errors.Is(err, kv.ErrDecode) {
		s.Log.Warn("discarding undecodable persisted betslip", zap.String("session", session), zap.Error(err))
		return NewSlip(s.Builder), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load betslip: %w", err)
	}
	sl, err := FromSnapshot(s.Builder, snap)
	if err != nil {
		s.Log.Warn("discarding invalid persisted betslip", zap.String("session", session), zap.Error(err))
		return NewSlip(s.Builder), nil
	}
	return sl, nil
}

func (s *Service) fail(op string) {
	if s.OnError != nil {
		s.OnError(op)
	}
}
