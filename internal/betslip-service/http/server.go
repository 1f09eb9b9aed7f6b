package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radieske/sports-betslip/internal/betslip"
	"github.com/radieske/sports-betslip/internal/betslip-service/dto"
	"github.com/radieske/sports-betslip/internal/betslip-service/placement"
	"github.com/radieske/sports-betslip/internal/catalog"
	catdto "github.com/radieske/sports-betslip/internal/catalog/dto"
	"github.com/radieske/sports-betslip/pkg/contracts/events"
	"github.com/radieske/sports-betslip/pkg/oddsmath"
)

// SessionHeader identifica o slip do cliente
const SessionHeader = "X-Session-ID"

const anonymousSession = "anonymous"

// Catalog é o colaborador de leitura de jogos e props
type Catalog interface {
	ListGames(ctx context.Context, league string) ([]catdto.Game, error)
	Game(ctx context.Context, id string) (catdto.Game, error)
	Props(ctx context.Context, gameID string) ([]catdto.PlayerProp, error)
	Prop(ctx context.Context, gameID, propID string) (catdto.PlayerProp, error)
}

// OddsChecker devolve a odd corrente publicada; ok=false quando não há referência
type OddsChecker interface {
	CurrentOdds(ctx context.Context, gameID, market, selection string) (odds int, ok bool, err error)
}

// Server expõe catálogo, slip e envio via REST e o push de snapshots via WebSocket
type Server struct {
	Log     *zap.Logger
	Catalog Catalog
	Slips   *betslip.Service
	Odds    OddsChecker // nil desliga a checagem de drift
	Placer  PlaceFunc
	WS      http.HandlerFunc
}

// PlaceFunc é o fluxo de envio (placement.Placer.Place)
type PlaceFunc func(ctx context.Context, session, userID string) (events.SlipPlaced, error)

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/v1/games", s.listGames)
	r.Get("/v1/games/{id}", s.getGame)
	r.Get("/v1/games/{id}/props", s.listProps)

	r.Route("/v1/slip", func(r chi.Router) {
		r.Get("/", s.getSlip)
		r.Delete("/", s.clearSlip)
		r.Post("/bets", s.addBet)
		r.Delete("/bets/{id}", s.removeBet)
		r.Patch("/bets/{id}", s.updateStake)
		r.Put("/mode", s.setMode)
		r.Post("/place", s.placeSlip)
	})

	if s.WS != nil {
		r.Get("/ws", s.WS)
	}
	return r
}

func session(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(SessionHeader)); v != "" {
		return v
	}
	return anonymousSession
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

// fail traduz erros de domínio em status HTTP
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, oddsmath.ErrInvalidOdds),
		errors.Is(err, betslip.ErrInvalidMarket),
		errors.Is(err, betslip.ErrInvalidSelection),
		errors.Is(err, betslip.ErrInvalidMode),
		errors.Is(err, betslip.ErrInvalidLine),
		errors.Is(err, betslip.ErrMissingLine),
		errors.Is(err, betslip.ErrUnexpectedLine),
		errors.Is(err, betslip.ErrMissingProp),
		errors.Is(err, placement.ErrMissingUser):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, placement.ErrEmptySlip), errors.Is(err, placement.ErrZeroStake):
		writeErr(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, placement.ErrWallet), errors.Is(err, placement.ErrPublish):
		writeErr(w, http.StatusBadGateway, err.Error())
	default:
		s.Log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) listGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.Catalog.ListGames(r.Context(), r.URL.Query().Get("league"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (s *Server) getGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.Catalog.Game(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) listProps(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.Catalog.Game(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	props, err := s.Catalog.Props(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, props)
}

func (s *Server) getSlip(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Slips.Current(r.Context(), session(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) addBet(w http.ResponseWriter, r *http.Request) {
	var req dto.AddBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.GameID == "" {
		writeErr(w, http.StatusBadRequest, "gameId required")
		return
	}
	market, err := betslip.ParseMarket(req.Market)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sel, err := betslip.ParseSelection(req.Selection)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	ctx := r.Context()
	game, err := s.Catalog.Game(ctx, req.GameID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var prop *catdto.PlayerProp
	if market == betslip.MarketPlayerProp {
		if req.PropID == "" {
			s.fail(w, r, betslip.ErrMissingProp)
			return
		}
		p, err := s.Catalog.Prop(ctx, req.GameID, req.PropID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		prop = &p
	}

	// Odd mudou desde que o cliente viu: 409 com a corrente
	if s.Odds != nil {
		cur, ok, err := s.Odds.CurrentOdds(ctx, req.GameID, driftMarket(market, req.PropID), string(sel))
		if err != nil {
			s.Log.Warn("odds drift check failed", zap.String("gameId", req.GameID), zap.Error(err))
		} else if ok && cur != req.Odds {
			writeJSON(w, http.StatusConflict, dto.OddsChangedResponse{Error: "odds changed", CurrentOdds: cur})
			return
		}
	}

	leg, err := betslip.NewLeg(market, req.Line, prop)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	bet, snap, err := s.Slips.AddBet(ctx, session(r), betslip.Request{Game: game, Selection: sel, Odds: req.Odds, Leg: leg})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.AddBetResponse{Bet: bet, Slip: snap})
}

// driftMarket é o segmento de mercado da chave de odds; props são identificadas pelo id
func driftMarket(m betslip.Market, propID string) string {
	if m == betslip.MarketPlayerProp {
		return "prop-" + propID
	}
	return string(m)
}

func (s *Server) removeBet(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Slips.RemoveBet(r.Context(), session(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) updateStake(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateStakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Stake == nil {
		writeErr(w, http.StatusBadRequest, "stake required")
		return
	}
	snap, err := s.Slips.UpdateStake(r.Context(), session(r), chi.URLParam(r, "id"), *req.Stake)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) setMode(w http.ResponseWriter, r *http.Request) {
	var req dto.SetModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	m, err := betslip.ParseMode(req.Mode)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	snap, err := s.Slips.SetMode(r.Context(), session(r), m)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) clearSlip(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Slips.Clear(r.Context(), session(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) placeSlip(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceSlipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	ev, err := s.Placer(r.Context(), session(r), req.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, dto.PlaceSlipResponse{
		SlipID:           ev.SlipID,
		Status:           "PENDING_CONFIRMATION",
		TotalStakeCents:  ev.TotalStakeCents,
		TotalPayoutCents: ev.TotalPayoutCents,
		TotalOdds:        ev.TotalOdds,
	})
}
