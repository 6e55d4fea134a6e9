package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Move is a single candidate word placement.
type Move struct {
	Direction Direction `json:"direction"`
	Row       int       `json:"row"`
	Col       int       `json:"col"`
	Answer    string    `json:"answer"`
}

// Key returns the composite key of the clue this move targets.
func (m Move) Key() string {
	return fmt.Sprintf("%s-%d-%d", m.Direction, m.Row, m.Col)
}

// MoveAdapter wraps the move-suggestion oracle. Oracle failures of any kind
// degrade to the deterministic fallback; the adapter never errors, only
// reports "no move available".
type MoveAdapter struct {
	oracle Oracle
	log    zerolog.Logger
}

// NewMoveAdapter creates an adapter. A nil oracle skips straight to the
// deterministic policy.
func NewMoveAdapter(oracle Oracle, log zerolog.Logger) *MoveAdapter {
	return &MoveAdapter{oracle: oracle, log: log}
}

// NextMove produces exactly one candidate move, or reports that none is
// available (the terminal state, not an error).
func (a *MoveAdapter) NextMove(ctx context.Context, clues []Clue, scored map[string]bool, grid map[string]Cell) (Move, bool) {
	var candidates []Clue
	for _, c := range clues {
		if !scored[c.Key()] {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return Move{}, false
	}

	if a.oracle != nil {
		if mv := a.askOracle(ctx, candidates, scored, grid); mv != nil {
			return *mv, true
		}
	}

	// Deterministic fallback: first remaining candidate with a known answer.
	for _, c := range candidates {
		if c.Answer != "" {
			return Move{Direction: c.Direction, Row: c.Row, Col: c.Col, Answer: c.Answer}, true
		}
	}
	return Move{}, false
}

// askOracle invokes the oracle and validates its suggestion. Any failure
// (transport, malformed response, stale or invalid move) returns nil.
func (a *MoveAdapter) askOracle(ctx context.Context, candidates []Clue, scored map[string]bool, grid map[string]Cell) *Move {
	req := SolveRequest{Grid: grid}
	for _, c := range candidates {
		if c.Direction == DirDown {
			req.Down = append(req.Down, c)
		} else {
			req.Across = append(req.Across, c)
		}
	}
	for k := range scored {
		req.SolvedKeys = append(req.SolvedKeys, k)
	}

	mv, err := a.oracle.SolveOne(ctx, req)
	if err != nil {
		a.log.Debug().Err(err).Msg("oracle failed, using fallback")
		return nil
	}
	if mv == nil {
		return nil
	}
	if err := validateMove(*mv, scored); err != nil {
		a.log.Debug().Err(err).Str("key", mv.Key()).Msg("oracle move rejected")
		return nil
	}
	return mv
}

// validateMove rejects moves with a bad direction token, an empty answer,
// or a composite key that is already scored (a stale suggestion).
func validateMove(m Move, scored map[string]bool) error {
	if m.Direction != DirAcross && m.Direction != DirDown {
		return fmt.Errorf("bad direction %q", m.Direction)
	}
	if m.Answer == "" {
		return fmt.Errorf("empty answer")
	}
	if scored[m.Key()] {
		return fmt.Errorf("already scored")
	}
	return nil
}

// --- session-side AI runner ---

// playAITurn runs the AI's turn under the turn-based policy: one adapter
// invocation, at most one word placed, then the turn passes back to the
// player whether or not a move was found.
func (g *GameSession) playAITurn(ctx context.Context, gen int64) {
	if !g.aiBusy.CompareAndSwap(false, true) {
		return
	}
	defer g.aiBusy.Store(false)

	if g.typeMove(ctx, gen) {
		// The AI invocation is itself a scoring trigger; sweep before
		// handing the turn back so its word is credited on its own turn.
		g.Sweep()
	}

	if gen == g.gen.Load() && g.Status() == StatusActive {
		g.store.Write(g.turnKey(), string(TurnPlayer))
	}
}

// maybeRunAI re-arms the AI under the simultaneous policy. The busy flag is
// the re-entrancy guard: it prevents a new overlapping invocation but never
// cancels the one in flight. The spawned runner keeps going while it makes
// progress, so a re-arm event dropped during the busy window is harmless.
func (g *GameSession) maybeRunAI(ctx context.Context, gen int64) {
	if g.Status() != StatusActive {
		return
	}
	if g.store.Count(g.marksPrefix()) >= g.Puzzle.TotalClues() {
		return
	}
	if !g.aiBusy.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer g.aiBusy.Store(false)
		for {
			if ctx.Err() != nil || gen != g.gen.Load() || g.Status() != StatusActive {
				return
			}
			before := g.store.Count(g.marksPrefix())
			if before >= g.Puzzle.TotalClues() {
				return
			}
			if !g.typeMove(ctx, gen) {
				return
			}
			g.Sweep()
			if g.store.Count(g.marksPrefix()) == before {
				// Typed word did not score (oracle guessed wrong);
				// wait for the next trigger instead of spinning.
				return
			}
		}
	}()
}

// typeMove asks the adapter for one move and types it letter by letter with
// cosmetic pacing. The generation check on every cell write makes a reset
// drop the remainder of an in-flight word.
func (g *GameSession) typeMove(ctx context.Context, gen int64) bool {
	g.pause(ctx, g.Config.ThinkDelay)

	mv, ok := g.adapter.NextMove(ctx, g.Puzzle.AllClues(), g.ScoredSet(), g.Grid())
	if !ok {
		g.log.Debug().Str("game", g.ID).Msg("no AI move available")
		return false
	}

	word := Clue{Direction: mv.Direction, Row: mv.Row, Col: mv.Col, Answer: mv.Answer, Length: len(mv.Answer)}
	for i := 0; i < word.Length; i++ {
		if ctx.Err() != nil {
			return false
		}
		r, c := word.CellAt(i)
		if err := g.setCell(gen, r, c, string(mv.Answer[i]), PartyAI); err != nil {
			g.log.Debug().Err(err).Str("game", g.ID).Msg("AI typing aborted")
			return false
		}
		g.pause(ctx, g.Config.TypeDelay)
	}
	return true
}

func (g *GameSession) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
