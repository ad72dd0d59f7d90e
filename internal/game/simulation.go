package game

import (
	"errors"
	"fmt"

	"github.com/wallwar/wallwar-server/internal/game/rules"
	"go.uber.org/zap"
)

// SimulationResult summarizes one automated game.
type SimulationResult struct {
	GameID   string       `json:"game_id"`
	Winner   rules.Side   `json:"winner"`
	Turns    int          `json:"turns"`
	Renders  int          `json:"renders"`
	Points   PerSide[int] `json:"points"`
	Checksum string       `json:"checksum"`
	Stats    StatsSummary `json:"stats"`
}

// Simulate plays a whole game with both sides driven by strategies.
// Movements complete instantly and computer pacing is skipped, so the game
// is over by the time StartGame returns.
func Simulate(logger *zap.Logger, opts Options, first rules.Side) (SimulationResult, error) {
	if opts.PlayerStrategy == nil {
		opts.PlayerStrategy = StrategyFunc(Strongest)
	}
	presenter := NewInstantPresenter()
	renders := 0
	presenter.OnRender(func(Snapshot) { renders++ })

	engine, err := NewEngine(logger, presenter, ImmediateScheduler{}, opts)
	if err != nil {
		return SimulationResult{}, fmt.Errorf("create engine: %w", err)
	}
	presenter.Bind(engine)

	if !engine.StartGame(first) {
		return SimulationResult{}, errors.New("game refused to start")
	}
	winner, over := engine.Winner()
	snap := engine.Snapshot()
	if !over {
		return SimulationResult{}, fmt.Errorf("game %s stopped in phase %s on turn %d", engine.GameID(), snap.Phase, snap.Turn)
	}

	return SimulationResult{
		GameID:   engine.GameID(),
		Winner:   winner,
		Turns:    snap.Turn,
		Renders:  renders,
		Points:   snap.Points,
		Checksum: snap.Checksum(),
		Stats:    engine.Stats(),
	}, nil
}
