package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/wallwar/wallwar-server/internal/config"
	"github.com/wallwar/wallwar-server/internal/game"
	"github.com/wallwar/wallwar-server/internal/game/rules"
	"github.com/wallwar/wallwar-server/internal/logging"
	"go.uber.org/zap"
)

var (
	configPath     = flag.String("config", "config/config.yaml", "path to configuration file")
	games          = flag.Int("games", 100, "number of games to play")
	seed           = flag.Uint64("seed", 1, "seed of the first game; game i uses seed+i")
	playerStrategy = flag.String("player-strategy", "weakest", "strategy driving the player side")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	computer, err := game.LookupStrategy(cfg.Computer.Strategy)
	if err != nil {
		logger.Fatal("invalid computer strategy", zap.Error(err))
	}
	player, err := game.LookupStrategy(*playerStrategy)
	if err != nil {
		logger.Fatal("invalid player strategy", zap.Error(err))
	}

	var (
		wins       game.PerSide[int]
		totalTurns int
		maxTurns   int
		totals     game.PerSide[game.SideStats]
	)
	for i := 0; i < *games; i++ {
		first := rules.SidePlayer
		if i%2 == 1 {
			first = rules.SideComputer
		}
		result, err := game.Simulate(logger.Named("engine"), game.Options{
			RankCount:        cfg.Game.RankCount,
			MaxPoints:        cfg.Game.MaxPoints,
			Seed:             *seed + uint64(i),
			ComputerStrategy: computer,
			PlayerStrategy:   player,
			StrictInvariants: cfg.Game.StrictInvariants,
		}, first)
		if err != nil {
			logger.Fatal("simulation failed", zap.Int("game", i), zap.Error(err))
		}

		wins.Set(result.Winner, wins.Get(result.Winner)+1)
		totalTurns += result.Turns
		maxTurns = max(maxTurns, result.Turns)
		for _, side := range rules.Sides() {
			totals.Set(side, addStats(totals.Get(side), result.Stats.Sides.Get(side)))
		}

		logger.Debug("game finished",
			zap.Int("game", i),
			zap.Stringer("first", first),
			zap.Stringer("winner", result.Winner),
			zap.Int("turns", result.Turns),
			zap.String("checksum", result.Checksum),
		)
	}

	if *games == 0 {
		return
	}
	logger.Info("simulation complete",
		zap.Int("games", *games),
		zap.String("player_strategy", *playerStrategy),
		zap.String("computer_strategy", cfg.Computer.Strategy),
		zap.Int("player_wins", wins.Player),
		zap.Int("computer_wins", wins.Computer),
		zap.Float64("avg_turns", float64(totalTurns)/float64(*games)),
		zap.Int("max_turns", maxTurns),
		zap.Any("player_totals", totals.Player),
		zap.Any("computer_totals", totals.Computer),
	)
}

func addStats(a, b game.SideStats) game.SideStats {
	return game.SideStats{
		Turns:        a.Turns + b.Turns,
		Draws:        a.Draws + b.Draws,
		Ties:         a.Ties + b.Ties,
		Attacks:      a.Attacks + b.Attacks,
		Penetrations: a.Penetrations + b.Penetrations,
		PointsLost:   a.PointsLost + b.PointsLost,
		EmptyDecks:   a.EmptyDecks + b.EmptyDecks,
		Exhaustions:  a.Exhaustions + b.Exhaustions,
	}
}
