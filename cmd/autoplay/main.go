// Command autoplay runs unattended games against the in-process engine and
// prints aggregate statistics. Useful for sanity-checking configurations
// and comparing simple strategies without a server.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/jfelder/twenty48/game/config"
	"github.com/jfelder/twenty48/game/engine"
)

// gameStats aggregates the outcomes of a batch of games.
type gameStats struct {
	games       int
	victories   int
	totalScore  int
	bestScore   int
	bestTile    int
	totalMoves  int
	longestGame int
}

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "play unattended games and report statistics",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "games",
				Value: 10,
				Usage: "number of games to play",
			},
			&cli.StringFlag{
				Name:  "strategy",
				Value: "greedy",
				Usage: "move strategy: random or greedy",
			},
			&cli.IntFlag{
				Name:  "seed",
				Value: 0,
				Usage: "random seed (0 uses the current time)",
			},
			&cli.StringFlag{
				Name:  "configs",
				Usage: "config directory (optional)",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "config ID to play (requires --configs)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "print per-game results",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	games := int(cmd.Int("games"))
	if games < 1 {
		return fmt.Errorf("games must be at least 1")
	}

	strategy := cmd.String("strategy")
	if strategy != "random" && strategy != "greedy" {
		return fmt.Errorf("unknown strategy %q (want random or greedy)", strategy)
	}

	seed := int64(cmd.Int("seed"))
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	gameConfig, err := resolveConfig(cmd.String("configs"), cmd.String("config"))
	if err != nil {
		return err
	}

	stats := gameStats{}
	for i := 0; i < games; i++ {
		score, highest, moves, victory, err := playGame(gameConfig, strategy, rng)
		if err != nil {
			return fmt.Errorf("game %d failed: %w", i+1, err)
		}

		stats.games++
		stats.totalScore += score
		stats.totalMoves += moves
		if victory {
			stats.victories++
		}
		if score > stats.bestScore {
			stats.bestScore = score
		}
		if highest > stats.bestTile {
			stats.bestTile = highest
		}
		if moves > stats.longestGame {
			stats.longestGame = moves
		}

		if cmd.Bool("verbose") {
			fmt.Printf("game %3d: score=%-6d best=%-5d moves=%-4d victory=%t\n",
				i+1, score, highest, moves, victory)
		}
	}

	fmt.Printf("\nPlayed %d game(s) with %s strategy (seed %d, config %s)\n",
		stats.games, strategy, seed, gameConfig.Name)
	fmt.Printf("  victories:    %d\n", stats.victories)
	fmt.Printf("  best score:   %d\n", stats.bestScore)
	fmt.Printf("  best tile:    %d\n", stats.bestTile)
	fmt.Printf("  avg score:    %d\n", stats.totalScore/stats.games)
	fmt.Printf("  avg moves:    %d\n", stats.totalMoves/stats.games)
	fmt.Printf("  longest game: %d moves\n", stats.longestGame)
	return nil
}

// resolveConfig loads the requested config from a directory, or falls back
// to the classic ruleset.
func resolveConfig(configDir, configID string) (*engine.GameConfig, error) {
	if configDir == "" {
		if configID != "" {
			return nil, fmt.Errorf("--config requires --configs")
		}
		return engine.DefaultConfig(), nil
	}

	manager, err := config.NewManager(configDir)
	if err != nil {
		return nil, err
	}
	if configID == "" {
		return manager.GetDefault(), nil
	}
	return manager.LoadConfig(configID)
}

// playGame runs a single game to completion and reports its outcome.
func playGame(gameConfig *engine.GameConfig, strategy string, rng *rand.Rand) (score, highest, moves int, victory bool, err error) {
	eng, err := engine.NewEngineWithRand(gameConfig, rng)
	if err != nil {
		return 0, 0, 0, false, err
	}

	for !eng.IsGameOver() {
		direction := pickMove(eng, gameConfig, strategy, rng)
		if direction == "" {
			break
		}
		if _, err := eng.Move(direction); err != nil {
			return 0, 0, 0, false, err
		}
	}

	state := eng.GetState()
	return state.Score, state.HighestTile, state.TotalMoves, state.Victory, nil
}

// pickMove selects the next direction, or "" when no move is playable.
func pickMove(eng *engine.GameEngine, gameConfig *engine.GameConfig, strategy string, rng *rand.Rand) string {
	possible := eng.GetPossibleMoves()
	if len(possible) == 0 {
		return ""
	}
	if strategy == "random" {
		return possible[rng.Intn(len(possible))]
	}
	return pickGreedy(eng, gameConfig, possible)
}

// pickGreedy simulates each playable direction on a scratch engine and
// picks the one with the largest immediate score gain. The spawn after the
// simulated move does not affect the gain, so the choice is deterministic.
func pickGreedy(eng *engine.GameEngine, gameConfig *engine.GameConfig, possible []string) string {
	base := eng.GetState()
	best := possible[0]
	bestGain := -1

	for _, direction := range possible {
		scratch, err := engine.NewEngineWithRand(gameConfig, rand.New(rand.NewSource(1)))
		if err != nil {
			continue
		}
		if err := scratch.SetState(base); err != nil {
			continue
		}
		if _, err := scratch.Move(direction); err != nil {
			continue
		}
		gain := scratch.GetScore() - base.Score
		if gain > bestGain {
			bestGain = gain
			best = direction
		}
	}
	return best
}
