package main

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"slices"
	"strconv"
	"strings"
	"time"

	"chinchon/internal/app"
	"chinchon/internal/bot"
	"chinchon/internal/config"
	"chinchon/internal/domain"
	"chinchon/internal/render"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// maxSimulatedTurns stops a simulation that makes no progress.
const maxSimulatedTurns = 100000

var errStalled = errors.New("simulation did not finish")

type simOptions struct {
	Strategies []string
	Seed       int64
	Rounds     bool
}

type simResult struct {
	Winner string
	Rounds int
	Turns  int
	Scores map[string]int
}

func newSimulateCmd() *cobra.Command {
	opts := simOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a match between bots",
		Example: `  chinchon simulate --bots greedy,random
  chinchon simulate --bots greedy,greedy,greedy,random --seed 7 --rounds`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Seed == 0 {
				opts.Seed = time.Now().UnixNano()
			}
			r, err := renderer()
			if err != nil {
				return err
			}
			logger := newLogger(cmd)
			logger.Info("Simulating %d bots with seed %d", len(opts.Strategies), opts.Seed)

			res, err := simulate(opts, cmd.OutOrStdout(), r, logger)
			if err != nil {
				return err
			}
			return printScores(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringSliceVar(&opts.Strategies, "bots", []string{bot.StrategyGreedy, bot.StrategyGreedy}, "strategy of each seat: random or greedy")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed, 0 picks one")
	cmd.Flags().BoolVar(&opts.Rounds, "rounds", false, "print every closed round")
	return cmd
}

// simulate plays one match between bots on a single goroutine.
func simulate(opts simOptions, out io.Writer, r *render.Renderer, logger runtime.Logger) (simResult, error) {
	if n := len(opts.Strategies); n < domain.MinPlayers || n > domain.MaxPlayers {
		return simResult{}, fmt.Errorf("need %d to %d bots, got %d", domain.MinPlayers, domain.MaxPlayers, n)
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	cache, err := bot.NewSolverCache(config.GetGameConfig().SolverCacheSize)
	if err != nil {
		return simResult{}, err
	}
	defer cache.Close()

	var ids []string
	agents := make(map[string]*bot.Agent)
	names := make(map[string]string)
	for i, strategy := range opts.Strategies {
		brain, err := bot.NewBrain(strings.TrimSpace(strategy), cache, rand.New(rand.NewSource(rng.Int63())))
		if err != nil {
			return simResult{}, err
		}
		id := bot.BotIDPrefix + strconv.Itoa(i+1)
		ids = append(ids, id)
		names[id] = fmt.Sprintf("Bot %d (%s)", i+1, strategy)
		agents[id] = &bot.Agent{ID: id, Name: names[id], Strategy: brain}
	}
	name := func(id string) string { return names[id] }

	svc := app.NewService(rng)
	match, events, err := svc.StartMatch(ids)
	if err != nil {
		return simResult{}, err
	}

	res := simResult{}
	deliver := func(events []app.Event) {
		for _, ev := range events {
			for _, agent := range agents {
				agent.OnGameEvent(ev)
			}
			switch p := ev.Payload.(type) {
			case app.RoundClosedPayload:
				res.Rounds++
				logger.Debug("Round %d closed by %s", res.Rounds, name(p.UserID))
				if opts.Rounds {
					fmt.Fprintf(out, "Round %d\n%s\n", res.Rounds, r.RoundSummary(p.UserID, p.Results, name))
				}
			case app.PlayerRemovedPayload:
				logger.Info("%s is out (%s)", name(p.UserID), p.Reason)
			case app.MatchEndedPayload:
				res.Winner = p.WinnerID
				res.Scores = p.Scores
			}
		}
	}
	deliver(events)

	for res.Scores == nil {
		if res.Turns >= maxSimulatedTurns {
			return res, errStalled
		}
		current := match.CurrentPlayer()
		events, err := agents[current].TakeTurn(svc, match)
		deliver(events)
		if err != nil {
			return res, fmt.Errorf("turn %d of %s: %w", res.Turns, name(current), err)
		}
		res.Turns++
	}

	logger.Info("%s won after %d rounds and %d turns", name(res.Winner), res.Rounds, res.Turns)
	res.Winner = names[res.Winner]
	named := make(map[string]int, len(res.Scores))
	for id, score := range res.Scores {
		named[names[id]] = score
	}
	res.Scores = named
	return res, nil
}

func printScores(out io.Writer, res simResult) error {
	data := pterm.TableData{{"Player", "Score", ""}}
	for _, row := range sortedScores(res.Scores) {
		mark := ""
		if row.name == res.Winner {
			mark = "winner"
		}
		data = append(data, []string{row.name, strconv.Itoa(row.score), mark})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n%d rounds, %d turns\n", table, res.Rounds, res.Turns)
	return err
}

type scoreRow struct {
	name  string
	score int
}

// sortedScores orders players by score, then by name.
func sortedScores(scores map[string]int) []scoreRow {
	rows := make([]scoreRow, 0, len(scores))
	for n, s := range scores {
		rows = append(rows, scoreRow{n, s})
	}
	slices.SortFunc(rows, func(a, b scoreRow) int {
		if c := cmp.Compare(a.score, b.score); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})
	return rows
}
