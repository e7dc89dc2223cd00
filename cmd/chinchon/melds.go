package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"chinchon/internal/domain"
	"chinchon/internal/render"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var errDuplicateCard = errors.New("card given twice")

func newMeldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "melds CARD...",
		Short: "Split a hand into its best melds",
		Example: `  chinchon melds "1 de copas" 2c 3c 5e 5o 5b 9o
  chinchon melds 4o 5o 6o 7o 8o 9o 10o`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hand, err := domain.ParseCards(args)
			if err != nil {
				return err
			}
			if err := checkDistinct(hand); err != nil {
				return err
			}
			r, err := renderer()
			if err != nil {
				return err
			}
			return printMelds(cmd.OutOrStdout(), r, hand)
		},
	}
}

// checkDistinct rejects a hand holding the same card twice; one deck has no copies.
func checkDistinct(hand []domain.Card) error {
	seen := make(map[domain.Card]bool, len(hand))
	for _, c := range hand {
		if seen[c] {
			return fmt.Errorf("%w: %s", errDuplicateCard, c)
		}
		seen[c] = true
	}
	return nil
}

func printMelds(out io.Writer, r *render.Renderer, hand []domain.Card) error {
	domain.SortCards(hand)
	d := domain.Decompose(hand)

	data := pterm.TableData{{"Meld", "Kind", "Points"}}
	for _, m := range d.Melds {
		kind := "set"
		if m.IsRun() {
			kind = "run"
		}
		data = append(data, []string{r.Hand(m), kind, strconv.Itoa(m.Points())})
	}
	if len(d.Leftovers) > 0 {
		data = append(data, []string{r.Hand(d.Leftovers), "leftover", strconv.Itoa(d.Points)})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}

	summary := fmt.Sprintf("%d points left", d.Points)
	if len(hand) == domain.HandSize && len(d.Melds) == 1 && d.Points == 0 {
		summary = "chinchón!"
	}
	_, err = fmt.Fprintf(out, "%s\n%s\n", table, summary)
	return err
}
