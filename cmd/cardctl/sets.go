package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/birdwell/trading-cards/internal/domain"
	domainerrors "github.com/birdwell/trading-cards/internal/errors"
	"github.com/birdwell/trading-cards/internal/service"
)

func (a *app) setsCmd() *cobra.Command {
	var filter service.SetFilter

	cmd := &cobra.Command{
		Use:   "sets",
		Short: "List imported sets",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			sets, err := invoke[*service.SetService](a)
			if err != nil {
				return err
			}
			list, err := sets.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), a.output, list, func(w io.Writer) error {
				t := newTable("ID", "Year", "Sport", "Set", "Source")
				for _, s := range list {
					t.Row(strconv.FormatInt(s.ID, 10), s.Year, string(s.Sport), s.Name, s.SourceFile)
				}
				return writeTable(w, t)
			})
		}),
	}

	cmd.Flags().StringVar(&filter.Year, "year", "", "Only sets from this year, e.g. 2024 or 2023-24")
	cmd.Flags().StringVar(&filter.Name, "name", "", "Only sets whose name contains this text")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <set-id>",
		Short: "Show completion statistics for one set",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "set")
			if err != nil {
				return err
			}

			statsService, err := invoke[*service.StatsService](a)
			if err != nil {
				return err
			}
			result, err := statsService.ComputeStats(cmd.Context(), id)
			if err != nil {
				return err
			}
			stats, found := result.Get()
			if !found {
				return domainerrors.NotFoundf("set %d not found", id)
			}

			out := struct {
				SetID                int64           `json:"setId"`
				CompletionPercentage int             `json:"completionPercentage"`
				Stats                domain.SetStats `json:"stats"`
			}{id, stats.CompletionPercentage(), stats}

			return render(cmd.OutOrStdout(), a.output, out, func(w io.Writer) error {
				t := newTable("Cards", "Owned", "Card Types", "Players", "Complete")
				t.Row(
					itoa(stats.TotalCards),
					itoa(stats.OwnedCards),
					itoa(stats.UniqueCardTypes),
					itoa(stats.UniquePlayers),
					percent(stats.CompletionPercentage()),
				)
				return writeTable(w, t)
			})
		}),
	}
}

func (a *app) ownCmd() *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "own <card-id>...",
		Short: "Mark cards as owned",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			cards, err := invoke[*service.CardService](a)
			if err != nil {
				return err
			}

			for _, arg := range args {
				id, err := parseID(arg, "card")
				if err != nil {
					return err
				}
				card, err := cards.SetOwned(cmd.Context(), id, !remove)
				if err != nil {
					return err
				}
				state := "owned"
				if !card.IsOwned {
					state = "not owned"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "#%d %s (%s): %s\n", card.CardNumber, card.PlayerName, card.CardType, state)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "Mark the cards as not owned instead")
	return cmd
}

func parseID(s, kind string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, domainerrors.Validationf("invalid %s id %q", kind, s)
	}
	return id, nil
}
