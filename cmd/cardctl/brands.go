package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/birdwell/trading-cards/internal/domain"
	domainerrors "github.com/birdwell/trading-cards/internal/errors"
	"github.com/birdwell/trading-cards/internal/service"
)

func (a *app) brandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "brands",
		Short: "List every brand with its collection progress",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			brands, err := invoke[*service.BrandService](a)
			if err != nil {
				return err
			}
			overview, err := brands.Overview(cmd.Context())
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), a.output, overview, func(w io.Writer) error {
				if len(overview) == 0 {
					_, err := fmt.Fprintln(w, "No sets imported yet.")
					return err
				}
				t := newTable("Brand", "Sets", "Cards", "Owned", "Complete")
				for _, b := range overview {
					t.Row(
						b.Brand,
						itoa(b.OverallStats.TotalSets),
						itoa(b.OverallStats.TotalCards),
						itoa(b.OverallStats.TotalOwnedCards),
						percent(b.OverallStats.CompletionPercentage),
					)
				}
				return writeTable(w, t)
			})
		}),
	}
}

func (a *app) brandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "brand <name>",
		Short: "Show one brand's sets grouped by year and sport",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			brands, err := invoke[*service.BrandService](a)
			if err != nil {
				return err
			}

			detail, err := brands.Details(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return withSuggestions(err)
			}

			return render(cmd.OutOrStdout(), a.output, detail, func(w io.Writer) error {
				o := detail.OverallStats
				fmt.Fprintln(w, titleStyle.Render(detail.Brand))
				fmt.Fprintf(w, "%d sets, %d/%d cards owned (%s)\n",
					o.TotalSets, o.TotalOwnedCards, o.TotalCards, percent(o.CompletionPercentage))

				t := newTable("ID", "Year", "Sport", "Set", "Cards", "Owned", "Complete")
				for _, g := range detail.YearGroups {
					for _, entries := range [][]domain.SetWithStats{g.Basketball, g.Football} {
						for _, e := range entries {
							t.Row(setRow(e.Set, e.Stats)...)
						}
					}
				}
				return writeTable(w, t)
			})
		}),
	}
}

// withSuggestions appends brand suggestions carried by a not-found error.
func withSuggestions(err error) error {
	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) {
		return err
	}
	details, ok := domainErr.Details.(map[string][]string)
	if !ok || len(details["suggestions"]) == 0 {
		return err
	}
	return fmt.Errorf("%w (did you mean: %s?)", err, strings.Join(details["suggestions"], ", "))
}
