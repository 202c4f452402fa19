package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"mellow/internal/deals"
	"mellow/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newDealsCmd(a *app) *cobra.Command {
	var (
		city     string
		category string
		openOnly bool
		limit    int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "deals",
		Short: "List venues with deals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listings, err := a.flow.Deals(cmd.Context())
			if err != nil {
				return err
			}

			var filtered []model.VenueListing
			for _, l := range listings {
				if city != "" && !strings.EqualFold(l.City, city) {
					continue
				}
				if category != "" && !deals.Admit(l.Categories, []string{category}) {
					continue
				}
				if openOnly && l.IsOpen == 0 {
					continue
				}
				filtered = append(filtered, l)
				if limit > 0 && len(filtered) == limit {
					break
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if filtered == nil {
					filtered = []model.VenueListing{}
				}
				return enc.Encode(filtered)
			}
			if len(filtered) == 0 {
				fmt.Fprintln(out, "No deals found.")
				return nil
			}
			fmt.Fprintln(out, renderDeals(filtered))
			return nil
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "only venues in this city")
	cmd.Flags().StringVar(&category, "category", "", "only venues whose categories mention this")
	cmd.Flags().BoolVar(&openOnly, "open", false, "only venues currently open")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func renderDeals(listings []model.VenueListing) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("NAME", "CITY", "STARS", "REVIEWS", "CATEGORIES").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, l := range listings {
		t.Row(
			l.Name,
			strings.Trim(l.City+", "+l.State, ", "),
			strconv.FormatFloat(l.Stars, 'f', 1, 64),
			strconv.Itoa(l.ReviewCount),
			l.Categories,
		)
	}
	return t.String()
}
