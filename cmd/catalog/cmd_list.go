package main

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/vyrodovalexey/media-catalog/internal/browse"
	"github.com/vyrodovalexey/media-catalog/internal/filter"
	"github.com/vyrodovalexey/media-catalog/internal/model"
	"github.com/vyrodovalexey/media-catalog/internal/ordering"
)

type ListCmd struct {
	Category string            `arg:"" help:"Category to list (books, movies, series, music)"`
	Filter   map[string]string `short:"f" help:"Filter as dimension=value; repeatable"`
	Sort     string            `short:"s" default:"added-desc" help:"Sort key such as title-asc or rating-desc"`
	JSON     bool              `help:"Output the visible records as JSON"`
}

func (cmd *ListCmd) Run(g *Globals) error {
	c, err := model.ParseCategory(cmd.Category)
	if err != nil {
		return fmt.Errorf("%w: %s", err, cmd.Category)
	}

	if !ordering.ParseSpec(cmd.Sort).Valid() {
		return fmt.Errorf("invalid sort key: %s", cmd.Sort)
	}

	dims := browse.Dimensions(c)
	for dim := range cmd.Filter {
		if !slices.ContainsFunc(dims, func(d filter.Dimension) bool { return d.Name == dim }) {
			return fmt.Errorf("unknown filter dimension %q for %s", dim, c)
		}
	}

	records, err := g.Gateway.List(context.Background(), c)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", c, err)
	}

	views := browse.NewRecordViews(records)
	orch := browse.New(browse.ItemViews(views), dims, browse.WithLocale(g.Locale))
	for dim, value := range cmd.Filter {
		orch.SelectChip(dim, value)
	}
	snap := orch.ChangeSort(cmd.Sort)

	visible := orch.VisibleItems()
	if cmd.JSON {
		out := make([]model.Record, 0, len(visible))
		for _, item := range visible {
			out = append(out, item.(*browse.RecordView).Record)
		}
		enc := json.NewEncoder(g.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(visible) == 0 {
		fmt.Fprintln(g.Out, "No records found.")
		return nil
	}

	w := tabwriter.NewWriter(g.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tADDED\tRATING\tYEAR\tCOUNTRY")
	fmt.Fprintln(w, "--\t-----\t-----\t------\t----\t-------")
	for _, item := range visible {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			item.Field(model.FieldID),
			item.Field(model.FieldTitle),
			item.Field(model.FieldAddedDate),
			item.Field(model.FieldRating),
			item.Field(model.FieldYear),
			item.Field(model.FieldCountry),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(g.Out, "%d / %d\n", snap.Visible, snap.Total)
	return nil
}
