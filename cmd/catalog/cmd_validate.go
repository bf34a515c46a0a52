package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/vyrodovalexey/media-catalog/internal/model"
)

var ErrInvalidRecords = errors.New("catalog contains invalid records")

type ValidateCmd struct {
	Category string `arg:"" help:"Category to validate (books, movies, series, music)"`
	Quiet    bool   `short:"q" help:"Only print invalid records"`
}

func (cmd *ValidateCmd) Run(g *Globals) error {
	c, err := model.ParseCategory(cmd.Category)
	if err != nil {
		return fmt.Errorf("%w: %s", err, cmd.Category)
	}

	records, err := g.Gateway.List(context.Background(), c)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", c, err)
	}

	w := tabwriter.NewWriter(g.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tRESULT\tDETAILS")
	fmt.Fprintln(w, "--\t------\t-------")

	invalid := 0
	for i, record := range records {
		id := record.ID()
		if id == "" {
			id = fmt.Sprintf("#%d", i)
		}

		result := g.Gateway.Validate(c, record)
		switch {
		case !result.Valid:
			invalid++
			fmt.Fprintf(w, "%s\tinvalid\t%s\n", id, strings.Join(result.Errors, "; "))
		case len(result.Warnings) > 0 && !cmd.Quiet:
			fmt.Fprintf(w, "%s\tok\t%s\n", id, strings.Join(result.Warnings, "; "))
		case !cmd.Quiet:
			fmt.Fprintf(w, "%s\tok\t\n", id)
		}
	}

	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(g.Out, "%d of %d %s records valid\n", len(records)-invalid, len(records), c)
	if invalid > 0 {
		return ErrInvalidRecords
	}
	return nil
}
