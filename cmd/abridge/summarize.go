package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/flemzord/abridge/internal/band"
	"github.com/flemzord/abridge/internal/extract"
	"github.com/flemzord/abridge/internal/pipeline"
	"github.com/flemzord/abridge/pkg/app"
)

func summarizeCmd() *cobra.Command {
	var (
		ratio  float64
		level  string
		sample bool
		html   bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "summarize [file|-]",
		Short: "Summarize a document with the configured backend",
		Long: `Summarize a document read from a file, or from stdin when the argument
is "-" or omitted. The summary is printed to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedLevel, err := pipeline.ParseLevel(level)
			if err != nil {
				return err
			}

			raw, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			text := string(raw)
			if html {
				page, err := extract.Text(text)
				if err != nil && !errors.Is(err, extract.ErrNoText) {
					return err
				}
				text = page.Text
			}

			c, err := app.Setup(runParams(cmd))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			res, err := c.Pipeline.Summarize(ctx, pipeline.Request{
				Text:     text,
				Ratio:    ratio,
				Level:    parsedLevel,
				DoSample: sample,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			_, err = fmt.Fprintln(out, res.Summary)
			return err
		},
	}

	cmd.Flags().Float64Var(&ratio, "ratio", band.DefaultRatio, "Target length as a fraction of the input (0.05 to 0.30)")
	cmd.Flags().StringVar(&level, "level", string(pipeline.LevelRatio), "Strategy: ratio or concise")
	cmd.Flags().BoolVar(&sample, "sample", false, "Allow sampling for more varied wording")
	cmd.Flags().BoolVar(&html, "html", false, "Treat the input as HTML and extract its readable text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result (path, chunks, band) as JSON")
	return cmd
}

// readInput reads the named file, or in when no file or "-" is given.
func readInput(in io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", args[0], err)
	}
	return data, nil
}
