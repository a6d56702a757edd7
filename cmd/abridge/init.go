package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/flemzord/abridge/internal/config"
	"github.com/flemzord/abridge/internal/provider"
)

func initCmd() *cobra.Command {
	var (
		useDefaults bool
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter configuration file",
		Long: `Write a starter abridge.yaml. An interactive form asks for the backend,
listen address, rate limit, log format and metrics; --defaults skips it.
Credentials are never written: the file references HF_TOKEN,
OPENAI_API_KEY, ANTHROPIC_API_KEY and ABRIDGE_TOKEN from the environment.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileName
			if len(args) == 1 {
				path = args[0]
			}
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}

			params := config.DefaultStarter()
			if !useDefaults {
				if err := runStarterForm(&params); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						return errors.New("init aborted")
					}
					return err
				}
			}

			data, err := config.Render(params)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useDefaults, "defaults", false, "Skip the interactive form")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

// runStarterForm asks for the starter values interactively.
func runStarterForm(p *config.StarterParams) error {
	modes := make([]string, len(provider.Modes))
	for i, m := range provider.Modes {
		modes[i] = string(m)
	}
	mode := string(p.Mode)
	rate := strconv.Itoa(p.RequestsPerMin)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Summarization backend").
				Description("auto tries hf, openai, then anthropic, and falls back to local.").
				Options(huh.NewOptions(modes...)...).
				Value(&mode),
			huh.NewInput().
				Title("Listen address").
				Value(&p.Bind).
				Validate(func(s string) error {
					_, _, err := net.SplitHostPort(s)
					return err
				}),
			huh.NewInput().
				Title("Requests per minute per client (0 = unlimited)").
				Value(&rate).
				Validate(func(s string) error {
					if n, err := strconv.Atoi(s); err != nil || n < 0 {
						return errors.New("enter a whole number >= 0")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Log format").
				Options(huh.NewOptions("text", "json")...).
				Value(&p.LogFormat),
			huh.NewConfirm().
				Title("Expose Prometheus metrics at /metrics?").
				Value(&p.Metrics),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	p.Mode = provider.Mode(mode)
	p.RequestsPerMin, _ = strconv.Atoi(rate)
	return nil
}
