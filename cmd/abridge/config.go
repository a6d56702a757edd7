package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/abridge/internal/config"
	"github.com/flemzord/abridge/internal/security"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	var show bool
	check := &cobra.Command{
		Use:   "check <path>",
		Short: "Validate configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := config.Resolve(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration OK (%s)\n", config.Describe(path))
			fmt.Fprintf(out, "  backend: %s\n", cfg.Backend.Mode)
			fmt.Fprintf(out, "  bind:    %s\n", cfg.Gateway.Bind)
			if !show {
				return nil
			}

			rendered, err := redactedYAML(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%s", rendered)
			return nil
		},
	}
	check.Flags().BoolVar(&show, "show", false, "Print the effective configuration with secrets redacted")

	paths := &cobra.Command{
		Use:   "paths",
		Short: "List the locations searched for " + config.FileName,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, p := range config.SearchPaths() {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
		},
	}

	cmd.AddCommand(check, paths)
	return cmd
}

// redactedYAML renders cfg with every credential replaced by a placeholder.
func redactedYAML(cfg *config.Config) ([]byte, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	redactor := security.NewRedactor()
	redactor.AddLiteral(cfg.Secrets()...)
	redactor.RedactMap(tree)

	return yaml.Marshal(tree)
}
