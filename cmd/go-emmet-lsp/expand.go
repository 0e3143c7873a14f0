package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/CWBudde/go-emmet-lsp/internal/config"
	"github.com/CWBudde/go-emmet-lsp/internal/emmet"
)

var (
	abbreviationStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("12"))

	outputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1)
)

func expandCommand() *cli.Command {
	return &cli.Command{
		Name:      "expand",
		Usage:     "Expand abbreviations and print the result",
		ArgsUsage: "<abbreviation>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "syntax",
				Value: "markup",
				Usage: "Grammar: markup or stylesheet",
			},
			&cli.BoolFlag{
				Name:  "snippet",
				Usage: "Emit LSP snippet tab stops instead of plain text",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Frame each expansion for reading in a terminal",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return errors.New("expand: no abbreviation given")
			}

			syntax, err := parseSyntax(cmd.String("syntax"))
			if err != nil {
				return err
			}

			settings, err := loadSettings(cmd.String("config"))
			if err != nil {
				return err
			}

			cfg, err := expandConfig(settings, syntax, cmd.Bool("snippet"))
			if err != nil {
				return err
			}

			for _, abbr := range cmd.Args().Slice() {
				if err := printExpansion(cmd.Root().Writer, abbr, cfg, cmd.Bool("pretty")); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON Schema of the settings",
		Action: func(_ context.Context, cmd *cli.Command) error {
			_, err := io.WriteString(cmd.Root().Writer, config.SchemaJSON())
			return err
		},
	}
}

func parseSyntax(s string) (emmet.Syntax, error) {
	switch s {
	case "markup", "html":
		return emmet.SyntaxMarkup, nil
	case "stylesheet", "css":
		return emmet.SyntaxStylesheet, nil
	default:
		return 0, fmt.Errorf("unknown syntax %q (want markup or stylesheet)", s)
	}
}

func loadSettings(path string) (*config.Settings, error) {
	loader, err := config.NewLoader(path)
	if err != nil {
		return nil, err
	}

	settings, warnings, err := loader.Load(nil)
	for _, w := range warnings {
		log.Warn(w)
	}

	return settings, err
}

func expandConfig(settings *config.Settings, syntax emmet.Syntax, snippet bool) (emmet.Config, error) {
	ov, errs := settings.Overrides()
	if len(errs) > 0 {
		return emmet.Config{}, errors.Join(errs...)
	}

	switch {
	case !snippet:
		ov.Field = emmet.PlainField
	case ov.Field == nil:
		ov.Field = emmet.SnippetField
		ov.Text = emmet.EscapeSnippet
	default:
		ov.Text = emmet.EscapeSnippet
	}

	cfg, errs := emmet.ResolveConfig(syntax, ov)
	if len(errs) > 0 {
		return emmet.Config{}, errors.Join(errs...)
	}

	return cfg, nil
}

func printExpansion(w io.Writer, abbr string, cfg emmet.Config, pretty bool) error {
	out, err := emmet.Expand(abbr, cfg)
	if err != nil {
		return err
	}

	if pretty {
		_, err = fmt.Fprintf(w, "%s\n%s\n", abbreviationStyle.Render(abbr), outputStyle.Render(out))
	} else {
		_, err = fmt.Fprintln(w, out)
	}

	return err
}
