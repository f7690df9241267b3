// Package cli implements the go-lunar command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/tartampluch/go-lunar/internal/config"
	"github.com/tartampluch/go-lunar/internal/engine"
	"github.com/tartampluch/go-lunar/internal/i18n"
	"github.com/tartampluch/go-lunar/internal/lunar"
)

// Options carries the process-wide hooks of the command tree.
type Options struct {
	// Clock supplies "today"; RealClock when nil.
	Clock engine.Clock
	// Logging is called once the flags are parsed. service is true for the
	// long-running server command.
	Logging func(debug, service bool)
}

// state holds the parsed persistent flags shared by every subcommand.
type state struct {
	Options

	debug    bool
	format   string
	settings string
	lang     string
}

var labelStyle = lipgloss.NewStyle().Bold(true).Width(config.LabelWidth)

// NewRootCmd builds the full command tree.
func NewRootCmd(o Options) *cobra.Command {
	if o.Clock == nil {
		o.Clock = engine.RealClock{}
	}
	st := &state{Options: o}

	root := &cobra.Command{
		Use:           config.AppCommand,
		Short:         config.CmdShortRoot,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains([]string{config.FormatText, config.FormatJSON}, st.format) {
				return fmt.Errorf("%s: %q", config.ErrUnknownFormat, st.format)
			}
			if st.Logging != nil {
				st.Logging(st.debug, cmd.Annotations[config.CmdAnnotationService] != "")
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&st.debug, config.FlagDebug, false, config.FlagDescDebug)
	pf.StringVarP(&st.format, config.FlagFormat, "f", config.FormatText, config.FlagDescFormat)
	pf.StringVar(&st.settings, config.FlagSettings, "", config.FlagDescSettings)
	pf.StringVar(&st.lang, config.FlagLang, "", config.FlagDescLang)

	root.AddCommand(
		newLunarCmd(st),
		newSolarCmd(st),
		newDayCmd(st),
		newTermsCmd(st),
		newMonthCmd(st),
		newYearCmd(st),
		newServeCmd(st),
		newExportCmd(st),
		newPasswordCmd(st),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command tree with the process arguments.
func Execute(ctx context.Context, o Options) error {
	return NewRootCmd(o).ExecuteContext(ctx)
}

func (st *state) settingsPath() (string, error) {
	if st.settings != "" {
		return st.settings, nil
	}
	return config.SettingsPath()
}

func (st *state) loadSettings() (*config.Settings, error) {
	path, err := st.settingsPath()
	if err != nil {
		return nil, err
	}
	return config.LoadSettings(path)
}

// translator follows --lang, then the settings file, then the default.
func (st *state) translator() (*i18n.Translator, error) {
	lang := st.lang
	if lang == "" {
		if s, err := st.loadSettings(); err == nil {
			lang = s.Language
		} else {
			slog.Debug(config.ErrSettingsRead,
				config.LogKeyComponent, config.CompCLI,
				config.LogKeyError, err,
			)
		}
	}
	return i18n.New(lang)
}

func (st *state) today() lunar.SolarDate {
	return lunar.NewSolarDate(st.Clock.Now())
}

// emit writes v as indented JSON, or calls text for the text format.
func (st *state) emit(w io.Writer, v any, text func(io.Writer) error) error {
	if st.format == config.FormatJSON {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	return text(w)
}

func field(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	_, _ = fmt.Fprintln(w, labelStyle.Render(label)+value)
}

// exactArgs is cobra.ExactArgs with the configured message.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%s: %s wants %d, got %d", config.ErrArgCount, cmd.Name(), n, len(args))
		}
		return nil
	}
}
