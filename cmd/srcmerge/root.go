package main

import (
	"fmt"
	"strings"

	"srcmerge/internal/config"
	"srcmerge/internal/errors"
	"srcmerge/internal/log"
	"srcmerge/internal/output"
	"srcmerge/internal/tui"
	"srcmerge/internal/tui/styles"
	"srcmerge/internal/watch"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// app carries the loaded configuration and the flag values shared by all
// commands.
type app struct {
	cfgFile  string
	output   string
	dest     string
	exts     []string
	exclude  []string
	encoding string
	logFile  string
	theme    string
	debug    bool
	noWatch  bool

	cfg *config.Config
	// clipboard overrides the system clipboard in tests
	clipboard output.ClipboardSink
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "srcmerge [path]",
		Short: "Pick source files and merge them into one document",
		Long: `srcmerge loads a directory, lets you filter and select its files,
shows a live token estimate and merges the selection into a single
file, the clipboard, or both.`,
		Version:           version,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.prepare,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}

	rootCmd.SetHelpTemplate(drawLogo() + "\n\n" + rootCmd.HelpTemplate())

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/srcmerge/config.yaml)")
	flags.StringVarP(&a.output, "output", "o", "", "merged output file")
	flags.StringVarP(&a.dest, "dest", "d", "", "output destination: file, clipboard or file_and_clipboard")
	flags.StringSliceVarP(&a.exts, "ext", "e", nil, "only load files with these extensions")
	flags.StringSliceVarP(&a.exclude, "exclude", "x", nil, "additional glob patterns to skip")
	flags.StringVar(&a.encoding, "encoding", "", "tiktoken encoding or model name, or \"whitespace\"")
	flags.StringVar(&a.logFile, "log-file", "", "log file (default is the user cache directory)")
	flags.StringVar(&a.theme, "theme", "", "color theme: "+strings.Join(config.ListThemes(), ", "))
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&a.noWatch, "no-watch", false, "do not reload when the source changes")

	rootCmd.AddCommand(newMergeCmd(a))
	rootCmd.AddCommand(newCountCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))

	return rootCmd
}

// prepare loads the configuration, applies flag overrides and sets up
// logging and the theme.
func (a *app) prepare(cmd *cobra.Command, args []string) error {
	cfg, err := a.effectiveConfig(cmd, args)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logOpts := []log.Option{log.WithFile(cfg.LogFile())}
	if cfg.Logging.JSON {
		logOpts = append(logOpts, log.WithJSON())
	}
	if err := log.Configure(logOpts...); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), warningText(err.Error()))
	}
	log.SetDebug(cfg.Logging.Debug)

	styles.Apply(styles.Palette{
		Primary:  cfg.Theme.Primary,
		Success:  cfg.Theme.Success,
		Warning:  cfg.Theme.Warning,
		Error:    cfg.Theme.Error,
		Info:     cfg.Theme.Info,
		Emphasis: cfg.Theme.Emphasis,
		Border:   cfg.Theme.Border,
	})

	log.LogWithFields(log.F("command", cmd.Name()), log.F("source", cfg.Source.Path), log.F("version", version)).Debug("configuration loaded")
	return nil
}

// effectiveConfig reads the configuration file and applies the flags given
// on the command line.
func (a *app) effectiveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if a.cfgFile != "" {
		cfg, err = config.LoadConfigFile(a.cfgFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.Source.Path = args[0]
	}
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output.Path = a.output
	}
	if flags.Changed("dest") {
		cfg.Output.Destination = a.dest
	}
	if flags.Changed("ext") {
		cfg.Source.Extensions = a.exts
	}
	if flags.Changed("exclude") {
		cfg.Source.Exclude = append(cfg.Source.Exclude, a.exclude...)
	}
	if flags.Changed("encoding") {
		cfg.Tokens.Encoding = a.encoding
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = a.logFile
	}
	if flags.Changed("debug") {
		cfg.Logging.Debug = a.debug
	}
	if flags.Changed("no-watch") {
		cfg.Watch.Enabled = !a.noWatch
	}
	if flags.Changed("theme") {
		cfg.Theme.Name = a.theme
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if flags.Changed("theme") {
		cfg.ApplyTheme(a.theme)
	}
	return cfg, nil
}

func (a *app) clip() output.ClipboardSink {
	if a.clipboard != nil {
		return a.clipboard
	}
	return output.SystemClipboard{}
}

func (a *app) runTUI(cmd *cobra.Command) error {
	cfg := a.cfg

	var watcher *watch.Watcher
	if cfg.Watch.Enabled {
		w, err := watch.New(watch.Options{
			Filter:   cfg.Filter(),
			Debounce: cfg.Debounce(),
			Ignore:   []string{cfg.Output.Path},
		})
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			log.LogError(err, "source watcher disabled")
		} else {
			defer w.Stop()
			watcher = w
		}
	}

	m, err := tui.New(tui.Options{
		Context:   cmd.Context(),
		Config:    cfg,
		Clipboard: a.clip(),
		Watcher:   watcher,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return errors.Wrap(err, "error running TUI")
	}
	return nil
}
