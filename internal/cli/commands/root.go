package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vellum-engine/vellum/internal/cli/config"
	"github.com/vellum-engine/vellum/internal/cli/ui"
	"github.com/vellum-engine/vellum/internal/logging"
	"github.com/vellum-engine/vellum/runtime/reflection"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// env is the state shared by every subcommand once the root has loaded the
// configuration and the modules.
type env struct {
	modules []reflection.Module

	configDir string
	format    string
	noColor   bool
	verbose   bool

	cfg    *config.Config
	logger *zap.Logger
	reg    *reflection.Registry
}

// reportedError marks an error whose message has already been printed.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// NewRootCommand creates the root command. The given modules are loaded into
// a fresh registry before any subcommand runs.
func NewRootCommand(modules ...reflection.Module) *cobra.Command {
	e := &env{modules: modules}

	rootCmd := &cobra.Command{
		Use:   "vellum",
		Short: "Inspect and version-check the engine's reflected types",
		Long: color.CyanString(`Vellum - engine reflection tooling

Vellum loads the engine modules into a reflection registry and lets you
browse the registered types, enums, buckets and attributes, record their
structural versions, and detect drift between builds.`),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: e.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&e.configDir, "config", "", "Directory containing vellum.yaml (default: current directory)")
	flags.StringVar(&e.format, "format", "", "Output format: table or json")
	flags.BoolVar(&e.noColor, "no-color", false, "Disable colored output")
	flags.BoolVarP(&e.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newInspectCommand(e))
	rootCmd.AddCommand(newVersionsCommand(e))
	rootCmd.AddCommand(newServeCommand(e))

	return rootCmd
}

// setup loads the configuration, applies flag overrides and builds the
// registry.
func (e *env) setup(cmd *cobra.Command, args []string) error {
	if e.noColor {
		color.NoColor = true
	}
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := config.Load(e.configDir)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), e.noColor))
		return reportedError{err}
	}

	if cmd.Flags().Changed("format") {
		switch e.format {
		case config.FormatTable, config.FormatJSON:
			cfg.Output.Format = e.format
		default:
			return fmt.Errorf("invalid --format %q: must be %q or %q", e.format, config.FormatTable, config.FormatJSON)
		}
	}
	if e.noColor {
		cfg.Output.NoColor = true
	}
	if cfg.Output.NoColor {
		color.NoColor = true
	}
	if e.verbose {
		cfg.Log.Level = "debug"
	}
	e.cfg = cfg

	e.logger = logging.OrNop(logging.NewWriter(cmd.ErrOrStderr(), cfg.Logging()))

	e.reg = reflection.NewRegistry(reflection.WithLogger(e.logger))
	for _, m := range e.modules {
		if _, err := e.reg.LoadModule(m); err != nil {
			return fmt.Errorf("failed to load module %s: %w", m.Name(), err)
		}
	}
	return nil
}

func (e *env) json() bool {
	return e.cfg.Output.Format == config.FormatJSON
}

func (e *env) colorless() bool {
	return e.cfg.Output.NoColor
}

// writeJSON writes v as indented JSON
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the vellum version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			out := cmd.OutOrStdout()
			titleColor := color.New(color.FgCyan, color.Bold)

			titleColor.Fprint(out, "Vellum version: ")
			fmt.Fprintln(out, Version)
			titleColor.Fprint(out, "Git commit: ")
			fmt.Fprintln(out, GitCommit)
			titleColor.Fprint(out, "Build date: ")
			fmt.Fprintln(out, BuildDate)
			titleColor.Fprint(out, "Go version: ")
			fmt.Fprintln(out, goVer)
		},
	}
}

// Execute runs the root command
func Execute(modules ...reflection.Module) error {
	rootCmd := NewRootCommand(modules...)
	if err := rootCmd.Execute(); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			errorColor := color.New(color.FgRed, color.Bold)
			errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return err
	}
	return nil
}
