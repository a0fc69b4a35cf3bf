package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tordrt/roomddl"
	"github.com/tordrt/roomddl/internal/config"
)

// Set via -ldflags at build time
var version = "dev"

// app carries state shared by the root command and its subcommands
type app struct {
	v          *viper.Viper
	configFile string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	var (
		source         string
		outputFile     string
		outputDir      string
		format         string
		versionComment bool
	)

	cmd := &cobra.Command{
		Use:   "roomddl [source]",
		Short: "Extract SQL DDL from a Room schema JSON file",
		Long: `roomddl reads a Room database schema JSON file, substitutes table and view names
into the embedded CREATE statements, and writes them out as a SQL script.`,
		Example: `  roomddl app/schemas/com.example.AppDatabase/3.json
  roomddl schema.json -o -                 # write to stdout
  roomddl schema.json --output-dir build/ddl
  roomddl schema.json --version-comment --format markdown -o schema.md`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExtract(cmd, args)
		},
	}

	cmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default is ./"+config.DefaultFileName+" if present)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.Flags().StringVarP(&source, "source", "s", "", "Room schema JSON file")
	cmd.Flags().StringVarP(&outputFile, "output", "o", config.DefaultDestination, "Output file, or - for stdout")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory for one file per table and view")
	cmd.Flags().StringVarP(&format, "format", "f", "sql", "Output format: sql or markdown")
	cmd.Flags().BoolVar(&versionComment, "version-comment", false, "Prepend a generation comment with the schema version")

	_ = a.v.BindPFlag("source", cmd.Flags().Lookup("source"))
	_ = a.v.BindPFlag("destination", cmd.Flags().Lookup("output"))
	_ = a.v.BindPFlag("output_dir", cmd.Flags().Lookup("output-dir"))
	_ = a.v.BindPFlag("format", cmd.Flags().Lookup("format"))
	_ = a.v.BindPFlag("version_comment", cmd.Flags().Lookup("version-comment"))

	cmd.AddCommand(newApplyCmd(a))
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// load reads settings and builds the logger
func (a *app) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return nil, nil, err
	}

	level := slog.LevelDebug
	if !a.verbose {
		if level, err = config.ParseLogLevel(cfg.LogLevel); err != nil {
			return nil, nil, err
		}
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}

// resolveSource prefers the positional argument over configured values
func resolveSource(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Source != "" {
		return cfg.Source, nil
	}
	return "", fmt.Errorf("a schema source is required (argument, --source, or source in %s)", config.DefaultFileName)
}

func (a *app) runExtract(cmd *cobra.Command, args []string) error {
	cfg, logger, err := a.load(cmd)
	if err != nil {
		return err
	}

	source, err := resolveSource(args, cfg)
	if err != nil {
		return err
	}

	// Validate flag combinations
	if cmd.Flags().Changed("output") && cfg.OutputDir != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}

	opts := &roomddl.Options{
		VersionComment: cfg.VersionComment,
		Format:         cfg.Format,
		Logger:         logger,
	}

	// Multi-file output
	if cfg.OutputDir != "" {
		if err := roomddl.ExtractDir(source, cfg.OutputDir, opts); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Generated DDL files in %s\n", cfg.OutputDir)
		return nil
	}

	// Standard output
	if cfg.Destination == "-" {
		f, err := os.Open(source)
		if err != nil {
			return fmt.Errorf("%w: %w", roomddl.ErrInputUnavailable, err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				logger.Warn("failed to close source file", "error", err)
			}
		}()
		return roomddl.Parse(f, cmd.OutOrStdout(), opts)
	}

	if err := roomddl.ExtractFile(source, cfg.Destination, opts); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Generated DDL: %s\n", cfg.Destination)
	return nil
}

func run(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.Execute()
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
