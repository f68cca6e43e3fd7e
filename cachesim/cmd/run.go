package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/cpu"
	"github.com/sarchlab/cachesim/logging"
	"github.com/sarchlab/cachesim/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a cache simulation.",
	Long: "Run a cache simulation. Settings are read from CACHESIM_* " +
		"environment variables and .env files, and flags override them.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		envFiles, _ := cmd.Flags().GetStringSlice("env-file")

		cfg, err := config.Load(envFiles...)
		if err != nil {
			return err
		}

		cfg, err = applyFlags(cfg, cmd.Flags())
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg, os.Stderr)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return runSimulation(ctx, cfg, os.Stdin, os.Stdout, logger)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd.Flags())
}

func addRunFlags(f *pflag.FlagSet) {
	f.StringSlice("env-file", nil, "Read environment variables from these files")
	f.Int("capacity", 0, "Number of entries the cache can hold")
	f.Int64("seed", 0, "Random seed, 0 picks one from the clock")
	f.Int("max-ops", 0, "Largest number of operations to execute")
	f.Int("prompt-after", 0, "Operations executed before asking to continue")
	f.Bool("interactive", true, "Ask whether to continue on the console")
	f.String("log-level", "", "trace, debug, info, warn, error, or disabled")
	f.String("log-format", "", "console or json")
	f.String("record", "", "Record accesses into a SQLite file, .sqlite3 is added if missing")
	f.Bool("monitor", false, "Serve the simulation state over HTTP")
	f.Int("monitor-port", 0, "Port of the monitoring server")
	f.Bool("open-browser", false, "Open the monitoring server in a browser")
}

// applyFlags overrides the configuration with the flags set on the command
// line.
func applyFlags(cfg config.Config, flags *pflag.FlagSet) (config.Config, error) {
	var err error

	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}

		switch f.Name {
		case "capacity":
			cfg.Capacity, err = flags.GetInt(f.Name)
		case "seed":
			cfg.Seed, err = flags.GetInt64(f.Name)
		case "max-ops":
			cfg.MaxOps, err = flags.GetInt(f.Name)
		case "prompt-after":
			cfg.PromptAfter, err = flags.GetInt(f.Name)
		case "interactive":
			cfg.Interactive, err = flags.GetBool(f.Name)
		case "log-level":
			cfg.LogLevel, err = flags.GetString(f.Name)
		case "log-format":
			cfg.LogFormat, err = flags.GetString(f.Name)
		case "record":
			cfg.RecordPath, err = flags.GetString(f.Name)
		case "monitor":
			cfg.Monitor, err = flags.GetBool(f.Name)
		case "monitor-port":
			cfg.MonitorPort, err = flags.GetInt(f.Name)
		case "open-browser":
			cfg.OpenBrowser, err = flags.GetBool(f.Name)
		}
	})

	if err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config, out io.Writer) (zerolog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), err
	}

	format, err := logging.ParseFormat(cfg.LogFormat)
	if err != nil {
		return zerolog.Nop(), err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = level
	logCfg.Format = format
	logCfg.Output = out

	return logging.New(logCfg), nil
}

func runSimulation(
	ctx context.Context,
	cfg config.Config,
	in io.Reader,
	out io.Writer,
	logger zerolog.Logger,
) error {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	builder := simulation.MakeBuilder().
		WithCapacity(cfg.Capacity).
		WithSeed(seed).
		WithLogger(logger)

	if cfg.RecordPath != "" {
		builder = builder.WithRecording(cfg.RecordPath)
	}

	if cfg.Monitor {
		builder = builder.WithMonitoring(cfg.MonitorPort)
	}

	s, err := builder.Build()
	if err != nil {
		return err
	}

	defer func() {
		if err := s.Terminate(context.Background()); err != nil {
			logger.Error().Err(err).Msg("terminating simulation")
		}
	}()

	logger.Info().
		Str("id", s.ID()).
		Int64("seed", seed).
		Int("capacity", cfg.Capacity).
		Msg("simulation initialized")

	if cfg.Monitor && cfg.OpenBrowser {
		if err := s.GetMonitor().OpenInBrowser(s.MonitorURL()); err != nil {
			logger.Warn().Err(err).Msg("cannot open browser")
		}
	}

	var continuer cpu.Continuer = cpu.AlwaysContinue{}
	if cfg.Interactive {
		continuer = cpu.NewConsoleContinuer(in, out)
	}

	_, err = s.Run(ctx, cpu.RunOptions{
		MaxOps:      cfg.MaxOps,
		PromptAfter: cfg.PromptAfter,
		Continuer:   continuer,
		OnStep: func(res cpu.StepResult) {
			fmt.Fprintf(out, "\n--- OPERATION %d ---\n%s\n", res.Index, res)
		},
	})
	if err != nil {
		logger.Warn().Err(err).Msg("simulation interrupted")
		fmt.Fprintln(out, "\nSimulation interrupted.")
	} else {
		fmt.Fprintln(out, "\nSimulation completed.")
	}

	return s.Report().Print(out)
}
