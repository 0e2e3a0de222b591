package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/mecha-labs/steplog/internal/adapters/periphio"
	"github.com/mecha-labs/steplog/internal/cliconfig"
	logPkg "github.com/mecha-labs/steplog/pkg/log"
	"github.com/mecha-labs/steplog/pkg/steplog"
	"github.com/mecha-labs/steplog/plugins/configwatcher"
	"github.com/mecha-labs/steplog/plugins/runretention"
)

const helpBanner = `
  ███████ ████████ ███████ ██████  ██       ██████   ██████
  ██         ██    ██      ██   ██ ██      ██    ██ ██
  ███████    ██    █████   ██████  ██      ██    ██ ██   ███
       ██    ██    ██      ██      ██      ██    ██ ██    ██
  ███████    ██    ███████ ██      ███████  ██████   ██████
`

const helpDescription = `
Record step responses from your bench plant at a fixed sample rate.

Highlights:
  - Drives the stimulus output around the measurement, 100 Hz by default.
  - Exports CSV runs and fits first-order models from them.
  - Reads an ADS1115 over I2C on real boards; --sim needs no hardware.
  - Configure via file, env (STEPLOG_*), or flags.
`

var longHelp = strings.TrimSpace(helpBanner) + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  steplog --duration 2s --stimulus-pin GPIO17
  steplog --sim --repeat 3 --rest 5s
  steplog fit
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "steplog",
		Short:   "Record step responses from your bench plant at a fixed sample rate",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.steplog/config.toml),
			// then env, with explicit flags winning over both.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			cliconfig.ApplyBoard(&cfg)

			if err := cfg.Validate(); err != nil {
				return err
			}

			// Log configuration (masking API key)
			logCfg := cfg
			if len(logCfg.AuthKey) > 0 {
				logCfg.AuthKey = "*****"
			}
			log.Info().Interface("config", logCfg).Msg("configuration")

			return record(cfg, cfgFile, changed, log)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.steplog/config.toml)")
	root.Flags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for exported runs (default: $HOME/.steplog/runs)")

	root.Flags().DurationVar(&cfg.SamplePeriod, "period", cfg.SamplePeriod, "sample period")
	root.Flags().DurationVar(&cfg.Duration, "duration", cfg.Duration, "acquisition duration (0 = until max-samples or signal)")
	root.Flags().IntVar(&cfg.MaxSamples, "max-samples", cfg.MaxSamples, "sample cap per run (0 = unbounded)")

	root.Flags().Float64Var(&cfg.VRef, "vref", cfg.VRef, "ADC full-scale voltage")
	root.Flags().IntVar(&cfg.Resolution, "resolution", cfg.Resolution, "ADC full-scale counts")

	root.Flags().StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, "run ingest service URL (empty disables upload)")
	root.Flags().StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "API key for authentication")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout")

	root.Flags().StringVar(&cfg.ProbeID, "probe-id", cfg.ProbeID, "probe or rig identifier")
	root.Flags().StringVar(&cfg.Board, "board", cfg.Board, "board model (autodetected from the device tree when unset)")

	root.Flags().StringVar(&cfg.Bus, "bus", cfg.Bus, "I2C bus name (empty picks the first available)")
	root.Flags().IntVar(&cfg.Channel, "channel", cfg.Channel, "ADS1115 single-ended channel (0-3)")
	root.Flags().StringVar(&cfg.StimulusPin, "stimulus-pin", cfg.StimulusPin, "GPIO pin driving the step input")
	root.Flags().BoolVar(&cfg.Sim, "sim", cfg.Sim, "sample the simulated plant instead of hardware")

	root.Flags().IntVar(&cfg.Repeat, "repeat", cfg.Repeat, "number of acquisition cycles (0 = one)")
	root.Flags().DurationVar(&cfg.Rest, "rest", cfg.Rest, "rest between cycles")

	root.AddCommand(newSquareCmd(log))
	root.AddCommand(newFitCmd(log))

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("steplog")
		os.Exit(1)
	}
}

// record runs one or more acquisition cycles. Each cycle gets a fresh
// steplog instance: the lifecycle is terminal, one instance per run.
// Config edits are picked up between cycles via the watcher plugin;
// explicit flags keep winning over the reloaded file.
func record(cfg cliconfig.Config, cfgFile string, changed map[string]bool, zl zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logPkg.NewZerologAdapterWithLogger(zl)
	watcher := configwatcher.New(configwatcher.DefaultConfig(cfgFile))

	// Flag-set values survive hot reloads; cfg at this point carries them.
	flagCfg := cfg

	cycles := cfg.Repeat
	if cycles < 1 {
		cycles = 1
	}

	lastGen := 0
	for cycle := 1; cycle <= cycles; cycle++ {
		// Re-merge the config when the file changed since the last cycle.
		if gen := watcher.Generation(); gen > lastGen && lastGen > 0 {
			next, err := remergeConfig(cfgFile, changed, flagCfg)
			if err != nil {
				zl.Warn().Err(err).Msg("config reload failed, keeping previous")
			} else {
				cfg = next
				zl.Info().Int("cycle", cycle).Msg("applying reloaded configuration")
			}
		}
		if gen := watcher.Generation(); gen > lastGen {
			lastGen = gen
		}

		if err := runCycle(ctx, cfg, cfgFile, logger, watcher, zl); err != nil {
			return err
		}
		if ctx.Err() != nil {
			zl.Info().Msg("received signal, stopping")
			return nil
		}

		if cycle < cycles && cfg.Rest > 0 {
			select {
			case <-ctx.Done():
				zl.Info().Msg("received signal, stopping")
				return nil
			case <-time.After(cfg.Rest):
			}
		}
	}
	return nil
}

// runCycle records a single run to completion.
func runCycle(ctx context.Context, cfg cliconfig.Config, cfgFile string, logger steplog.Logger, watcher *configwatcher.Plugin, zl zerolog.Logger) error {
	opts := []steplog.Option{
		steplog.WithLogger(logger),
		steplog.WithPlugin(watcher),
		runretention.WithDefaultRunRetention(),
	}

	if !cfg.Sim {
		reader, err := periphio.OpenADS1115(periphio.ADCConfig{
			Bus:     cfg.Bus,
			Channel: cfg.Channel,
		})
		if err != nil {
			return fmt.Errorf("open ADC: %w", err)
		}
		defer reader.Close()
		opts = append(opts, steplog.WithAnalogReader(reader))

		if cfg.StimulusPin != "" {
			pin, err := periphio.OpenStimulusPin(cfg.StimulusPin)
			if err != nil {
				return fmt.Errorf("open stimulus pin: %w", err)
			}
			defer pin.Close()
			opts = append(opts, steplog.WithStimulusDriver(pin))
		}
	}

	agent, err := steplog.New(libConfig(cfg, cfgFile), opts...)
	if err != nil {
		return fmt.Errorf("create steplog: %w", err)
	}

	if err := agent.Start(ctx); err != nil {
		return fmt.Errorf("start steplog: %w", err)
	}

	// The run ends on its own (duration or sample cap) or with the signal
	// context; either way Done closes after export and upload.
	<-agent.Done()

	frozen, err := agent.Stop()
	if err != nil {
		return fmt.Errorf("stop steplog: %w", err)
	}

	zl.Info().
		Int("samples", frozen.Len()).
		Int("dropped", frozen.Dropped()).
		Str("run_id", frozen.ID().String()).
		Msg("run complete")
	return nil
}

// libConfig projects the CLI config onto the library config.
func libConfig(cfg cliconfig.Config, cfgFile string) steplog.Config {
	return steplog.Config{
		SamplePeriod: cfg.SamplePeriod,
		Duration:     cfg.Duration,
		MaxSamples:   cfg.MaxSamples,
		VRef:         cfg.VRef,
		Resolution:   int32(cfg.Resolution),
		DataDir:      cfg.DataDir,
		ServiceURL:   cfg.ServiceURL,
		AuthKey:      cfg.AuthKey,
		ProbeID:      cfg.ProbeID,
		Board:        cfg.Board,
		HTTPTimeout:  cfg.HTTPTimeout,
		ConfigPath:   cfgFile,
	}
}

// remergeConfig rebuilds the effective config from scratch: changed flag
// values seeded first, then the (possibly edited) file, then env. The
// setters skip changed keys, so explicit flags keep winning.
func remergeConfig(cfgFile string, changed map[string]bool, flagCfg cliconfig.Config) (cliconfig.Config, error) {
	next := cliconfig.DefaultConfig()
	applyChangedFlags(&next, flagCfg, changed)

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return next, err
		}
		if err := cliconfig.ApplyFileConfig(&next, fc, changed); err != nil {
			return next, err
		}
	}
	if err := cliconfig.ApplyEnvConfig(&next, changed); err != nil {
		return next, err
	}
	cliconfig.ApplyBoard(&next)
	if err := next.Validate(); err != nil {
		return next, err
	}
	return next, nil
}

// applyChangedFlags copies the fields behind explicitly set flags.
func applyChangedFlags(dst *cliconfig.Config, src cliconfig.Config, changed map[string]bool) {
	for name := range changed {
		switch name {
		case "data-dir":
			dst.DataDir = src.DataDir
		case "period":
			dst.SamplePeriod = src.SamplePeriod
		case "duration":
			dst.Duration = src.Duration
		case "max-samples":
			dst.MaxSamples = src.MaxSamples
		case "vref":
			dst.VRef = src.VRef
		case "resolution":
			dst.Resolution = src.Resolution
		case "service-url":
			dst.ServiceURL = src.ServiceURL
		case "auth-key":
			dst.AuthKey = src.AuthKey
		case "timeout":
			dst.HTTPTimeout = src.HTTPTimeout
		case "probe-id":
			dst.ProbeID = src.ProbeID
		case "board":
			dst.Board = src.Board
		case "bus":
			dst.Bus = src.Bus
		case "channel":
			dst.Channel = src.Channel
		case "stimulus-pin":
			dst.StimulusPin = src.StimulusPin
		case "sim":
			dst.Sim = src.Sim
		case "repeat":
			dst.Repeat = src.Repeat
		case "rest":
			dst.Rest = src.Rest
		}
	}
}
