// Package cli implements the luhn command: it masks card numbers read from
// standard input and writes the result to standard output.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zoobzio/luhn"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// usageError marks errors caused by bad flags, arguments or config.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

type options struct {
	configPath    string
	multithreaded bool
	workers       int
	queue         int
	logLevel      string
}

// NewCommand returns the root command. Input is read from the command's
// InOrStdin and masked lines go to OutOrStdout; logs go to ErrOrStderr.
func NewCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "luhn [-m [N]]",
		Short: "Mask credit card numbers in a text stream",
		Long: `luhn reads lines from standard input and writes them to standard output with
every digit of a Luhn-valid 14 to 16 digit number replaced by 'X'. Digits may
be separated by spaces or hyphens. Output order always matches input order.

With -m the lines are masked on a pool of workers. The legacy form "luhn -m N"
sets the pool size to N.`,
		Args:          legacyArgs(&opts),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, &opts, args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file")
	flags.BoolVarP(&opts.multithreaded, "multithreaded", "m", false, "mask lines on a worker pool")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "worker pool size (default half the CPUs)")
	flags.IntVarP(&opts.queue, "queue", "q", 0, fmt.Sprintf("pending line bound (default %d)", luhn.DefaultQueueCapacity))
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug|info|warn|error")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})
	return cmd
}

// legacyArgs accepts one optional positional worker count, only after -m.
func legacyArgs(opts *options) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		switch {
		case len(args) == 0:
			return nil
		case len(args) > 1:
			return usagef("unexpected arguments %q", args[1:])
		case !opts.multithreaded:
			return usagef("worker count %q requires -m", args[0])
		}
		if _, err := strconv.Atoi(args[0]); err != nil {
			return usagef("invalid worker count %q", args[0])
		}
		return nil
	}
}

// resolveConfig layers the config file, then flags, then the legacy
// positional worker count over the defaults.
func resolveConfig(cmd *cobra.Command, opts *options, args []string) (Config, error) {
	cfg := DefaultConfig()
	if opts.configPath != "" {
		loaded, err := LoadConfig(opts.configPath)
		if err != nil {
			return Config{}, &usageError{err: err}
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("multithreaded") {
		cfg.Mode = luhn.ModeSerial
		if opts.multithreaded {
			cfg.Mode = luhn.ModeParallel
		}
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("queue") {
		cfg.QueueCapacity = opts.queue
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if len(args) == 1 {
		n, _ := strconv.Atoi(args[0])
		cfg.Workers = n
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, &usageError{err: err}
	}
	return cfg, nil
}

// newLogger returns a text logger on w at the configured level.
func newLogger(w io.Writer, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

func run(ctx context.Context, cfg Config, stdin io.Reader, stdout, stderr io.Writer) error {
	logger := newLogger(stderr, cfg.LogLevel)
	p := luhn.NewPipeline(cfg.pipelineOptions()...)
	src := luhn.NewReaderSource(stdin)
	sink := luhn.NewWriterSink(stdout)

	entry := logger.WithField("mode", cfg.Mode)
	var err error
	if cfg.Mode == luhn.ModeParallel {
		entry = entry.WithFields(logrus.Fields{
			"workers":        p.Workers(),
			"queue_capacity": p.QueueCapacity(),
		})
		entry.Debug("starting pipeline")
		err = p.Run(ctx, src, sink)
	} else {
		entry.Debug("starting pipeline")
		err = p.RunSerial(ctx, src, sink)
	}

	stats := p.Stats()
	entry = entry.WithFields(logrus.Fields{
		"lines":         stats.Lines,
		"masked_digits": stats.MaskedDigits,
		"max_pending":   stats.MaxPending,
	})
	if err != nil {
		entry.WithError(err).Error("masking stopped")
		return err
	}
	entry.Info("masking finished")
	return nil
}

// Run executes the command with args and returns the process exit code.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := NewCommand()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	var uerr *usageError
	if errors.As(err, &uerr) {
		fmt.Fprintf(stderr, "luhn: %v\nRun 'luhn --help' for usage.\n", err)
		return ExitUsage
	}
	return ExitFailure
}
