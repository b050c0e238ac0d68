package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/settle/internal/accounts"
	"github.com/cleared-dev/settle/internal/config"
	"github.com/cleared-dev/settle/internal/engine"
	"github.com/cleared-dev/settle/internal/importer"
	"github.com/cleared-dev/settle/internal/ledger"
	"github.com/cleared-dev/settle/internal/logging"
	"github.com/cleared-dev/settle/internal/metrics"
	promcollector "github.com/cleared-dev/settle/internal/metrics/prometheus"
	"github.com/cleared-dev/settle/internal/model"
	"github.com/cleared-dev/settle/internal/rejects"
)

// ErrInconsistent is returned when the final accounts disagree with the
// ledger that produced them.
var ErrInconsistent = errors.New("account book inconsistent with ledger")

type processFlags struct {
	configPath      string
	output          string
	onError         string
	logLevel        string
	logFormat       string
	metricsTextfile string
	rejectsFile     string
}

func newProcessCommand() *cobra.Command {
	var flags processFlags

	cmd := &cobra.Command{
		Use:   "process <transactions.csv|->",
		Short: "Apply a transaction feed and print the resulting account balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}

			logCfg := logging.DefaultConfig()
			logCfg.Level = cfg.Logging.Level
			logCfg.Format = cfg.Logging.Format
			log, err := logging.NewLogger(logCfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			in, closeIn, err := openInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer closeIn()

			opts := runOptions{
				config:    cfg,
				log:       log.Named("process"),
				collector: metrics.NoOpCollector{},
			}
			var prom *promcollector.Collector
			if cfg.Metrics.Textfile != "" {
				prom = promcollector.NewCollector("settle")
				opts.collector = prom
			}
			if cfg.Processing.RejectsFile != "" {
				f, err := os.Create(cfg.Processing.RejectsFile)
				if err != nil {
					return fmt.Errorf("creating rejects file: %w", err)
				}
				defer f.Close()
				if opts.rejects, err = rejects.NewWriter(f); err != nil {
					return err
				}
			}

			// Buffer the report so a failed run never leaves a partial file.
			var report bytes.Buffer
			_, runErr := runProcess(cmd.Context(), in, &report, opts)

			if prom != nil {
				if err := prom.WriteTextfile(cfg.Metrics.Textfile); err != nil {
					log.Error("metrics export failed", zap.Error(err))
				}
			}
			if runErr != nil {
				return runErr
			}
			return writeOutput(flags.output, cmd.OutOrStdout(), report.Bytes())
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "", "path to a settle.yaml config file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the account report to a file instead of stdout")
	cmd.Flags().StringVar(&flags.onError, "on-error", "", "policy for rejected transactions: skip or abort")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	cmd.Flags().StringVar(&flags.logFormat, "log-format", "", "log format: console or json")
	cmd.Flags().StringVar(&flags.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file after the run")
	cmd.Flags().StringVar(&flags.rejectsFile, "rejects", "", "write rows that were not applied to this CSV file")

	return cmd
}

// loadConfig layers defaults, the config file, SETTLE_* variables and
// explicitly set flags, in that order.
func loadConfig(cmd *cobra.Command, flags processFlags) (*config.Config, error) {
	cfg := config.Default()
	if flags.configPath != "" {
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	set := cmd.Flags().Changed
	if set("on-error") {
		cfg.Processing.OnError = flags.onError
	}
	if set("log-level") {
		cfg.Logging.Level = flags.logLevel
	}
	if set("log-format") {
		cfg.Logging.Format = flags.logFormat
	}
	if set("metrics-textfile") {
		cfg.Metrics.Textfile = flags.metricsTextfile
	}
	if set("rejects") {
		cfg.Processing.RejectsFile = flags.rejectsFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening transactions: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func writeOutput(path string, stdout io.Writer, report []byte) error {
	if path == "" {
		_, err := stdout.Write(report)
		return err
	}
	if err := os.WriteFile(path, report, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// runStats summarizes one run.
type runStats struct {
	Rows      int
	Applied   int
	Rejected  int
	Malformed int
	Deposited decimal.Decimal
	Withdrawn decimal.Decimal
}

// runOptions carries the sinks of one run.
type runOptions struct {
	config    *config.Config
	log       *logging.Logger
	collector metrics.Collector
	rejects   *rejects.Writer // nil when disabled
}

// runProcess streams the feed through a fresh Processor and writes the
// account report to out. It stops early on context cancellation, on a feed
// that cannot be read, or on the first bad record when the policy is abort.
func runProcess(ctx context.Context, in io.Reader, out io.Writer, opts runOptions) (stats runStats, err error) {
	stats = runStats{Deposited: decimal.Zero, Withdrawn: decimal.Zero}
	abort := opts.config.Processing.OnError == config.OnErrorAbort
	log, collector := opts.log, opts.collector

	if opts.rejects != nil {
		defer func() {
			if flushErr := opts.rejects.Flush(); flushErr != nil && err == nil {
				err = fmt.Errorf("writing rejects: %w", flushErr)
			}
		}()
	}
	reject := func(e rejects.Entry) error {
		if opts.rejects == nil {
			return nil
		}
		return opts.rejects.Write(e)
	}

	proc := engine.NewProcessor(accounts.NewBook(), ledger.New())
	feed := importer.NewReader(in)

	for {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("processing interrupted after %d rows: %w", stats.Rows, err)
		}

		txn, err := feed.Next()
		if err == io.EOF {
			break
		}
		var rowErr *importer.RowError
		if errors.As(err, &rowErr) {
			stats.Rows++
			stats.Malformed++
			collector.RecordMalformed()
			if err := reject(rejects.FromRecord(rowErr.Row, rowErr.Record, rejects.ReasonMalformed, rowErr.Err)); err != nil {
				return stats, err
			}
			if abort {
				log.Error("malformed row", zap.Int("row", rowErr.Row), zap.Error(rowErr.Err))
				return stats, err
			}
			log.Warn("malformed row skipped", zap.Int("row", rowErr.Row), zap.Error(rowErr.Err))
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("reading transactions: %w", err)
		}
		stats.Rows++

		fields := []zap.Field{
			zap.Int("row", feed.Row()),
			zap.String("kind", string(txn.Kind)),
			zap.Uint16("client", uint16(txn.Client)),
			zap.Uint32("tx", uint32(txn.Tx)),
		}

		if err := proc.Process(txn); err != nil {
			reason := engine.Reason(err)
			stats.Rejected++
			collector.RecordTransaction(string(txn.Kind), reason)
			rowLog := log.With(fields...)
			if err := reject(rejectFor(feed.Row(), txn, reason, err)); err != nil {
				return stats, err
			}
			if abort {
				rowLog.Error("transaction rejected", zap.String("reason", reason), zap.Error(err))
				return stats, fmt.Errorf("row %d: %w", feed.Row(), err)
			}
			rowLog.Warn("transaction rejected", zap.String("reason", reason), zap.Error(err))
			continue
		}

		stats.Applied++
		collector.RecordTransaction(string(txn.Kind), metrics.OutcomeApplied)
		log.Debug("transaction applied", fields...)
		switch txn.Kind {
		case model.KindDeposit:
			stats.Deposited = stats.Deposited.Add(txn.Amount.Decimal())
		case model.KindWithdrawal:
			stats.Withdrawn = stats.Withdrawn.Add(txn.Amount.Decimal())
		}
	}

	if violations := proc.Verify(); len(violations) > 0 {
		for _, v := range violations {
			log.Error("consistency check failed",
				zap.String("check", v.Check),
				zap.Uint16("client", uint16(v.Client)),
				zap.String("detail", v.Description),
			)
		}
		return stats, fmt.Errorf("%w: %d violations, first: %v", ErrInconsistent, len(violations), violations[0])
	}

	snapshot := proc.Accounts()
	locked := 0
	for _, acct := range snapshot {
		if acct.Locked {
			locked++
		}
	}
	collector.RecordAccounts(len(snapshot)-locked, locked)

	if err := accounts.WriteAccounts(out, snapshot); err != nil {
		return stats, fmt.Errorf("writing report: %w", err)
	}

	log.Info("feed processed",
		zap.Int("rows", stats.Rows),
		zap.Int("applied", stats.Applied),
		zap.Int("rejected", stats.Rejected),
		zap.Int("malformed", stats.Malformed),
		zap.Int("accounts", len(snapshot)),
		zap.Int("locked", locked),
		zap.String("deposited", stats.Deposited.StringFixed(4)),
		zap.String("withdrawn", stats.Withdrawn.StringFixed(4)),
	)
	return stats, nil
}

func rejectFor(row int, txn model.Transaction, reason string, err error) rejects.Entry {
	e := rejects.Entry{
		Row:    row,
		Type:   string(txn.Kind),
		Client: strconv.FormatUint(uint64(txn.Client), 10),
		Tx:     strconv.FormatUint(uint64(txn.Tx), 10),
		Reason: reason,
		Detail: err.Error(),
	}
	if txn.Amount != nil {
		e.Amount = txn.Amount.String()
	}
	return e
}
