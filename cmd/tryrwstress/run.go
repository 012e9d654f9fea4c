package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/llxisdsh/tryrw"
)

var errExclusion = errors.New("exclusion violated")

type runConfig struct {
	Readers      int
	Writers      int
	Duration     time.Duration
	UpgradeRatio float64
}

func (c *runConfig) bind(fs *pflag.FlagSet) {
	fs.IntVar(&c.Readers, "readers", 4, "number of reader goroutines")
	fs.IntVar(&c.Writers, "writers", 2, "number of writer goroutines")
	fs.DurationVar(&c.Duration, "duration", 2*time.Second, "how long to run")
	fs.Float64Var(&c.UpgradeRatio, "upgrade-ratio", 0.1, "fraction of reads that attempt an upgrade")
}

func (c *runConfig) validate() error {
	switch {
	case c.Readers < 0 || c.Writers < 0:
		return errors.New("goroutine counts must not be negative")
	case c.Readers+c.Writers == 0:
		return errors.New("need at least one reader or writer")
	case c.Duration <= 0:
		return errors.New("duration must be positive")
	case c.UpgradeRatio < 0 || c.UpgradeRatio > 1:
		return errors.New("upgrade-ratio must be within [0, 1]")
	}
	return nil
}

// counters are per-outcome attempt tallies.
type counters struct {
	reads, readMisses     atomic.Int64
	writes, writeMisses   atomic.Int64
	upgrades, upgradeMiss atomic.Int64
}

func newRunCmd(newLogger func() (*zap.Logger, error)) *cobra.Command {
	var cfg runConfig
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run readers and writers against one lock",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.validate(); err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}
			logger, err := newLogger()
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()
			return stress(cmd.Context(), logger, cfg)
		},
	}
	cfg.bind(cmd.Flags())
	return cmd
}

// stress runs the configured workload and returns errExclusion if any
// goroutine ever observed a writer alongside another holder.
func stress(ctx context.Context, logger *zap.Logger, cfg runConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	lock := tryrw.New(int64(0))
	var (
		c       counters
		readers atomic.Int32
		writers atomic.Int32
	)

	logger.Info("stress started",
		zap.Int("readers", cfg.Readers),
		zap.Int("writers", cfg.Writers),
		zap.Duration("duration", cfg.Duration),
		zap.Float64("upgrade_ratio", cfg.UpgradeRatio),
	)

	// enterWrite and leaveWrite bracket every exclusive section.
	enterWrite := func() error {
		if writers.Add(1) != 1 || readers.Load() != 0 {
			return errExclusion
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for id := range cfg.Readers {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(uint64(id), uint64(time.Now().UnixNano())))
			for ctx.Err() == nil {
				r, ok := lock.TryRead()
				if !ok {
					c.readMisses.Add(1)
					continue
				}
				c.reads.Add(1)
				readers.Add(1)
				bad := writers.Load() != 0
				_ = r.Value()
				readers.Add(-1)
				if bad {
					r.Release()
					return fmt.Errorf("reader %d: %w", id, errExclusion)
				}
				if rng.Float64() >= cfg.UpgradeRatio {
					r.Release()
					continue
				}
				w, ok := r.TryUpgrade()
				if !ok {
					c.upgradeMiss.Add(1)
					r.Release()
					continue
				}
				c.upgrades.Add(1)
				if err := enterWrite(); err != nil {
					w.Release()
					return fmt.Errorf("upgrader %d: %w", id, err)
				}
				*w.Ptr()++
				writers.Add(-1)
				w.Release()
			}
			return nil
		})
	}
	for id := range cfg.Writers {
		g.Go(func() error {
			for ctx.Err() == nil {
				w, ok := lock.TryWrite()
				if !ok {
					c.writeMisses.Add(1)
					continue
				}
				c.writes.Add(1)
				if err := enterWrite(); err != nil {
					w.Release()
					return fmt.Errorf("writer %d: %w", id, err)
				}
				*w.Ptr()++
				writers.Add(-1)
				w.Release()
			}
			return nil
		})
	}

	err := g.Wait()
	fields := []zap.Field{
		zap.Int64("reads", c.reads.Load()),
		zap.Int64("read_misses", c.readMisses.Load()),
		zap.Int64("writes", c.writes.Load()),
		zap.Int64("write_misses", c.writeMisses.Load()),
		zap.Int64("upgrades", c.upgrades.Load()),
		zap.Int64("upgrade_misses", c.upgradeMiss.Load()),
	}
	if err != nil {
		logger.Error("stress failed", append(fields, zap.Error(err))...)
		return err
	}

	total := lock.IntoInner()
	if want := c.writes.Load() + c.upgrades.Load(); total != want {
		err = fmt.Errorf("counter=%d, want %d: %w", total, want, errExclusion)
		logger.Error("lost update", append(fields, zap.Error(err))...)
		return err
	}
	logger.Info("stress finished", append(fields, zap.Int64("value", total))...)
	return nil
}
