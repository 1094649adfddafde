package main

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go.nesv.ca/ulog"
)

const (
	defaultConfigFilePath = "./ulog.yml"
	configDesc            = "set the path for the demo's YAML configuration file"
)

// sample is the record every demo producer writes.
type sample struct {
	Timestamp uint64
	Value     float32
	Producer  uint8
}

func newDemoCmd() *cobra.Command {
	var configFilePath string
	c := &cobra.Command{
		Use:     "demo",
		Short:   "Write a demonstration log from concurrent producers",
		Example: "ulog demo --config ./ulog.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ReadConfig(configFilePath)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			return runDemo(cmd.Context(), cmd, cfg)
		},
	}
	c.Flags().StringVarP(&configFilePath, "config", "c", defaultConfigFilePath, configDesc)
	return c
}

func newLogger(level zap.AtomicLevel) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = level
	return zc.Build()
}

func runDemo(ctx context.Context, cmd *cobra.Command, cfg *Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := newLogger(zap.NewAtomicLevelAt(cfg.LogLevel))
	if err != nil {
		return errors.Wrap(err, "build logger")
	}
	defer logger.Sync()

	reg := prometheus.NewRegistry()
	w, err := ulog.Open(cfg.Path,
		ulog.RotateSize(cfg.RotateSize),
		ulog.FlushEvery(cfg.FlushEvery),
		ulog.Checksums(cfg.Checksums),
		ulog.Logger(logger),
		ulog.Metrics(reg),
	)
	if err != nil {
		return err
	}
	defer w.Close()

	rec := ulog.Struct{Name: "sample", Value: sample{}}
	if err := w.RegisterInfo(cfg.InfoKey, cfg.InfoValue); err != nil {
		return err
	}
	if err := w.RegisterParameter("DEMO_PRODUCERS", int32(cfg.Producers)); err != nil {
		return err
	}
	if _, err := w.RegisterRecord(rec); err != nil {
		return err
	}
	if err := w.CompleteHeader(); err != nil {
		return err
	}
	handles := make([]uint16, cfg.Producers)
	for i := range handles {
		if handles[i], err = w.Subscribe(rec.LayoutName(), uint8(i)); err != nil {
			return err
		}
	}
	if err := w.WriteText(ulog.LevelInfo, "demo started", ulog.Monotonic()); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, handle := range handles {
		i, handle := i, handle
		g.Go(func() error {
			for n := 0; n < cfg.Records; n++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				s := sample{
					Timestamp: ulog.Monotonic(),
					Value:     float32(math.Sin(float64(n) / 10)),
					Producer:  uint8(i),
				}
				p := ulog.Struct{Name: rec.Name, Value: s}.PackedBytes()
				if err := w.Write(handle, p); err != nil {
					return errors.Wrapf(err, "producer %d", i)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := w.WriteText(ulog.LevelInfo, "demo finished", ulog.Monotonic()); err != nil {
		return err
	}
	last := w.Name()
	if err := w.Close(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	files, err := writtenFiles(cfg.Path, last)
	if err != nil {
		return err
	}
	for _, name := range files {
		s, err := ulog.SummarizeFile(name)
		if err != nil {
			return errors.Wrapf(err, "summarize %s", name)
		}
		fmt.Fprintf(out, "%s: %d records\n", name, s.Records(rec.Name))
	}
	return printMetrics(out, reg)
}

// writtenFiles returns the rotation sequence from first up to and including
// last. Members of the sequence left behind by earlier runs are not listed.
func writtenFiles(first, last string) ([]string, error) {
	files := []string{first}
	for name := first; name != last; {
		next, err := ulog.NextName(name)
		if err != nil {
			return nil, err
		}
		if len(next) > len(last) {
			return nil, errors.Errorf("%s does not follow %s", last, first)
		}
		files = append(files, next)
		name = next
	}
	return files, nil
}

// printMetrics prints the value of every counter and gauge in reg.
func printMetrics(out io.Writer, reg *prometheus.Registry) error {
	mfs, err := reg.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(out, "%s %v\n", mf.GetName(), m.GetCounter().GetValue())
			case m.GetGauge() != nil:
				fmt.Fprintf(out, "%s %v\n", mf.GetName(), m.GetGauge().GetValue())
			}
		}
	}
	return nil
}
