package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/meenmo/curvefit/curve"
	"github.com/meenmo/curvefit/metrics"
	"github.com/meenmo/curvefit/utils"
)

var (
	instrumentsFile string
	dumpMetrics     bool
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Bootstrap a curve from an instrument file",
	Long: `Reads a YAML instrument file, bootstraps the curve and prints each node
with its discount factor and zero rate, followed by every instrument's
remaining quote error.`,
	RunE: runFit,
}

func init() {
	fitCmd.Flags().StringVarP(&instrumentsFile, "instruments", "i", "", "instrument file (.yaml)")
	fitCmd.Flags().BoolVar(&dumpMetrics, "metrics", false, "print bootstrap metrics in Prometheus text format")
	_ = fitCmd.MarkFlagRequired("instruments")
	rootCmd.AddCommand(fitCmd)
}

func runFit(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := newLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	file, err := LoadInstruments(instrumentsFile)
	if err != nil {
		return fmt.Errorf("load instruments: %w", err)
	}
	ref, hs, opts, err := file.Build()
	if err != nil {
		return fmt.Errorf("build instruments: %w", err)
	}

	reg := prometheus.NewRegistry()
	opts = append([]curve.Option{
		curve.WithConfig(cfg),
		curve.WithDayCount(file.DayCount),
		curve.WithLogger(logger),
		curve.WithObserver(metrics.New(reg)),
	}, opts...)

	c, err := curve.New(ref, hs, opts...)
	if err != nil {
		return fmt.Errorf("setup curve: %w", err)
	}
	defer c.Close()

	out := cmd.OutOrStdout()
	if err := printCurve(out, c); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if dumpMetrics {
		return writeMetrics(out, reg)
	}
	return nil
}

func printCurve(w io.Writer, c *curve.Curve) error {
	nodes, err := c.Nodes()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "date\ttime\tvalue\tdiscount\tzero (%)")
	for _, n := range nodes {
		df, _ := c.Discount(n.Date)
		z, _ := c.ZeroRate(n.Date)
		fmt.Fprintf(tw, "%s\t%.6f\t%.12f\t%.12f\t%.6f\n",
			utils.FormatDate(n.Date), n.Time, n.Value, df, z*100)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "maturity\tpillar\tquote\tquote error")
	for _, h := range c.Helpers() {
		fmt.Fprintf(tw, "%s\t%s\t%.6f\t%.3e\n", utils.FormatDate(h.MaturityDate()),
			utils.FormatDate(h.PillarDate()), h.Quote().Value(), h.QuoteError())
	}
	return tw.Flush()
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	fmt.Fprintln(w)
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
