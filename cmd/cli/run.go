package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"spv-projection/internal/projection"
	"spv-projection/internal/report"
)

type runCmd struct {
	config string
	stress string
	csv    string
	ledger string
	json   string
	format string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "project a plan with its min/max brackets" }
func (*runCmd) Usage() string {
	return `run [-config plan.yaml] [-stress id,id] [-csv out.csv] [-ledger ledger.csv] [-json out.json] [-format terminal|markdown|html]

  Projects the plan (defaults when -config is omitted) and prints a summary.
  -stress adds stress-test presets on top of the config's overlays.
`
}

func (p *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.config, "config", "", "Path to a YAML, JSON or HJSON plan.")
	f.StringVar(&p.stress, "stress", "", "Comma-separated stress-test ids to apply.")
	f.StringVar(&p.csv, "csv", "", "Write base/min/max value, equity and dividends per year to this CSV.")
	f.StringVar(&p.ledger, "ledger", "", "Write the base run's per-year ledger to this CSV.")
	f.StringVar(&p.json, "json", "", "Write the full report as JSON to this path.")
	f.StringVar(&p.format, "format", "terminal", "Summary format on stdout: terminal, markdown or html.")
}

func (p *runCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log := newLogger()
	defer func() { _ = log.Sync() }()

	f, err := loadFile(p.config, p.stress)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	s, err := f.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	rng, err := projection.NewRangeRunner(log).Run(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	sum := report.Build(f.Name, s, rng)

	if p.csv != "" {
		if err := ensureDir(p.csv); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		if err := projection.WriteRangeCSV(p.csv, rng); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Wrote %d years to %s\n", rng.Base.Years+1, p.csv)
	}
	if p.ledger != "" {
		if err := ensureDir(p.ledger); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		if err := projection.WriteLedgerCSV(p.ledger, rng.Base.Ledger); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Wrote %d rows to %s\n", len(rng.Base.Ledger), p.ledger)
	}
	if p.json != "" {
		b, err := report.JSON(sum)
		if err == nil {
			err = ensureDir(p.json)
		}
		if err == nil {
			err = os.WriteFile(p.json, b, 0o644)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}

	md := report.Markdown(sum)
	switch p.format {
	case "markdown":
		fmt.Print(md)
	case "html":
		out, err := report.HTML(md)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Print(out)
	default:
		printMarkdown(md)
	}
	return subcommands.ExitSuccess
}
