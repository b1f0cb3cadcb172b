package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"

	"spv-projection/internal/analysis"
	"spv-projection/internal/projection"
	"spv-projection/internal/report"
)

type compareCmd struct {
	stress string
}

func (*compareCmd) Name() string     { return "compare" }
func (*compareCmd) Synopsis() string { return "rank several plans by equity at the horizon" }
func (*compareCmd) Usage() string {
	return `compare [-stress id,id] plan.yaml [plan.yaml...]

  Projects each plan (nominal values only) and prints them ranked by equity
  at the horizon. Plans that fail to load or validate are reported and
  skipped.
`
}

func (p *compareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.stress, "stress", "", "Comma-separated stress-test ids applied to every plan.")
}

func (p *compareCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "compare needs at least one plan file")
		return subcommands.ExitUsageError
	}
	log := newLogger()
	defer func() { _ = log.Sync() }()
	engine := projection.New(projection.WithLogger(log))

	var variations []analysis.Variation
	for _, path := range f.Args() {
		file, err := loadFile(path, p.stress)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip %s: %v\n", path, err)
			continue
		}
		s, err := file.Build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip %s: %v\n", path, err)
			continue
		}
		res, err := engine.Run(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip %s: %v\n", path, err)
			continue
		}
		name := file.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		variations = append(variations, analysis.Variation{Name: name, Settings: s, Result: res})
	}

	ranked := analysis.RankVariations(variations)
	fmt.Printf("%-4s %-24s %18s %18s %8s %s\n", "rank", "plan", "equity", "dividends", "max ltv", "warnings")
	for _, r := range ranked {
		fmt.Printf("%-4d %-24s %18s %18s %7.1f%% %s\n",
			r.Rank,
			r.Name,
			report.EUR(r.KPIs.EquityAtHorizon),
			report.EUR(r.KPIs.CumulativeDividends),
			r.KPIs.MaxLTV,
			warningText(r),
		)
	}
	if len(ranked) == 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func warningText(r analysis.RankedVariation) string {
	var w []string
	if r.Warnings.IsUnderfunded {
		w = append(w, "underfunded")
	}
	if r.Warnings.HighLTV {
		w = append(w, "high-ltv")
	}
	if len(w) == 0 {
		return "-"
	}
	return strings.Join(w, ",")
}
