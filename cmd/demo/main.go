package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"spv-projection/internal/analysis"
	"spv-projection/internal/config"
	"spv-projection/internal/logging"
	"spv-projection/internal/model"
	"spv-projection/internal/projection"
	"spv-projection/internal/report"
	"spv-projection/internal/scenario"
)

// Demo:
// - Start from the default plan (or --config)
// - Project it nominally and under one stress preset
// - Print the first years of the ledger and a KPI comparison
func main() {
	cfgPath := flag.String("config", "", "Path to a plan config (optional)")
	preset := flag.String("stress", "super-adverse", "Stress-test preset to compare against")
	start := flag.Int("start", 5, "First year of the stress window")
	n := flag.Int("n", 8, "Number of ledger years to print")
	outCSV := flag.String("out", "", "Optional path to write the stressed ledger CSV (e.g. results/ledger.csv)")
	flag.Parse()

	log := logging.Must("development", "info")
	defer func() { _ = log.Sync() }()

	s := config.Default()
	if *cfgPath != "" {
		var err error
		if s, err = config.Load(*cfgPath); err != nil {
			panic(err)
		}
	}

	p, ok := scenario.Lookup(*preset)
	if !ok {
		panic(fmt.Errorf("unknown stress preset %q", *preset))
	}
	effects, err := p.Expand(start, nil, nil)
	if err != nil {
		panic(err)
	}
	stressed := s.Clone()
	stressed.Scenarios = append(stressed.Scenarios, effects...)

	engine := projection.New(projection.WithLogger(log))
	base, err := engine.Run(s)
	if err != nil {
		panic(err)
	}
	hit, err := engine.Run(stressed)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Stress: %s, years %d..%d\n\n", p.Name, *start, *start+p.DefaultDuration-1)
	printLedger(hit, *n)

	fmt.Println()
	ranked := analysis.RankVariations([]analysis.Variation{
		{Name: "nominal", Settings: s, Result: base},
		{Name: p.ID, Settings: stressed, Result: hit},
	})
	for _, r := range ranked {
		fmt.Printf("%d. %-14s equity=%s dividends=%s min reserve=%s max LTV=%.1f%%\n",
			r.Rank, r.Name,
			report.EUR(r.KPIs.EquityAtHorizon),
			report.EUR(r.KPIs.CumulativeDividends),
			report.EUR(r.KPIs.MinCashReserve),
			r.KPIs.MaxLTV)
	}

	if *outCSV != "" {
		if err := os.MkdirAll(filepath.Dir(*outCSV), 0o755); err != nil {
			panic(err)
		}
		if err := projection.WriteLedgerCSV(*outCSV, hit.Ledger); err != nil {
			panic(err)
		}
		fmt.Printf("\nWrote %d rows to %s\n", len(hit.Ledger), *outCSV)
	}
}

func printLedger(r *model.Result, n int) {
	fmt.Printf("%-4s %6s %12s %12s %12s %12s %12s %8s\n",
		"year", "rate%", "rent", "interest", "cashflow", "dividend", "reserve", "ltv%")
	for i, row := range r.Ledger {
		if i >= n {
			break
		}
		fmt.Printf("%-4d %6.2f %12.0f %12.0f %12.0f %12.0f %12.0f %8.1f\n",
			row.Year, row.LoanRate, row.Rent, row.Interest, row.Cashflow,
			row.NetDividend, row.CashReserve, r.LTV[row.Year])
	}
}
