package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"spv-projection/internal/config"
	"spv-projection/internal/projection"
	"spv-projection/internal/report"
	"spv-projection/internal/store"
)

type saveCmd struct {
	dir     string
	config  string
	stress  string
	run     bool
	encrypt bool
}

func (*saveCmd) Name() string     { return "save" }
func (*saveCmd) Synopsis() string { return "save a plan to the scenario store" }
func (*saveCmd) Usage() string {
	return `save [-config plan.yaml] [-stress id,id] [-run] [-encrypt] <name>

  Stores the resolved plan under name, replacing any scenario with the same
  name. -run also stores the base/min/max results.
`
}

func (p *saveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.dir, "dir", "", "Store directory (default $SPV_STORE_DIR or ./scenarios).")
	f.StringVar(&p.config, "config", "", "Path to a plan; defaults when omitted.")
	f.StringVar(&p.stress, "stress", "", "Comma-separated stress-test ids to apply.")
	f.BoolVar(&p.run, "run", false, "Store projection results with the settings.")
	f.BoolVar(&p.encrypt, "encrypt", false, "Encrypt the file (prompts for a passphrase when SPV_STORE_PASSPHRASE is unset).")
}

func (p *saveCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "save needs exactly one scenario name")
		return subcommands.ExitUsageError
	}
	file, err := loadFile(p.config, p.stress)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	s, err := file.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	sc := store.Scenario{Name: f.Arg(0), Settings: s}
	if p.run {
		log := newLogger()
		defer func() { _ = log.Sync() }()
		if sc.Results, err = projection.NewRangeRunner(log).Run(s); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}

	err = withStore(p.dir, p.encrypt, func(st *store.Store) error {
		saved, err := st.Save(sc)
		if err != nil {
			return err
		}
		fmt.Printf("Saved %q (%s) to %s\n", saved.Name, saved.ID, st.Dir())
		return nil
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type loadCmd struct {
	dir string
	out string
}

func (*loadCmd) Name() string     { return "load" }
func (*loadCmd) Synopsis() string { return "show a saved scenario or export it as a config" }
func (*loadCmd) Usage() string {
	return `load [-out plan.yaml] <name>

  Prints the scenario's report (re-running it when no results were saved),
  or writes its settings as a YAML config with -out.
`
}

func (p *loadCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.dir, "dir", "", "Store directory (default $SPV_STORE_DIR or ./scenarios).")
	f.StringVar(&p.out, "out", "", "Write the settings as a YAML config to this path.")
}

func (p *loadCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "load needs exactly one scenario name")
		return subcommands.ExitUsageError
	}
	var sc store.Scenario
	err := withStore(p.dir, false, func(st *store.Store) error {
		var err error
		sc, err = st.Load(f.Arg(0))
		return err
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if p.out != "" {
		err = ensureDir(p.out)
		if err == nil {
			err = config.WriteYAML(p.out, config.FromSettings(sc.Name, sc.Settings))
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Wrote %s\n", p.out)
		return subcommands.ExitSuccess
	}

	rng := sc.Results
	if rng == nil {
		log := newLogger()
		defer func() { _ = log.Sync() }()
		if rng, err = projection.NewRangeRunner(log).Run(sc.Settings); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}
	printMarkdown(report.Markdown(report.Build(sc.Name, sc.Settings, rng)))
	return subcommands.ExitSuccess
}

type listCmd struct {
	dir string
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list saved scenarios" }
func (*listCmd) Usage() string {
	return `list
`
}

func (p *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.dir, "dir", "", "Store directory (default $SPV_STORE_DIR or ./scenarios).")
}

func (p *listCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	err := withStore(p.dir, false, func(st *store.Store) error {
		all, err := st.List()
		if err != nil {
			return err
		}
		for _, sc := range all {
			results := ""
			if sc.Results != nil {
				results = "results"
			}
			fmt.Printf("%-24s %s  %s  %s\n", sc.Name, sc.ID, sc.Timestamp.Format("2006-01-02 15:04"), results)
		}
		return nil
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type deleteCmd struct {
	dir string
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete a saved scenario" }
func (*deleteCmd) Usage() string {
	return `delete <name>
`
}

func (p *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.dir, "dir", "", "Store directory (default $SPV_STORE_DIR or ./scenarios).")
}

func (p *deleteCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "delete needs exactly one scenario name")
		return subcommands.ExitUsageError
	}
	err := withStore(p.dir, false, func(st *store.Store) error {
		return st.Delete(f.Arg(0))
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Deleted %q\n", f.Arg(0))
	return subcommands.ExitSuccess
}
