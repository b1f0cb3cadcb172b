package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"

	"spv-projection/internal/config"
	"spv-projection/internal/scenario"
)

type stressCmd struct{}

func (*stressCmd) Name() string     { return "stress" }
func (*stressCmd) Synopsis() string { return "list the stress-test presets" }
func (*stressCmd) Usage() string {
	return `stress

  Lists the stress-test presets usable with -stress or in a config's
  stress_tests section.
`
}

func (*stressCmd) SetFlags(*flag.FlagSet) {}

func (*stressCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	for _, p := range scenario.Presets() {
		fmt.Printf("%-16s %s\n", p.ID, p.Name)
		fmt.Printf("%-16s %s (years %d..%d)\n", "", p.Description, p.DefaultStart, p.DefaultStart+p.DefaultDuration-1)
		if len(p.Params) > 0 {
			fmt.Printf("%-16s params: %s\n", "", strings.Join(p.Params, ", "))
		}
		fmt.Printf("%-16s watch: %s\n", "", p.KeyMetric)
	}
	return subcommands.ExitSuccess
}

type initCmd struct {
	out string
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "write the default plan as a YAML config" }
func (*initCmd) Usage() string {
	return `init [-out plans/default.yaml]
`
}

func (p *initCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.out, "out", "plans/default.yaml", "Output path.")
}

func (p *initCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	if _, err := os.Stat(p.out); err == nil {
		fmt.Fprintf(os.Stderr, "%s already exists\n", p.out)
		return subcommands.ExitFailure
	}
	if err := os.MkdirAll(filepath.Dir(p.out), 0o755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := config.WriteYAML(p.out, config.FromSettings("default", config.Default())); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Wrote %s\n", p.out)
	return subcommands.ExitSuccess
}
