package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

var logLevel = flag.String("log-level", "warn", "log level (debug, info, warn, error)")

func main() {
	_ = godotenv.Load()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&runCmd{}, "projection")
	commander.Register(&compareCmd{}, "projection")
	commander.Register(&stressCmd{}, "projection")
	commander.Register(&initCmd{}, "projection")

	commander.Register(&saveCmd{}, "scenarios")
	commander.Register(&loadCmd{}, "scenarios")
	commander.Register(&listCmd{}, "scenarios")
	commander.Register(&deleteCmd{}, "scenarios")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
