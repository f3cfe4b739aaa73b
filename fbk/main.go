package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"

	"github.com/finbook/finbook/cmd"
)

func main() {
	// Shell completion: exits early when invoked by the shell.
	sub := make(map[string]*complete.Command)
	for _, name := range cmd.CommandNames() {
		sub[name] = &complete.Command{}
	}
	(&complete.Command{Sub: sub}).Complete("fbk")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
