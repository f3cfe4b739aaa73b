package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"github.com/finbook/finbook/docs"
)

type topicCmd struct{}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show a documentation topic" }
func (*topicCmd) Usage() string {
	return `fbk topic [<name>]

  Renders a documentation topic in the terminal. Without a name, lists the
  available topics.
`
}

func (*topicCmd) SetFlags(f *flag.FlagSet) {}

func (p *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		names, err := docs.All()
		if err != nil {
			return fail(err)
		}
		fmt.Println("Topics:", strings.Join(names, ", "))
		return subcommands.ExitSuccess
	}
	content, err := docs.Get(f.Arg(0))
	if err != nil {
		return fail(err)
	}
	printMarkdown(content)
	return subcommands.ExitSuccess
}
