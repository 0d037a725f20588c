package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jessevdk/go-flags"

	"hpcsweep.io/scheduler"
)

type SchedulersCommand struct {
	Log          LogFlags `group:"Logging Options"`
	Placeholders bool     `short:"p" long:"placeholders" description:"also list the parameters each template needs"`

	out io.Writer
}

func (x *SchedulersCommand) Execute(args []string) error {
	x.Log.apply()
	tw := tabwriter.NewWriter(x.out, 0, 4, 2, ' ', 0)
	if x.Placeholders {
		fmt.Fprintln(tw, "ID\tCOMMAND\tDESCRIPTION\tPARAMETERS")
	} else {
		fmt.Fprintln(tw, "ID\tCOMMAND\tDESCRIPTION")
	}
	for _, id := range scheduler.IDs() {
		t, err := scheduler.Lookup(id)
		if err != nil {
			return err
		}
		if x.Placeholders {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Command, t.Description,
				strings.Join(t.Placeholders(), ","))
		} else {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Command, t.Description)
		}
	}
	return tw.Flush()
}

func addSchedulersCommand(parser *flags.Parser, out io.Writer) {
	if _, err := parser.AddCommand("schedulers",
		"List scheduler templates",
		"Lists the scheduler ids accepted by generate --scheduler.",
		&SchedulersCommand{out: out}); err != nil {
		panic(err)
	}
}
