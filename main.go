package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"

	"hpcsweep.io/core"
	"hpcsweep.io/logger"
)

// Exit statuses
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

type LogFlags struct {
	Verbose bool `short:"v" long:"verbose" description:"log debug messages (overrides HPCSWEEP_LOGLEVEL)"`
}

func (l LogFlags) apply() {
	if l.Verbose {
		logger.SetLevel(logger.HPCSWEEP_DEBUG_LOGGING)
	}
}

func newParser(stdout io.Writer) *flags.Parser {
	parser := flags.NewNamedParser("hpcsweep", flags.HelpFlag|flags.PassDoubleDash)
	addGenerateCommand(parser, stdout)
	addSchedulersCommand(parser, stdout)
	addReportCommands(parser, stdout)
	return parser
}

func printHelp(parser *flags.Parser, w io.Writer) {
	// Print help for active command
	if parser.Command.Active != nil {
		parser.Command = parser.Command.Active
	}
	var b bytes.Buffer
	parser.WriteHelp(&b)
	fmt.Fprintln(w, b.String())
}

func run(args []string, stdout, stderr io.Writer) int {
	parser := newParser(stdout)
	_, err := parser.ParseArgs(args)
	if err == nil {
		return exitOK
	}
	var cerr *core.ConfigurationError
	switch flagsErr := err.(type) {
	case *flags.Error:
		switch flagsErr.Type {
		case flags.ErrHelp:
			printHelp(parser, stdout)
			return exitOK
		case flags.ErrCommandRequired, flags.ErrRequired:
			printHelp(parser, stderr)
			return exitUsage
		case flags.ErrUnknownCommand:
			fmt.Fprintf(stderr, "`%v' not supported\n\n", args[0])
			printHelp(parser, stderr)
			return exitUsage
		case flags.ErrMarshal:
			fmt.Fprintf(stderr, "invalid syntax: %s\n\n", flagsErr.Message)
			printHelp(parser, stderr)
			return exitUsage
		}
		fmt.Fprintln(stderr, flagsErr.Error())
		return exitUsage
	default:
		if errors.As(err, &cerr) {
			fmt.Fprintf(stderr, "%v\n\n", cerr)
			printHelp(parser, stderr)
			return exitUsage
		}
		fmt.Fprintln(stderr, err)
		return exitFailed
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
