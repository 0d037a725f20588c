package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"

	"hpcsweep.io/core"
	"hpcsweep.io/logger"
	"hpcsweep.io/report"
)

type ReportFlags struct {
	Dir    string `short:"d" long:"dir" description:"directory holding the XML reports" default:"."`
	Prefix string `short:"p" long:"prefix" description:"report filename prefix"`
	Repo   string `short:"r" long:"repo" description:"repository; selects <repo>-cloc or <repo>-performance reports"`
}

type ReportCommand struct {
	Log    LogFlags    `group:"Logging Options"`
	Report ReportFlags `group:"Report Options"`
	Output string      `short:"o" long:"output" description:"CSV file to write (default: experimental_results.csv or performance_results.csv)"`

	kind    string
	extract report.Extractor
	out     io.Writer
}

func (x *ReportCommand) prefix() (string, error) {
	switch {
	case x.Report.Prefix != "":
		return x.Report.Prefix, nil
	case x.Report.Repo != "":
		return x.Report.Repo + "-" + x.kind, nil
	}
	return "", &core.ConfigurationError{Field: "prefix", Reason: "either --prefix or --repo is required"}
}

func (x *ReportCommand) Execute(args []string) error {
	x.Log.apply()
	prefix, err := x.prefix()
	if err != nil {
		return err
	}
	files, err := report.FindReports(x.Report.Dir, prefix)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.WarningPrintf("no reports matching %s* in %s", prefix, x.Report.Dir)
	}
	f, err := os.Create(x.Output)
	if err != nil {
		return &core.IOFailure{Op: "create", Path: x.Output, Err: err}
	}
	n, err := report.Convert(files, x.extract, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = &core.IOFailure{Op: "close", Path: x.Output, Err: cerr}
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(x.out, "%s: %d rows from %d reports\n", x.Output, n, len(files))
	return nil
}

func addReportCommands(parser *flags.Parser, out io.Writer) {
	commands := []struct {
		name, short, long string
		cmd               *ReportCommand
	}{
		{"cloc-csv", "Flatten cloc reports to CSV",
			"Writes one row per language per commit found in the cloc XML reports.",
			&ReportCommand{kind: "cloc", extract: report.ClocRows, Output: "experimental_results.csv", out: out}},
		{"perf-csv", "Flatten performance reports to CSV",
			"Writes one row per performance XML report: configuration, timings and commit count.",
			&ReportCommand{kind: "performance", extract: report.PerfRows, Output: "performance_results.csv", out: out}},
	}
	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.cmd); err != nil {
			panic(err)
		}
	}
}
