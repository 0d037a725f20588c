package main

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/jessevdk/go-flags"

	"hpcsweep.io/core"
	"hpcsweep.io/experiment"
	"hpcsweep.io/logger"
)

type GenerateCommand struct {
	Log LogFlags `group:"Logging Options"`

	ConfigFile string `short:"f" long:"config" description:"experiment file (.yaml, .yml or .hcl); also read from $HPCSWEEP_CONFIG"`

	Name  string `short:"n" long:"name" description:"experiment name; with a config file, selects that experiment"`
	Org   string `long:"org" description:"GitHub organization (default: the repo name)"`
	Repo  string `short:"r" long:"repo" description:"GitHub repository"`
	Email string `short:"m" long:"email" description:"notification email"`

	MinNodes int     `long:"min-nodes" description:"smallest node count of the sweep (default: 1)"`
	MaxNodes int     `long:"max-nodes" description:"largest node count of the sweep (default: 120)"`
	Cores    int     `short:"c" long:"cores" description:"cores per node (default: 12)"`
	Hours    float64 `short:"t" long:"hours" description:"total wall-clock hours, split across nodes (default: 8)"`
	Fudge    int     `long:"fudge" description:"seconds added to every walltime for queueing overhead (default: 900)"`
	Start    []int   `short:"s" long:"start" description:"start offset; give twice for a [low, high) range (default: 0)"`
	Stride   int     `long:"stride" description:"commit stride (default: 1)"`

	Scheduler string `short:"S" long:"scheduler" description:"scheduler template, see 'hpcsweep schedulers' (default: cobalt)"`
	Account   string `short:"A" long:"account" description:"allocation account (default: SE_HPC)"`
	Queue     string `short:"q" long:"queue" description:"queue name (default: pubnet)"`

	SrcRoot   string `long:"src-root" description:"source root on the cluster (default: /projects/SE_HPC)"`
	DstRoot   string `long:"dst-root" description:"destination root on the cluster (default: /scratch/SE_HPC)"`
	ClocPath  string `long:"cloc-path" description:"cloc binary on the cluster (default: cloc)"`
	Driver    string `long:"driver" description:"experiment driver script (default: ./scripts/do-basic.sh)"`
	ReportDir string `long:"report-dir" description:"directory the driver writes XML reports to (default: experiments)"`

	OutputDir       string `short:"o" long:"output-dir" description:"where scripts are written (default: .)"`
	SchedulerSuffix bool   `long:"scheduler-suffix" description:"append the scheduler id to script names"`
	KeepGoing       bool   `short:"k" long:"keep-going" description:"skip scripts that cannot be written instead of stopping"`
	DryRun          bool   `long:"dry-run" description:"print the plan without writing scripts"`

	cmd *flags.Command
	out io.Writer
}

type override struct {
	name string
	set  func(*core.ExperimentConfig)
}

// overrides pairs each long option with the field it sets. Only options
// given on the command line are applied, on top of file values.
func (x *GenerateCommand) overrides() []override {
	return []override{
		{"org", func(c *core.ExperimentConfig) { c.Org = x.Org }},
		{"repo", func(c *core.ExperimentConfig) { c.Repo = x.Repo }},
		{"email", func(c *core.ExperimentConfig) { c.Email = x.Email }},
		{"min-nodes", func(c *core.ExperimentConfig) { c.MinNodes = x.MinNodes }},
		{"max-nodes", func(c *core.ExperimentConfig) { c.MaxNodes = x.MaxNodes }},
		{"cores", func(c *core.ExperimentConfig) { c.Cores = x.Cores }},
		{"hours", func(c *core.ExperimentConfig) { c.TotalHours = x.Hours }},
		{"fudge", func(c *core.ExperimentConfig) { c.FudgeSeconds = x.Fudge }},
		{"start", func(c *core.ExperimentConfig) { c.Start = append(core.StartRange(nil), x.Start...) }},
		{"stride", func(c *core.ExperimentConfig) { c.Stride = x.Stride }},
		{"scheduler", func(c *core.ExperimentConfig) { c.Scheduler = x.Scheduler }},
		{"account", func(c *core.ExperimentConfig) { c.Account = x.Account }},
		{"queue", func(c *core.ExperimentConfig) { c.Queue = x.Queue }},
		{"src-root", func(c *core.ExperimentConfig) { c.SrcRoot = x.SrcRoot }},
		{"dst-root", func(c *core.ExperimentConfig) { c.DstRoot = x.DstRoot }},
		{"cloc-path", func(c *core.ExperimentConfig) { c.ClocPath = x.ClocPath }},
		{"driver", func(c *core.ExperimentConfig) { c.Driver = x.Driver }},
		{"report-dir", func(c *core.ExperimentConfig) { c.ReportDir = x.ReportDir }},
		{"output-dir", func(c *core.ExperimentConfig) { c.OutputDir = x.OutputDir }},
		{"scheduler-suffix", func(c *core.ExperimentConfig) { c.SchedulerSuffix = x.SchedulerSuffix }},
		{"keep-going", func(c *core.ExperimentConfig) { c.KeepGoing = x.KeepGoing }},
	}
}

func (x *GenerateCommand) isSet(name string) bool {
	opt := x.cmd.FindOptionByLongName(name)
	return opt != nil && opt.IsSet()
}

// experiments builds the configurations to generate: defaults, then the
// experiment file if any, then explicitly set flags.
func (x *GenerateCommand) experiments() ([]core.ExperimentConfig, error) {
	var exps []core.ExperimentConfig
	if path := core.ConfigPath(x.ConfigFile); path != "" {
		loaded, err := core.LoadExperiments(path, core.DefaultConfig())
		if err != nil {
			return nil, err
		}
		for _, cfg := range loaded {
			if !x.isSet("name") || cfg.Name == x.Name {
				exps = append(exps, cfg)
			}
		}
		if len(exps) == 0 {
			return nil, &core.ConfigurationError{Field: "name", Reason: fmt.Sprintf("no experiment %q in %s", x.Name, path)}
		}
	} else {
		cfg := core.DefaultConfig()
		cfg.Name = x.Name
		exps = append(exps, cfg)
	}
	for i := range exps {
		for _, o := range x.overrides() {
			if x.isSet(o.name) {
				o.set(&exps[i])
			}
		}
		exps[i].DryRun = x.DryRun
	}
	return exps, nil
}

func (x *GenerateCommand) Execute(args []string) error {
	x.Log.apply()
	exps, err := x.experiments()
	if err != nil {
		return err
	}
	// Validate everything before the first script is written.
	generators := make([]*experiment.Generator, 0, len(exps))
	for _, cfg := range exps {
		g, err := experiment.New(cfg, logger.Sugar())
		if err != nil {
			return err
		}
		generators = append(generators, g)
	}
	if err := checkDistinctPaths(exps, generators); err != nil {
		return err
	}
	for i, g := range generators {
		if x.DryRun {
			x.printPlan(g)
		}
		n, err := g.Generate()
		if x.DryRun {
			fmt.Fprintf(x.out, "%s: %d scripts planned\n", exps[i].Name, n)
		} else {
			fmt.Fprintf(x.out, "%s: %d scripts written\n", exps[i].Name, n)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// checkDistinctPaths rejects a run in which two experiments would write the
// same script.
func checkDistinctPaths(exps []core.ExperimentConfig, generators []*experiment.Generator) error {
	owner := map[string]string{}
	for i, g := range generators {
		for _, e := range g.Plan() {
			key := e.Path
			if abs, err := filepath.Abs(e.Path); err == nil {
				key = abs
			}
			if prev, ok := owner[key]; ok {
				return &core.ConfigurationError{
					Field:  "name",
					Reason: fmt.Sprintf("experiments %q and %q both write %s", prev, exps[i].Name, e.Path),
				}
			}
			owner[key] = exps[i].Name
		}
	}
	return nil
}

func (x *GenerateCommand) printPlan(g *experiment.Generator) {
	tw := tabwriter.NewWriter(x.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NODES\tSTART\tWALLTIME\tPATH")
	for _, e := range g.Plan() {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", e.Nodes, e.Start, e.Walltime, e.Path)
	}
	tw.Flush()
}

func addGenerateCommand(parser *flags.Parser, out io.Writer) {
	x := &GenerateCommand{out: out}
	cmd, err := parser.AddCommand("generate",
		"Generate scaling experiment scripts",
		"Writes one submission script per power-of-two node count and start offset. "+
			"Each script's walltime is the total budget split across its nodes plus a fixed fudge.",
		x)
	if err != nil {
		panic(err)
	}
	x.cmd = cmd
}
