// Package experiment expands an experiment configuration into one
// submission script per node count and start offset.
package experiment

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"hpcsweep.io/core"
	"hpcsweep.io/scheduler"
	"hpcsweep.io/script"
	"hpcsweep.io/sweep"
)

// Entry is one planned script.
type Entry struct {
	Nodes    int
	Start    int
	Walltime string
	Path     string
}

type Generator struct {
	cfg          core.ExperimentConfig
	tmpl         *scheduler.Template
	nodes        []int
	materializer *script.Materializer
	log          *zap.SugaredLogger
}

// New validates cfg and resolves its scheduler and node sweep. Every
// configuration problem surfaces here, before anything is written.
func New(cfg core.ExperimentConfig, log *zap.SugaredLogger) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tmpl, err := scheduler.Lookup(cfg.Scheduler)
	if err != nil {
		return nil, &core.ConfigurationError{Field: "scheduler", Reason: "not registered", Err: err}
	}
	nodes, err := sweep.Plan(cfg.MinNodes, cfg.MaxNodes)
	if err != nil {
		return nil, &core.ConfigurationError{Field: "max_nodes", Reason: "no node sweep", Err: err}
	}
	cfg.Start = append(core.StartRange(nil), cfg.Start...)
	return &Generator{
		cfg:          cfg,
		tmpl:         tmpl,
		nodes:        nodes,
		materializer: script.NewMaterializer(log),
		log:          log,
	}, nil
}

// Plan lists the scripts in generation order: increasing node count, then
// increasing start offset.
func (g *Generator) Plan() []Entry {
	var entries []Entry
	for _, nodes := range g.nodes {
		walltime := sweep.Budget(g.cfg.TotalHours, g.cfg.FudgeSeconds, nodes)
		// Validated in New.
		low, high, _ := g.cfg.Start.Bounds()
		for start := low; start < high; start++ {
			entries = append(entries, Entry{
				Nodes:    nodes,
				Start:    start,
				Walltime: walltime,
				Path:     g.path(nodes, start),
			})
		}
	}
	return entries
}

func (g *Generator) path(nodes, start int) string {
	suffix := ""
	if g.cfg.SchedulerSuffix {
		suffix = g.cfg.Scheduler
	}
	name := script.Filename(g.cfg.Name, nodes, g.cfg.Cores, start, g.cfg.Stride, suffix)
	return filepath.Join(g.cfg.OutputDir, name)
}

func (g *Generator) params(e Entry) script.Params {
	c := g.cfg
	report := func(kind string) string {
		return script.ReportPath(c.ReportDir, c.Repo, kind, e.Nodes, c.Cores, e.Start, c.Stride)
	}
	return script.Params{
		Name:              c.Name,
		Nodes:             e.Nodes,
		Cores:             c.Cores,
		Start:             e.Start,
		Stride:            c.Stride,
		Walltime:          e.Walltime,
		Account:           c.Account,
		Queue:             c.Queue,
		Email:             c.Email,
		GitHub:            c.GitHub(),
		Repo:              c.Repo,
		Src:               c.Repo,
		Dst:               c.Dst(),
		SrcRoot:           c.SrcRoot,
		DstRoot:           c.DstRoot,
		ClocPath:          c.ClocPath,
		Driver:            c.Driver,
		PerformanceReport: report("performance"),
		ClocReport:        report("cloc"),
	}
}

// Generate writes every planned script and returns how many were written.
// A render error stops the sweep. A write error stops it too unless the
// experiment is keep-going, in which case failures are collected and
// returned together after the sweep. A dry run renders without writing.
func (g *Generator) Generate() (int, error) {
	log := g.log.With("run_id", uuid.NewString(), "experiment", g.cfg.Name)
	log.Infow("generating sweep",
		"scheduler", g.tmpl.ID,
		"nodes", g.nodes,
		"start", []int(g.cfg.Start),
		"output_dir", g.cfg.OutputDir,
		"dry_run", g.cfg.DryRun)

	if !g.cfg.DryRun {
		if err := os.MkdirAll(g.cfg.OutputDir, 0755); err != nil {
			return 0, &core.IOFailure{Op: "mkdir", Path: g.cfg.OutputDir, Err: err}
		}
	}

	written := 0
	var failed error
	for _, e := range g.Plan() {
		p := g.params(e)
		if g.cfg.DryRun {
			if _, err := g.materializer.Render(g.tmpl, p); err != nil {
				return written, err
			}
			log.Infow("planned script", "path", e.Path, "nodes", e.Nodes, "start", e.Start, "walltime", e.Walltime)
			written++
			continue
		}
		if _, err := g.materializer.Materialize(g.tmpl, p, e.Path); err != nil {
			var ioerr *core.IOFailure
			if g.cfg.KeepGoing && errors.As(err, &ioerr) {
				log.Errorw("skipping script", "path", e.Path, "error", err)
				failed = multierr.Append(failed, err)
				continue
			}
			return written, err
		}
		written++
	}
	log.Infow("sweep complete", "written", written, "failed", len(multierr.Errors(failed)))
	return written, failed
}
