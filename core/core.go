package core

import (
	"os"
	"path/filepath"
	"strings"
)

const HpcSweepConfigEnv = "HPCSWEEP_CONFIG"

// Default constants
const (
	DefaultScheduler    = "cobalt"
	DefaultMinNodes     = 1
	DefaultMaxNodes     = 120
	DefaultCores        = 12
	DefaultTotalHours   = 8
	DefaultFudgeSeconds = 15 * 60
	DefaultStride       = 1
	DefaultAccount      = "SE_HPC"
	DefaultQueue        = "pubnet"
	DefaultSrcRoot      = "/projects/SE_HPC"
	DefaultDstRoot      = "/scratch/SE_HPC"
	DefaultClocPath     = "cloc"
	DefaultDriver       = "./scripts/do-basic.sh"
	DefaultReportDir    = "experiments"
)

// ExperimentConfig describes one scaling experiment. It is filled from
// defaults, an experiment file and command line flags, validated once, and
// then only passed by value.
type ExperimentConfig struct {
	Name  string `yaml:"name"`
	Org   string `yaml:"org" hcl:"org,optional"`
	Repo  string `yaml:"repo" hcl:"repo,optional"`
	Email string `yaml:"email" hcl:"email,optional"`

	MinNodes     int        `yaml:"min_nodes" hcl:"min_nodes,optional"`
	MaxNodes     int        `yaml:"max_nodes" hcl:"max_nodes,optional"`
	Cores        int        `yaml:"cores" hcl:"cores,optional"`
	TotalHours   float64    `yaml:"total_hours" hcl:"total_hours,optional"`
	FudgeSeconds int        `yaml:"fudge_seconds" hcl:"fudge_seconds,optional"`
	Start        StartRange `yaml:"start"` // HCL: decoded by hclStart
	Stride       int        `yaml:"stride" hcl:"stride,optional"`

	Scheduler string `yaml:"scheduler" hcl:"scheduler,optional"`
	Account   string `yaml:"account" hcl:"account,optional"`
	Queue     string `yaml:"queue" hcl:"queue,optional"`

	// Paths baked into the generated submission command.
	SrcRoot   string `yaml:"src_root" hcl:"src_root,optional"`
	DstRoot   string `yaml:"dst_root" hcl:"dst_root,optional"`
	ClocPath  string `yaml:"cloc_path" hcl:"cloc_path,optional"`
	Driver    string `yaml:"driver" hcl:"driver,optional"`
	ReportDir string `yaml:"report_dir" hcl:"report_dir,optional"`

	OutputDir       string `yaml:"output_dir" hcl:"output_dir,optional"`
	SchedulerSuffix bool   `yaml:"scheduler_suffix" hcl:"scheduler_suffix,optional"`
	KeepGoing       bool   `yaml:"keep_going" hcl:"keep_going,optional"`
	DryRun          bool   `yaml:"-"`
}

func DefaultConfig() ExperimentConfig {
	return ExperimentConfig{
		MinNodes:     DefaultMinNodes,
		MaxNodes:     DefaultMaxNodes,
		Cores:        DefaultCores,
		TotalHours:   DefaultTotalHours,
		FudgeSeconds: DefaultFudgeSeconds,
		Start:        StartRange{0},
		Stride:       DefaultStride,
		Scheduler:    DefaultScheduler,
		Account:      DefaultAccount,
		Queue:        DefaultQueue,
		SrcRoot:      DefaultSrcRoot,
		DstRoot:      DefaultDstRoot,
		ClocPath:     DefaultClocPath,
		Driver:       DefaultDriver,
		ReportDir:    DefaultReportDir,
		OutputDir:    ".",
	}
}

// GitHub is the org/repo path; the org falls back to the repo name.
func (c ExperimentConfig) GitHub() string {
	org := c.Org
	if org == "" {
		org = c.Repo
	}
	return strings.Join([]string{org, c.Repo}, "/")
}

// Dst names the clone holding the replayed commit history.
func (c ExperimentConfig) Dst() string {
	return c.Repo + "-commits"
}

// Validate reports the first missing or out of range field. Scheduler and
// node range reachability are checked by the generator, which owns the
// registry and the sweep planner.
func (c ExperimentConfig) Validate() error {
	switch {
	case c.Name == "":
		return &ConfigurationError{Field: "name", Reason: "required"}
	case c.Repo == "":
		return &ConfigurationError{Field: "repo", Reason: "required"}
	case c.Cores < 1:
		return &ConfigurationError{Field: "cores", Reason: "must be at least 1"}
	case c.Stride < 1:
		return &ConfigurationError{Field: "stride", Reason: "must be at least 1"}
	case c.TotalHours <= 0:
		return &ConfigurationError{Field: "total_hours", Reason: "must be positive"}
	case c.FudgeSeconds < 0:
		return &ConfigurationError{Field: "fudge_seconds", Reason: "must not be negative"}
	case c.Scheduler == "":
		return &ConfigurationError{Field: "scheduler", Reason: "required"}
	case c.OutputDir == "":
		return &ConfigurationError{Field: "output_dir", Reason: "required"}
	}
	if _, _, err := c.Start.Bounds(); err != nil {
		return &ConfigurationError{Field: "start", Reason: "invalid range", Err: err}
	}
	if strings.ContainsRune(c.Name, filepath.Separator) {
		return &ConfigurationError{Field: "name", Reason: "must not contain a path separator"}
	}
	return nil
}

func fileExist(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// ConfigPath picks the experiment file: the explicit path if given,
// otherwise $HPCSWEEP_CONFIG when it names an existing file. An empty
// result means flags only.
func ConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(HpcSweepConfigEnv); fileExist(env) {
		return env
	}
	return ""
}
