package core

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
	"gopkg.in/yaml.v3"
)

// LoadExperiments reads every experiment defined in path. Each experiment
// starts from a copy of defaults, so fields the file leaves out keep their
// default values. The format is chosen by extension: .yaml/.yml or .hcl.
func LoadExperiments(path string, defaults ExperimentConfig) ([]ExperimentConfig, error) {
	var (
		exps []ExperimentConfig
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		exps, err = loadYAML(path, defaults)
	case ".hcl":
		exps, err = loadHCL(path, defaults)
	default:
		return nil, &ConfigurationError{Field: "config", Reason: fmt.Sprintf("unsupported file type %q", ext)}
	}
	if err != nil {
		return nil, err
	}
	if len(exps) == 0 {
		return nil, &ConfigurationError{Field: "config", Reason: "no experiments defined in " + path}
	}
	return exps, nil
}

// Layout for YAML experiment files
/*
experiments:
  - name: astropy-cloc
    repo: astropy
    max_nodes: 64
    start: [0, 4]
*/
type yamlFile struct {
	Experiments []yaml.Node `yaml:"experiments"`
}

func loadYAML(path string, defaults ExperimentConfig) ([]ExperimentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var file yamlFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &ConfigurationError{Field: "config", Reason: "failed to unmarshal " + path, Err: err}
	}
	exps := make([]ExperimentConfig, 0, len(file.Experiments))
	for i := range file.Experiments {
		cfg := defaults
		cfg.Start = append(StartRange(nil), defaults.Start...)
		if err := decodeStrict(&file.Experiments[i], &cfg); err != nil {
			return nil, &ConfigurationError{
				Field:  fmt.Sprintf("experiments[%d]", i),
				Reason: "failed to decode",
				Err:    err,
			}
		}
		exps = append(exps, cfg)
	}
	return exps, nil
}

// decodeStrict decodes node into v, rejecting keys v has no field for.
// yaml.Node.Decode has no strict mode, so the node goes back through a
// Decoder with KnownFields set.
func decodeStrict(node *yaml.Node, v interface{}) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(v)
}

// Layout for HCL experiment files
/*
experiment "astropy-cloc" {
  repo      = "astropy"
  max_nodes = 64
  start     = [0, 4]
  email     = env.USER_EMAIL
}
*/
type hclFile struct {
	Experiments []*hclExperiment `hcl:"experiment,block"`
}

type hclExperiment struct {
	Name  string         `hcl:"name,label"`
	Start hcl.Expression `hcl:"start,optional"`
	Body  hcl.Body       `hcl:",remain"`
}

func loadHCL(path string, defaults ExperimentConfig) ([]ExperimentConfig, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, &ConfigurationError{Field: "config", Reason: "failed to parse " + path, Err: diags}
	}
	var root hclFile
	if diags := gohcl.DecodeBody(f.Body, nil, &root); diags.HasErrors() {
		return nil, &ConfigurationError{Field: "config", Reason: "failed to decode " + path, Err: diags}
	}
	evalCtx := evalContext()
	exps := make([]ExperimentConfig, 0, len(root.Experiments))
	for _, block := range root.Experiments {
		cfg := defaults
		cfg.Start = append(StartRange(nil), defaults.Start...)
		if diags := gohcl.DecodeBody(block.Body, evalCtx, &cfg); diags.HasErrors() {
			return nil, &ConfigurationError{Field: "experiment " + block.Name, Reason: "failed to decode", Err: diags}
		}
		start, err := hclStart(block.Start, evalCtx)
		if err != nil {
			return nil, &ConfigurationError{Field: "experiment " + block.Name, Reason: "invalid start", Err: err}
		}
		if start != nil {
			cfg.Start = start
		}
		cfg.Name = block.Name
		exps = append(exps, cfg)
	}
	return exps, nil
}

// hclStart evaluates a start attribute, which is either a number or a list
// of numbers. A missing attribute yields nil.
func hclStart(expr hcl.Expression, ctx *hcl.EvalContext) (StartRange, error) {
	if expr == nil {
		return nil, nil
	}
	v, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return nil, diags
	}
	if v.IsNull() {
		return nil, nil
	}
	if v.Type() == cty.Number {
		var n int
		if err := gocty.FromCtyValue(v, &n); err != nil {
			return nil, err
		}
		return StartRange{n}, nil
	}
	list, err := convert.Convert(v, cty.List(cty.Number))
	if err != nil {
		return nil, err
	}
	var vs []int
	if err := gocty.FromCtyValue(list, &vs); err != nil {
		return nil, err
	}
	return StartRange(vs), nil
}

// evalContext exposes the process environment as `env` and a few string
// functions to experiment expressions.
func evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = cty.StringVal(v)
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
		Functions: map[string]function.Function{
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
			"format": stdlib.FormatFunc,
			"join":   stdlib.JoinFunc,
		},
	}
}
