// Package scheduler holds the submission script templates, one per batch
// scheduler. Each scheduler file registers its template from init; callers
// only ever go through Lookup.
package scheduler

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"
	"text/template/parse"
)

var ErrUnknownScheduler = errors.New("unknown scheduler")

// Template is an immutable, parsed submission command for one scheduler.
// Placeholders are written {{.name}} and resolved from a string map.
type Template struct {
	ID          string
	Command     string
	Description string

	tmpl         *template.Template
	placeholders []string
}

var registry = map[string]*Template{}

// New parses body and panics on a syntax error; templates are compiled in.
func New(id, command, description, body string) *Template {
	tmpl := template.Must(template.New(id).Option("missingkey=error").Parse(body))
	return &Template{
		ID:           id,
		Command:      command,
		Description:  description,
		tmpl:         tmpl,
		placeholders: collect(tmpl.Tree),
	}
}

func Register(t *Template) {
	if _, ok := registry[t.ID]; ok {
		panic("scheduler: duplicate registration of " + t.ID)
	}
	registry[t.ID] = t
}

func Lookup(id string) (*Template, error) {
	if t, ok := registry[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownScheduler, id, strings.Join(IDs(), ", "))
}

// IDs lists the registered schedulers, sorted.
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Placeholders returns the sorted, distinct names the template refers to.
func (t *Template) Placeholders() []string {
	return append([]string(nil), t.placeholders...)
}

func (t *Template) Execute(w io.Writer, params map[string]string) error {
	return t.tmpl.Execute(w, params)
}

func collect(tree *parse.Tree) []string {
	seen := map[string]struct{}{}
	var walk func(n parse.Node)
	walk = func(n parse.Node) {
		switch n := n.(type) {
		case *parse.ListNode:
			if n == nil {
				return
			}
			for _, c := range n.Nodes {
				walk(c)
			}
		case *parse.ActionNode:
			walk(n.Pipe)
		case *parse.PipeNode:
			if n == nil {
				return
			}
			for _, c := range n.Cmds {
				walk(c)
			}
		case *parse.CommandNode:
			for _, a := range n.Args {
				walk(a)
			}
		case *parse.FieldNode:
			seen[n.Ident[0]] = struct{}{}
		case *parse.IfNode:
			walk(n.Pipe)
			walk(n.List)
			walk(n.ElseList)
		case *parse.WithNode:
			// The body sees the pipeline's value as dot; only the
			// else branch still refers to the parameters.
			walk(n.Pipe)
			walk(n.ElseList)
		case *parse.RangeNode:
			walk(n.Pipe)
			walk(n.ElseList)
		case *parse.TemplateNode:
			walk(n.Pipe)
		}
	}
	walk(tree.Root)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// driverArgs are the experiment driver options shared by every scheduler.
const driverArgs = `--github {{.github}} --git-clone --checkout \
	--src-root {{.src_root}} --dst-root {{.dst_root}} --src {{.src}} --dst {{.dst}} --start {{.start}} --stride {{.stride}} \
	--nodes {{.nodes}} --cores {{.cores}} \
	--cloc --cloc-path {{.cloc_path}} \
	--xml {{.performance_report}} \
	--cloc-report {{.cloc_report}}`
