package script

import (
	"fmt"
	"path"
	"strconv"
)

// Params are the values one submission script is rendered from. They are
// built fresh for every (nodes, start) pair.
type Params struct {
	Name     string
	Nodes    int
	Cores    int
	Start    int
	Stride   int
	Walltime string

	Account string
	Queue   string
	Email   string

	GitHub string
	Repo   string
	Src    string
	Dst    string

	SrcRoot  string
	DstRoot  string
	ClocPath string
	Driver   string

	PerformanceReport string
	ClocReport        string
}

// Map is the placeholder view of p. Empty strings are left out so a
// template that needs an unset value fails instead of rendering a blank.
func (p Params) Map() map[string]string {
	m := map[string]string{
		"nodes":  strconv.Itoa(p.Nodes),
		"cores":  strconv.Itoa(p.Cores),
		"tasks":  strconv.Itoa(p.Nodes * p.Cores),
		"start":  strconv.Itoa(p.Start),
		"stride": strconv.Itoa(p.Stride),
	}
	for k, v := range map[string]string{
		"name":               p.Name,
		"walltime":           p.Walltime,
		"account":            p.Account,
		"queue":              p.Queue,
		"email":              p.Email,
		"github":             p.GitHub,
		"repo":               p.Repo,
		"src":                p.Src,
		"dst":                p.Dst,
		"src_root":           p.SrcRoot,
		"dst_root":           p.DstRoot,
		"cloc_path":          p.ClocPath,
		"driver":             p.Driver,
		"performance_report": p.PerformanceReport,
		"cloc_report":        p.ClocReport,
	} {
		if v != "" {
			m[k] = v
		}
	}
	return m
}

// Filename is <name>-n<nodes>-c<cores>-<start>-<stride>[-<scheduler>].sh.
// An empty scheduler leaves the suffix off.
func Filename(name string, nodes, cores, start, stride int, scheduler string) string {
	base := fmt.Sprintf("%s-n%d-c%d-%d-%d", name, nodes, cores, start, stride)
	if scheduler != "" {
		base += "-" + scheduler
	}
	return base + ".sh"
}

// ReportPath is where the driver writes a report of the given kind
// ("performance" or "cloc"). The report converters select files by the
// <repo>-<kind> prefix.
func ReportPath(dir, repo, kind string, nodes, cores, start, stride int) string {
	return path.Join(dir, fmt.Sprintf("%s-%s-n%d-c%d-%d-%d.xml", repo, kind, nodes, cores, start, stride))
}
