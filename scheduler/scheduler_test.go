package scheduler

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisteredSchedulers(t *testing.T) {
	assert.Equal(t, []string{"cobalt", "sge", "slurm", "spark"}, IDs())
}

func TestLookupUnknownScheduler(t *testing.T) {
	_, err := Lookup("foo")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownScheduler))
	assert.Contains(t, err.Error(), `"foo"`)
	assert.Contains(t, err.Error(), "cobalt")
}

func TestRegisterDuplicatePanics(t *testing.T) {
	assert.Panics(t, func() {
		Register(New("cobalt", "qsub", "again", "{{.nodes}}"))
	})
}

func TestPlaceholders(t *testing.T) {
	tmpl := New("test", "echo", "", "{{.b}} {{.a}} {{if .c}}{{.d}}{{else}}{{.e}}{{end}} {{.a}}")
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, tmpl.Placeholders())
}

func TestPlaceholdersInWithRangeAndTemplate(t *testing.T) {
	tmpl := New("test", "echo", "",
		`{{with .x}}{{.}}{{else}}{{.e}}{{end}} {{range .z}}{{.}}{{end}} {{define "t"}}{{.}}{{end}}{{template "t" .w}}`)
	assert.Equal(t, []string{"e", "w", "x", "z"}, tmpl.Placeholders())
}

func TestCobaltPlaceholders(t *testing.T) {
	tmpl, err := Lookup("cobalt")
	require.NoError(t, err)
	assert.Equal(t, "qsub", tmpl.Command)
	assert.Equal(t, []string{
		"account", "cloc_path", "cloc_report", "cores", "driver", "dst", "dst_root",
		"github", "nodes", "performance_report", "queue", "src", "src_root", "start",
		"stride", "walltime",
	}, tmpl.Placeholders())
}

func TestSgeRequiresEmail(t *testing.T) {
	tmpl, err := Lookup("sge")
	require.NoError(t, err)
	assert.Contains(t, tmpl.Placeholders(), "email")
	assert.Contains(t, tmpl.Placeholders(), "tasks")
}

func TestExecuteMissingKeyFails(t *testing.T) {
	tmpl := New("strict", "echo", "", "{{.present}} {{.absent}}")
	var b bytes.Buffer
	err := tmpl.Execute(&b, map[string]string{"present": "x"})
	assert.Error(t, err)
}

func TestExecuteResolvesEveryPlaceholder(t *testing.T) {
	for _, id := range IDs() {
		tmpl, err := Lookup(id)
		require.NoError(t, err)
		params := map[string]string{}
		for _, name := range tmpl.Placeholders() {
			params[name] = "<" + name + ">"
		}
		var b bytes.Buffer
		require.NoError(t, tmpl.Execute(&b, params), id)
		assert.NotContains(t, b.String(), "{{", id)
		assert.Contains(t, b.String(), "<walltime>", id)
	}
}
