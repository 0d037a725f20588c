package script

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hpcsweep.io/core"
	"hpcsweep.io/scheduler"
)

func testParams() Params {
	return Params{
		Name:              "astropy-cloc",
		Nodes:             4,
		Cores:             12,
		Start:             0,
		Stride:            10,
		Walltime:          "02:15:00",
		Account:           "SE_HPC",
		Queue:             "pubnet",
		GitHub:            "astropy/astropy",
		Repo:              "astropy",
		Src:               "astropy",
		Dst:               "astropy-commits",
		SrcRoot:           "/projects/SE_HPC",
		DstRoot:           "/scratch/SE_HPC",
		ClocPath:          "cloc",
		Driver:            "./scripts/do-basic.sh",
		PerformanceReport: "experiments/astropy-performance-n4-c12-0-10.xml",
		ClocReport:        "experiments/astropy-cloc-n4-c12-0-10.xml",
	}
}

func cobalt(t *testing.T) *scheduler.Template {
	t.Helper()
	tmpl, err := scheduler.Lookup("cobalt")
	require.NoError(t, err)
	return tmpl
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "astropy-cloc-n16-c12-0-10.sh", Filename("astropy-cloc", 16, 12, 0, 10, ""))
	assert.Equal(t, "astropy-cloc-n16-c12-0-10-slurm.sh", Filename("astropy-cloc", 16, 12, 0, 10, "slurm"))
}

func TestReportPath(t *testing.T) {
	assert.Equal(t, "experiments/sbt-cloc-n2-c12-3-1.xml", ReportPath("experiments", "sbt", "cloc", 2, 12, 3, 1))
}

func TestParamsMapOmitsEmptyStrings(t *testing.T) {
	m := testParams().Map()
	_, ok := m["email"]
	assert.False(t, ok)
	assert.Equal(t, "48", m["tasks"])
	assert.Equal(t, "4", m["nodes"])
	assert.Equal(t, "0", m["start"])
}

func TestRenderCobalt(t *testing.T) {
	m := NewMaterializer(zap.NewNop().Sugar())
	out, err := m.Render(cobalt(t), testParams())
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, Header))
	assert.Contains(t, s, "qsub $DEPENDENCIES -n 4 -t 02:15:00 -A SE_HPC -q pubnet")
	assert.Contains(t, s, "--github astropy/astropy")
	assert.Contains(t, s, "--xml experiments/astropy-performance-n4-c12-0-10.xml")
	assert.NotContains(t, s, "{{")
	assert.NotContains(t, s, "<no value>")
}

func TestRenderMissingPlaceholder(t *testing.T) {
	tmpl, err := scheduler.Lookup("sge")
	require.NoError(t, err)

	m := NewMaterializer(zap.NewNop().Sugar())
	_, err = m.Render(tmpl, testParams())

	var rerr *core.RenderError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "sge", rerr.Template)
	assert.Equal(t, "email", rerr.Placeholder)
	assert.True(t, errors.Is(err, core.ErrMissingPlaceholder))
}

func TestMaterializeWritesExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.sh")
	m := NewMaterializer(zap.NewNop().Sugar())

	s, err := m.Materialize(cobalt(t), testParams(), path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, s.Content, data)
}

func TestMaterializeOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.sh")
	stale := strings.Repeat("stale content\n", 1000)
	require.NoError(t, os.WriteFile(path, []byte(stale), 0600))

	m := NewMaterializer(zap.NewNop().Sugar())
	s, err := m.Materialize(cobalt(t), testParams(), path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, s.Content, data)
	assert.NotContains(t, string(data), "stale")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestMaterializeIOFailure(t *testing.T) {
	// A directory sitting at the target path cannot be opened for writing,
	// even by root.
	path := filepath.Join(t.TempDir(), "run.sh")
	require.NoError(t, os.Mkdir(path, 0755))

	m := NewMaterializer(zap.NewNop().Sugar())
	_, err := m.Materialize(cobalt(t), testParams(), path)

	var ioerr *core.IOFailure
	require.True(t, errors.As(err, &ioerr))
	assert.Equal(t, path, ioerr.Path)
	assert.Equal(t, "write", ioerr.Op)
}
