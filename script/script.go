// Package script renders scheduler templates into executable submission
// scripts.
package script

import (
	"bytes"
	"os"

	"go.uber.org/zap"

	"hpcsweep.io/core"
	"hpcsweep.io/scheduler"
)

const (
	Header = `#!/bin/bash
# This script is generated by hpcsweep.
#
`
	ScriptPerms = 0755
)

// Script is a rendered submission script and where it belongs.
type Script struct {
	Path    string
	Content []byte
}

type Materializer struct {
	log *zap.SugaredLogger
}

func NewMaterializer(log *zap.SugaredLogger) *Materializer {
	return &Materializer{log: log}
}

// Render resolves every placeholder of t from p. A placeholder without a
// value is a RenderError; nothing is rendered as an empty string.
func (m *Materializer) Render(t *scheduler.Template, p Params) ([]byte, error) {
	params := p.Map()
	for _, name := range t.Placeholders() {
		if _, ok := params[name]; !ok {
			return nil, &core.RenderError{Template: t.ID, Placeholder: name, Err: core.ErrMissingPlaceholder}
		}
	}
	var b bytes.Buffer
	b.WriteString(Header)
	if err := t.Execute(&b, params); err != nil {
		return nil, &core.RenderError{Template: t.ID, Err: err}
	}
	return b.Bytes(), nil
}

// Materialize renders t and writes it to path, replacing any existing file,
// then makes it executable.
func (m *Materializer) Materialize(t *scheduler.Template, p Params, path string) (Script, error) {
	content, err := m.Render(t, p)
	if err != nil {
		return Script{}, err
	}
	if err := os.WriteFile(path, content, ScriptPerms); err != nil {
		return Script{}, &core.IOFailure{Op: "write", Path: path, Err: err}
	}
	// WriteFile only applies the mode when it creates the file.
	if err := os.Chmod(path, ScriptPerms); err != nil {
		return Script{}, &core.IOFailure{Op: "chmod", Path: path, Err: err}
	}
	m.log.Debugw("wrote script", "path", path, "bytes", len(content))
	return Script{Path: path, Content: content}, nil
}
