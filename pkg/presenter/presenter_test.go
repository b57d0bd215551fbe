package presenter

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newTestPresenter() (*TerminalPresenter, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return NewWithOptions(out, errOut, ColorNever), out, errOut
}

func TestErrorGoesToStderr(t *testing.T) {
	p, out, errOut := newTestPresenter()

	p.Error(errors.New("boom"), "skill tree build failed")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "[ERROR] skill tree build failed: boom")
}

func TestErrorIgnoresNil(t *testing.T) {
	p, _, errOut := newTestPresenter()
	p.Error(nil, "context")
	assert.Empty(t, errOut.String())
}

func TestQuietModeSuppressesStatusOutput(t *testing.T) {
	p, out, errOut := newTestPresenter()
	p.SetQuiet(true)

	p.Success("done")
	p.Warning("careful")
	p.Info("hello")
	p.Section("Results")
	p.Stats(&RunStats{Skills: 3})
	p.Separator()

	assert.Empty(t, out.String())

	// Errors always print.
	p.Error(errors.New("boom"), "")
	assert.Contains(t, errOut.String(), "boom")
}

func TestStats(t *testing.T) {
	p, out, _ := newTestPresenter()

	p.Stats(&RunStats{Skills: 12, Categories: 3, Errors: 1, Warnings: 2})

	assert.Contains(t, out.String(), "Skills: 12")
	assert.Contains(t, out.String(), "Categories: 3")
	assert.Contains(t, out.String(), "Errors: 1")
	assert.Contains(t, out.String(), "Warnings: 2")
}

func TestStatsNil(t *testing.T) {
	p, out, _ := newTestPresenter()
	p.Stats(nil)
	assert.Empty(t, out.String())
}
