package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfilerOptions(t *testing.T) {
	t.Parallel()

	p := Profiler{}.WithMode("cpu").WithPath("/tmp/x").WithQuiet(true)

	assert.Equal(t, Profiler{Mode: "cpu", Path: "/tmp/x", Quiet: true}, p)
}

func TestStartWithoutMode(t *testing.T) {
	t.Parallel()

	s := Profiler{Path: t.TempDir()}.Start()
	assert.IsType(t, ignore{}, s)
	s.Stop()
}

func TestStartUnknownMode(t *testing.T) {
	t.Parallel()

	s := Profiler{Mode: "bogus", Path: t.TempDir(), Quiet: true}.Start()
	assert.IsType(t, ignore{}, s)
	s.Stop()
}
