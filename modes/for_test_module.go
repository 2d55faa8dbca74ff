package modes

import (
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/taibf/logs"
)

// ModuleForTest routes logs to the test output and disables the journal. Fork
// it over a scope that already has logs.Module.
type ModuleForTest struct {
	dscope.Module
	t *testing.T
}

func ForTest(t *testing.T) ModuleForTest {
	return ModuleForTest{
		t: t,
	}
}

func (m ModuleForTest) T() *testing.T {
	return m.t
}

func (m ModuleForTest) Mode() Mode {
	return ModeDevelopment
}

func (m ModuleForTest) Writer() logs.Writer {
	return m.t.Output()
}

func (m ModuleForTest) Journal() logs.Journal {
	return false
}
