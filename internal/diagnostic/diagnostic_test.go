package diagnostic_test

import (
	"fmt"
	"testing"

	"github.com/dfranx/hlslparser/internal/diagnostic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	messages []string
}

func (r *recordingLogger) LogError(format string, args ...any) {
	r.messages = append(r.messages, fmt.Sprintf(format, args...))
}

func TestListIsStickyOnFirstError(t *testing.T) {
	log := &recordingLogger{}
	list := diagnostic.NewList(log)

	list.Report(diagnostic.Error, diagnostic.Position{File: "a.sl", Line: 3}, "undeclared identifier '%s'", "foo")
	list.Report(diagnostic.Error, diagnostic.Position{File: "a.sl", Line: 9}, "second error should be dropped")

	require.True(t, list.HasError())
	require.NotNil(t, list.First())
	assert.Contains(t, list.First().Message, "foo")
	assert.Len(t, log.messages, 1)
}

func TestListIgnoresWarningsAfterError(t *testing.T) {
	log := &recordingLogger{}
	list := diagnostic.NewList(log)

	list.Report(diagnostic.Error, diagnostic.Position{File: "a.sl", Line: 1}, "boom")
	list.Report(diagnostic.Warning, diagnostic.Position{File: "a.sl", Line: 2}, "ignored")

	assert.Len(t, log.messages, 1)
}

func TestNoErrorReportedMeansNoError(t *testing.T) {
	list := diagnostic.NewList(nil)
	assert.False(t, list.HasError())
	assert.Nil(t, list.First())
}

func TestPositionStringWithAndWithoutColumn(t *testing.T) {
	p := diagnostic.Position{File: "a.sl", Line: 5}
	assert.Equal(t, "a.sl:5", p.String())

	p.Column = 3
	assert.Equal(t, "a.sl:5:3", p.String())
}
