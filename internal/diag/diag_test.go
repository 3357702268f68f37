package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityString(t *testing.T) {
	testCases := []struct {
		severity Severity
		expected string
	}{
		{Note, "note"},
		{Warning, "warning"},
		{Error, "error"},
		{Severity(99), "unknown"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, tc.severity.String())
	}
}

func TestPositionString(t *testing.T) {
	testCases := []struct {
		pos      Position
		expected string
	}{
		{Position{File: "foo.h"}, "foo.h"},
		{Position{File: "foo.h", Line: 3, Column: 5}, "foo.h:3:5"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, tc.pos.String())
	}
}

func TestCollectingReporter(t *testing.T) {
	r := &CollectingReporter{}
	assert.NoError(t, r.Report(Diagnostic{Severity: Warning, Message: "w"}))
	assert.False(t, r.HasErrors())
	assert.NoError(t, r.Report(Diagnostic{Severity: Error, Message: "e"}))
	assert.True(t, r.HasErrors())
	assert.Len(t, r.Diagnostics, 2)
}

func TestReporterFunc(t *testing.T) {
	var got Diagnostic
	var r Reporter = ReporterFunc(func(d Diagnostic) error {
		got = d
		return nil
	})
	assert.NoError(t, r.Report(Diagnostic{Message: "hello"}))
	assert.Equal(t, "hello", got.Message)
}
