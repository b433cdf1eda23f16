package contracts

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, ReportFormatVersion, info.ReportFormat)
}

func TestGetFullVersionString(t *testing.T) {
	s := GetFullVersionString()
	assert.True(t, strings.HasPrefix(s, "attendance-report v"+Version))
	assert.Contains(t, s, "report format: v1")
}
