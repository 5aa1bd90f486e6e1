package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseBuildTime(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	assert.True(t, parseBuildTime("").IsZero())
	assert.True(t, parseBuildTime("unknown").IsZero())
	assert.True(t, parseBuildTime("yesterday").IsZero())
	assert.True(t, want.Equal(parseBuildTime("2024-03-01T12:30:00Z")))
	assert.True(t, want.Equal(parseBuildTime("2024-03-01 12:30:00")))
}

func TestBuildInfo_Short(t *testing.T) {
	assert.Equal(t, "v1.2.0 (0123456)", (&BuildInfo{Version: "v1.2.0", GitCommit: "0123456789abcdef"}).Short())
	assert.Equal(t, "dev", (&BuildInfo{Version: "dev", GitCommit: "unknown"}).Short())
}

func TestBuildInfo_IsRelease(t *testing.T) {
	assert.True(t, (&BuildInfo{Version: "v1.0.0"}).IsRelease())
	assert.False(t, (&BuildInfo{Version: "dev"}).IsRelease())
	assert.False(t, (&BuildInfo{Version: "dev-0123456"}).IsRelease())
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}
