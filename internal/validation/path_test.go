package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"system config", "/etc/keepalived/keepalived.conf", false},
		{"relative", "testdata/keepalived.conf", false},
		{"parent relative", "../keepalived.conf", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"nul byte", "keepalived\x00.conf", true},
		{"command separator", "/etc/keepalived.conf; rm -rf /", true},
		{"pipe", "keepalived.conf | cat", true},
		{"substitution", "$(id).conf", true},
		{"backtick", "`id`.conf", true},
		{"proc", "/proc/self/environ", true},
		{"dev", "/dev/../dev/zero", true},
		{"sys traversal", "/etc/../sys/kernel", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
