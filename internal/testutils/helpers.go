// Package testutils provides fixtures shared by the bfdconf test suites.
package testutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// WriteConfig writes content to keepalived.conf in a fresh temporary
// directory and returns its path.
func WriteConfig(t testing.TB, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "keepalived.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// instanceTemplates cycles through the shapes of bfd_instance block seen in
// real configurations. Each takes the instance index.
var instanceTemplates = []string{
	`bfd_instance BFD-%[1]d {
    neighbor_ip 10.%[2]d.%[3]d.1
    source_ip 10.%[2]d.%[3]d.254
    min_rx 50
    min_tx 50
    multiplier 3
}
`,
	`bfd_instance BFD-%[1]d {
    neighbor_ip 2001:db8:%[2]x:%[3]x::1
    hoplimit 32
    passive
    checker
}
`,
	`bfd_instance BFD-%[1]d {
    neighbor_ip 172.16.%[3]d.%[2]d
    weight -%[2]d
    vrrp
}
`,
	`bfd_instance BFD-%[1]d {
    neighbor_ip 192.168.%[2]d.%[3]d
    idle_tx 2000
    max_hops 5
}
`,
}

// GenerateInstances renders count distinct bfd_instance blocks, with a
// global_defs block and a vrrp_instance between them for the reader to skip.
func GenerateInstances(count int) string {
	var b strings.Builder

	b.WriteString("global_defs {\n    router_id generated\n}\n\n")
	for i := 0; i < count; i++ {
		fmt.Fprintf(&b, instanceTemplates[i%len(instanceTemplates)], i, (i/256)%256, i%256)
		b.WriteString("\n")
		if i%16 == 15 {
			fmt.Fprintf(&b, "vrrp_instance VI_%d {\n    track_bfd {\n        BFD-%d\n    }\n}\n\n", i, i)
		}
	}

	return b.String()
}

// WaitForFileChange waits for a file to be modified (useful for testing file watchers)
func WaitForFileChange(
	t testing.TB,
	filePath string,
	originalModTime time.Time,
	timeout time.Duration,
) {
	t.Helper()
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		info, err := os.Stat(filePath)
		if err == nil && info.ModTime().After(originalModTime) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("File %s was not modified within %v", filePath, timeout)
}
