package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/autoalloc"
	"github.com/roach88/autoalloc/internal/backend"
)

// executeCommand runs the CLI with the given args against fresh buffers.
func executeCommand(args ...string) (stdout, stderr string, err error) {
	cmd := NewRootCommand()

	var out, errBuf bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errBuf.String(), err
}

// writePolicy drops a policy YAML into a temp dir and returns its path.
func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// otherBackend returns a wire name different from the bound backend, to
// provoke a deliberate mismatch.
func otherBackend() string {
	if autoalloc.GetAllocatorType() == backend.System {
		return backend.EmbeddedHeap.String()
	}
	return backend.System.String()
}

func decodeResponse(t *testing.T, raw string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	return resp
}

func TestInfo_Text(t *testing.T) {
	stdout, _, err := executeCommand("info")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Allocator: ")
	assert.Contains(t, stdout, "Rule:      ")
	assert.Contains(t, stdout, "Reason:    ")
	assert.Contains(t, stdout, "CPU cores:")
}

func TestInfo_JSON(t *testing.T) {
	stdout, _, err := executeCommand("info", "--format", "json")
	require.NoError(t, err)

	resp := decodeResponse(t, stdout)
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, data, "allocator_type")
	assert.Contains(t, data, "rule_id")
	assert.Contains(t, data, "system_info")
}

func TestRoot_RejectsInvalidFormat(t *testing.T) {
	_, _, err := executeCommand("info", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRecommend_Text(t *testing.T) {
	stdout, _, err := executeCommand("recommend")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Recommended: ")
	assert.Contains(t, stdout, "Rule:        ")
	assert.Contains(t, stdout, "(rule ")
}

func TestRecommend_JSON(t *testing.T) {
	stdout, _, err := executeCommand("recommend", "--format", "json")
	require.NoError(t, err)

	resp := decodeResponse(t, stdout)
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, data, "allocator")
	assert.Contains(t, data, "rule_id")
	assert.Contains(t, data, "reason")
}

func TestRecommend_PinnedPolicy(t *testing.T) {
	path := writePolicy(t, "pinned_backend: embedded-heap\n")

	stdout, _, err := executeCommand("recommend", "--policy", path)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Recommended: embedded-heap")
	assert.Contains(t, stdout, "pinned by policy config")
}

func TestRecommend_BadPolicy(t *testing.T) {
	path := writePolicy(t, "core_threshold: 0\n")

	_, _, err := executeCommand("recommend", "--policy", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCheck_OptimalWithMatchingPin(t *testing.T) {
	// Pinning the policy to the backend that is actually bound forces
	// agreement regardless of the host the tests run on.
	path := writePolicy(t, fmt.Sprintf("pinned_backend: %s\n", autoalloc.GetAllocatorType()))

	stdout, _, err := executeCommand("check", "--policy", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "OK: bound allocator")
}

func TestCheck_MismatchExitsOne(t *testing.T) {
	path := writePolicy(t, fmt.Sprintf("pinned_backend: %s\n", otherBackend()))

	stdout, _, err := executeCommand("check", "--policy", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "MISMATCH: current: ")
}

func TestCheck_RecordRequiresDB(t *testing.T) {
	_, _, err := executeCommand("check", "--record")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--record requires --db")
}

func TestCheck_RecordAndDrift(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	policyPath := writePolicy(t, fmt.Sprintf("pinned_backend: %s\n", autoalloc.GetAllocatorType()))

	// First record: nothing to compare against.
	stdout, _, err := executeCommand("check", "--policy", policyPath, "--record", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Recorded: ")
	assert.Contains(t, stdout, "first record, nothing to compare")

	// Second record of the identical decision: no drift.
	stdout, _, err = executeCommand("check", "--policy", policyPath, "--record", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Drift:    none, matches the previous record")
}

func TestCheck_RecordJSONCarriesAuditFields(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	policyPath := writePolicy(t, fmt.Sprintf("pinned_backend: %s\n", autoalloc.GetAllocatorType()))

	stdout, _, err := executeCommand("check", "--policy", policyPath, "--record", "--db", dbPath, "--format", "json")
	require.NoError(t, err)

	resp := decodeResponse(t, stdout)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["optimal"])
	assert.NotEmpty(t, data["record_id"])
	assert.NotEmpty(t, data["fingerprint"])
	assert.NotContains(t, data, "drifted", "first record omits the drift flag")
}

func TestHistory_RequiresDB(t *testing.T) {
	_, _, err := executeCommand("history")
	require.Error(t, err)
}

func TestHistory_Empty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")

	stdout, _, err := executeCommand("history", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "no recorded decisions")
}

func TestHistory_ListsRecordedDecisions(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	policyPath := writePolicy(t, fmt.Sprintf("pinned_backend: %s\n", autoalloc.GetAllocatorType()))

	for i := 0; i < 3; i++ {
		_, _, err := executeCommand("check", "--policy", policyPath, "--record", "--db", dbPath)
		require.NoError(t, err)
	}

	stdout, _, err := executeCommand("history", "--db", dbPath, "--limit", "2", "--format", "json")
	require.NoError(t, err)

	resp := decodeResponse(t, stdout)
	entries, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.Len(t, entries, 2)

	first, ok := entries[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, autoalloc.GetAllocatorType().String(), first["allocator"])
	assert.NotEmpty(t, first["fingerprint"])
}
