//go:build basic

package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smokeComment = `[SF] Trillian test result (tid-10512)
Environment: kvm-ol8 (x2), Advanced Networking with Mgmt server ol8
Total time taken: 43189 seconds
Marvin logs: https://github.com/blueorangutan/acs-prs/releases/download/trillian/pr9001-t10512-kvm-ol8.zip
Smoke tests completed. 120 look OK, 2 have errors, 0 did not run
Only failed and skipped tests results shown below:

Test | Result | Time (s) | Test File
--- | --- | --- | ---
test_01_deploy_vm | ` + "`Error`" + ` | 12.50 | test_vm_life_cycle.py
test_02_snapshot | ` + "`Failure`" + ` | 300.10 | test_snapshots.py
`

func TestParseFromStdin(t *testing.T) {
	out, err := runPrdash(t, smokeComment, nil, "parse", "--author", "blueorangutan", "--pr", "9001")
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &parsed), out)
	assert.Contains(t, out, "test_01_deploy_vm")
	assert.Contains(t, out, "test_02_snapshot")
}

func TestParseFromFileAsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comment.md")
	require.NoError(t, os.WriteFile(path, []byte(smokeComment), 0o644))

	out, err := runPrdash(t, "", nil, "parse", path, "--output", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "test_name,result,time_seconds,test_file")
	assert.Contains(t, out, "test_02_snapshot")
}

func TestSQLiteReadCommands(t *testing.T) {
	env := map[string]string{
		"PRDASH_DB_BACKEND": "sqlite",
		"PRDASH_DB_CONNECT": filepath.Join(t.TempDir(), "prdash.db"),
	}

	_, err := runPrdash(t, "", env, "db", "migrate")
	require.NoError(t, err)

	out, err := runPrdash(t, "", env, "stats", "--output", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "frequent_failures")

	_, err = runPrdash(t, "", env, "prs")
	require.NoError(t, err)

	out, err = runPrdash(t, "", env, "failures", "9001")
	require.NoError(t, err)
	assert.Contains(t, out, "No failing tests stored for PR #9001")

	_, err = runPrdash(t, "", env, "db", "status")
	require.NoError(t, err)

	_, err = runPrdash(t, "", env, "db", "clear")
	require.NoError(t, err)
}

func TestInvalidBackend(t *testing.T) {
	_, err := runPrdash(t, "", map[string]string{"PRDASH_DB_BACKEND": "oracle"}, "db", "status")
	assert.Error(t, err)
}
