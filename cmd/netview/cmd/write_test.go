package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nverrors "github.com/ya-spark/netview-backendlog/internal/errors"
)

func readLogDir(t *testing.T, env testEnv) string {
	t.Helper()
	var b strings.Builder
	for _, name := range env.logFiles(t) {
		data, err := os.ReadFile(filepath.Join(env.logDir, name))
		require.NoError(t, err)
		b.Write(data)
	}
	return b.String()
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var ne *nverrors.NetViewError
	require.True(t, errors.As(err, &ne), "expected NetViewError, got %T", err)
	assert.Equal(t, code, ne.Code)
}

func TestWriteCmd_AppendsRecord(t *testing.T) {
	// Given: an empty log directory
	env := newTestEnv(t)

	// When: writing a record
	_, err := env.run(t, "", "write", "warn", "--source", "snmp", "poll", "timeout")

	// Then: one file holds the formatted record
	require.NoError(t, err)
	require.Len(t, env.logFiles(t), 1)
	content := readLogDir(t, env)
	assert.Contains(t, content, "] [WARN] [snmp] poll timeout\n")
	assert.True(t, strings.HasPrefix(content, "[20"))
}

func TestWriteCmd_DefaultSource(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "", "write", "info", "hello")

	require.NoError(t, err)
	assert.Contains(t, readLogDir(t, env), "[INFO] [backend] hello\n")
}

func TestWriteCmd_ContinuesNewestFile(t *testing.T) {
	// Given: a first write created a file
	env := newTestEnv(t)
	_, err := env.run(t, "", "write", "info", "first")
	require.NoError(t, err)

	// When: a second invocation writes again
	_, err = env.run(t, "", "write", "info", "second")
	require.NoError(t, err)

	// Then: both records share the file
	files := env.logFiles(t)
	require.Len(t, files, 1)
	content := readLogDir(t, env)
	assert.Less(t, strings.Index(content, "first"), strings.Index(content, "second"))
}

func TestWriteCmd_Stdin(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "line one\n\nline two\r\n", "write", "error", "--stdin", "-s", "probe")

	require.NoError(t, err)
	content := readLogDir(t, env)
	assert.Contains(t, content, "[ERROR] [probe] line one\n")
	assert.Contains(t, content, "[ERROR] [probe] line two\n")
	assert.Equal(t, 2, strings.Count(content, "\n"))
}

func TestWriteCmd_InvalidLevel(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "", "write", "loud", "hello")

	requireCode(t, err, nverrors.ErrCodeInvalidLevel)
}

func TestWriteCmd_EmptyMessage(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "", "write", "info")

	requireCode(t, err, nverrors.ErrCodeEmptyMessage)
}

func TestWriteCmd_RequiresLevel(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "", "write")

	assert.Error(t, err)
}
