package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Level: "INFO"}))
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	Infof("Saving battery with post code: %s", "6107")
	Debug("hidden at info level")
	WithFields(map[string]interface{}{"status": 200, "method": "GET"}, "request")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Regexp(t, regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3} \[INFO\] Saving battery with post code: 6107$`), string(lines[0]))
	assert.Contains(t, string(lines[1]), "[INFO] request method=GET status=200")
}

func TestInit_FileOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, Init(Options{Level: "DEBUG", Dir: dir, MaxAge: 1}))
	t.Cleanup(func() {
		require.NoError(t, Init(Options{Level: "INFO"}))
	})

	Debug("written to file")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}
