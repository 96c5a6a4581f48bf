package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesToFileAndMirror(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tabata.log")
	var mirror bytes.Buffer

	logger, closer := New(Options{Path: path, Mirror: &mirror})
	logger.Printf("Controller: started run %s", "abc")
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Controller: started run abc")
	assert.Contains(t, mirror.String(), "Controller: started run abc")
}

func TestNew_VerboseAddsSourceLocation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabata.log")

	logger, closer := New(Options{Path: path, Verbose: true})
	logger.Printf("hello")
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "logging_test.go")
}

func TestDefaultPath(t *testing.T) {
	path := DefaultPath()
	assert.Equal(t, "tabata.log", filepath.Base(path))
	assert.Equal(t, ".tabata", filepath.Base(filepath.Dir(path)))
}

func TestLineWriter_SplitsAndNeverBlocks(t *testing.T) {
	ch := make(chan string, 2)
	w := NewLineWriter(ch)

	n, err := w.Write([]byte("first\nsecond\nthird\n"))
	require.NoError(t, err)
	assert.Equal(t, len("first\nsecond\nthird\n"), n)

	assert.Equal(t, "first\n", <-ch)
	assert.Equal(t, "second\n", <-ch)
	assert.Empty(t, ch, "third line dropped, channel was full")

	_, err = w.Write([]byte("\n"))
	require.NoError(t, err)
	assert.Empty(t, ch)
}

func TestNew_MirrorToLineWriter(t *testing.T) {
	ch := make(chan string, 4)
	logger, closer := New(Options{Path: filepath.Join(t.TempDir(), "t.log"), Mirror: NewLineWriter(ch)})
	defer func() { _ = closer.Close() }()

	logger.Printf("UI: hello")
	line := <-ch
	assert.Contains(t, line, "UI: hello")
	assert.True(t, len(line) > 0 && line[len(line)-1] == '\n')
}
