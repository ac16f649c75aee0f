package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProjectFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestAnalyzeCommandProducesModel(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "a.go", `package demo

func helper() {}

func run() {
	helper()
}
`)
	writeProjectFile(t, root, "b.go", `package demo

func lonely() {}
`)
	viper.Set(logFilenameKey, filepath.Join(t.TempDir(), "archmap.log"))

	cmd := NewRootCommand("test")
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"analyze", root, "--format", "json"})

	require.NoError(t, cmd.Execute())

	var doc ExportModel
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &doc))
	assert.Equal(t, filepath.Base(root), doc.Root.Name)
	assert.Equal(t, 2, doc.View.Files)
	require.Len(t, doc.Root.Parts, 2)
	assert.True(t, doc.View.Symbols >= 3)
}

func TestAnalyzeCommandDeterministicOutput(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "x.go", "package demo\n\nfunc x() {}\n")
	viper.Set(logFilenameKey, filepath.Join(t.TempDir(), "archmap.log"))

	run := func() string {
		cmd := NewRootCommand("test")
		var stdout, stderr bytes.Buffer
		cmd.SetOut(&stdout)
		cmd.SetErr(&stderr)
		cmd.SetArgs([]string{"analyze", root, "--format", "yaml"})
		require.NoError(t, cmd.Execute())
		return stdout.String()
	}
	assert.Equal(t, run(), run())
}

func TestAnalyzeCommandFailsOnEmptyFolder(t *testing.T) {
	root := t.TempDir()
	viper.Set(logFilenameKey, filepath.Join(t.TempDir(), "archmap.log"))

	cmd := NewRootCommand("test")
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"analyze", root})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no code files found")
}
