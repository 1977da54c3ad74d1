package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/buildergen/internal/cli"
	"github.com/toyz/buildergen/internal/utils"
)

const userSource = `package accounts

//builder:derive
type User struct {
	Name  string //builder(required)
	Email string
}
`

const invoiceSource = `package billing

//builder:derive
type Invoice struct {
	Number string //builder(requird)
}
`

// newProject creates a module in a temp dir and makes it the working directory
func newProject(t *testing.T, files map[string]string) string {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	t.Setenv("BUILDERGEN_CACHE", "false")

	root := t.TempDir()
	files["go.mod"] = "module example.com/shop\n\ngo 1.22\n"
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	t.Chdir(root)
	return root
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "buildergen dev")
}

func TestGenerateCommand(t *testing.T) {
	root := newProject(t, map[string]string{"accounts/user.go": userSource})

	stdout, _, err := execute(t, "generate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Writing accounts/autogen_builder.go")
	assert.Contains(t, stdout, "Files written: 1")

	content, err := os.ReadFile(filepath.Join(root, "accounts", utils.DefaultOutputName))
	require.NoError(t, err)
	assert.Contains(t, string(content), "type UserBuilder struct")

	t.Run("check passes once generated", func(t *testing.T) {
		_, _, err := execute(t, "generate", "--check", "./...")
		assert.NoError(t, err)
	})

	t.Run("clean removes the output", func(t *testing.T) {
		stdout, _, err := execute(t, "clean")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Removed 1 generated file")
		assert.NoFileExists(t, filepath.Join(root, "accounts", utils.DefaultOutputName))
	})

	t.Run("check fails when missing", func(t *testing.T) {
		_, stderr, err := execute(t, "generate", "--check", "./...")
		require.Error(t, err)
		assert.Contains(t, stderr, "out of date")
	})
}

func TestGenerateCommand_CustomOutput(t *testing.T) {
	root := newProject(t, map[string]string{
		"accounts/user.go": userSource,
		cli.ConfigFileName: "output: autogen_builders.go\n",
	})

	_, _, err := execute(t, "generate", "-q")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "accounts", "autogen_builders.go"))

	_, _, err = execute(t, "generate", "-q", "--output", "autogen_b.go", "./accounts")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "accounts", "autogen_b.go"))
}

func TestGenerateCommand_DryRun(t *testing.T) {
	root := newProject(t, map[string]string{"accounts/user.go": userSource})

	stdout, _, err := execute(t, "generate", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, stdout, "==> accounts/autogen_builder.go <==")
	assert.Contains(t, stdout, "func NewUserBuilder()")
	assert.NoFileExists(t, filepath.Join(root, "accounts", utils.DefaultOutputName))
}

func TestGenerateCommand_JSONDiagnostics(t *testing.T) {
	root := newProject(t, map[string]string{
		"accounts/user.go":   userSource,
		"billing/invoice.go": invoiceSource,
	})

	stdout, _, err := execute(t, "generate", "--format", "json")
	require.Error(t, err)
	assert.FileExists(t, filepath.Join(root, "accounts", utils.DefaultOutputName))

	var doc struct {
		Diagnostics []cli.JSONDiagnostic `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc), stdout)
	require.Len(t, doc.Diagnostics, 1)
	assert.Equal(t, "billing/invoice.go", doc.Diagnostics[0].File)
	assert.Equal(t, 5, doc.Diagnostics[0].Line)
	assert.Equal(t, "DirectiveSyntaxError", doc.Diagnostics[0].Code)
}

func TestGenerateCommand_InvalidFlags(t *testing.T) {
	newProject(t, map[string]string{"accounts/user.go": userSource})

	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{"jobs", []string{"generate", "--jobs", "0"}, "jobs must be between 1 and 256"},
		{"format", []string{"generate", "--format", "xml"}, "format must be one of text json"},
		{"output", []string{"generate", "--output", "builders.go"}, "autogen_*.go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, stderr, tt.message)
		})
	}

	t.Run("exclusive flags", func(t *testing.T) {
		_, _, err := execute(t, "generate", "--check", "--dry-run")
		assert.Error(t, err)

		_, _, err = execute(t, "--verbose", "--quiet", "generate")
		assert.Error(t, err)
	})
}
