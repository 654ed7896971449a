// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deps

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/authorcheck/pkg/types"
)

func writeStub(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	return path
}

func TestCheckBinaries(t *testing.T) {
	present := writeStub(t, t.TempDir(), "pdftoppm")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	require.Len(t, results, len(reqs))

	assert.True(t, results[0].Available)
	assert.Equal(t, present, results[0].Path)
	assert.Empty(t, results[0].Detail)

	assert.False(t, results[1].Available)
	assert.Equal(t, "clearly-not-present-binary", results[1].Command)
	assert.Contains(t, results[1].Detail, "not found")

	assert.False(t, results[2].Available)
	assert.Equal(t, "command not configured", results[2].Detail)
}

func TestForRender(t *testing.T) {
	native := ForRender(types.RenderConfig{Backend: types.BackendNative, Binary: "pdftoppm", Image: "poppler:latest"})
	require.Len(t, native, 3)
	assert.Equal(t, "pdftoppm", native[0].Command)
	assert.False(t, native[0].Optional)
	assert.True(t, native[1].Optional)
	assert.Contains(t, native[1].Description, "poppler:latest")
	assert.Contains(t, native[1].Description, "mage image")

	container := ForRender(types.RenderConfig{Backend: types.BackendContainer, Binary: "pdftoppm"})
	assert.True(t, container[0].Optional)
}

func TestMissing(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PATH", dir)
	writeStub(t, dir, "docker")

	statuses := CheckBinaries(ForRender(types.RenderConfig{Backend: types.BackendNative, Binary: "pdftoppm"}))
	missing := Missing(statuses)

	require.Len(t, missing, 1)
	assert.Equal(t, "pdftoppm", missing[0].Name)
	assert.True(t, statuses[1].Available, "docker stub should be found on PATH")
	assert.False(t, statuses[2].Available)
}
