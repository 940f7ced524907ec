package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CalebLefcort/mypl/internal/cache"
	"github.com/CalebLefcort/mypl/pkg/vm"
)

func writeSrc(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "prog.mypl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNeedsRegenerationDetectsChange(t *testing.T) {
	dir := t.TempDir()
	src := writeSrc(t, dir, "void main(){}")
	c := cache.New(filepath.Join(dir, "cache.json"))

	needs, err := c.NeedsRegeneration(src)
	require.NoError(t, err)
	assert.True(t, needs)

	needs, err = c.NeedsRegeneration(src)
	require.NoError(t, err)
	assert.False(t, needs, "unchanged file should not need regeneration")

	writeSrc(t, dir, "void main(){ print_string(\"x\"); }")
	needs, err = c.NeedsRegeneration(src)
	require.NoError(t, err)
	assert.True(t, needs, "changed content should need regeneration")
}

func TestStoreAndLoadTemplatesRoundTrips(t *testing.T) {
	dir := t.TempDir()
	src := writeSrc(t, dir, "void main(){}")
	c := cache.New(filepath.Join(dir, "cache.json"))

	_, err := c.NeedsRegeneration(src)
	require.NoError(t, err)

	templates := map[string]*vm.FrameTemplate{
		"main": {
			ID:         "main",
			ParamCount: 0,
			Instrs: []*vm.Instruction{
				{Op: vm.PUSH, Value: vm.Null},
				{Op: vm.RET},
			},
		},
	}
	require.NoError(t, c.StoreTemplates(src, templates))

	loaded, ok := c.LoadTemplates(src)
	require.True(t, ok)
	require.Contains(t, loaded, "main")
	assert.Equal(t, 2, len(loaded["main"].Instrs))
}

func TestSaveAndLoadPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	src := writeSrc(t, dir, "void main(){}")
	cachePath := filepath.Join(dir, "cache.json")

	c := cache.New(cachePath)
	_, err := c.NeedsRegeneration(src)
	require.NoError(t, err)
	templates := map[string]*vm.FrameTemplate{"main": {ID: "main"}}
	require.NoError(t, c.StoreTemplates(src, templates))
	require.NoError(t, c.Save())

	c2, err := cache.Load(cachePath)
	require.NoError(t, err)
	loaded, ok := c2.LoadTemplates(src)
	require.True(t, ok)
	assert.Contains(t, loaded, "main")
}
