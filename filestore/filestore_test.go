package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/salbp"
	"github.com/meikuraledutech/salbp/filestore"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestListInstancesFromListJSON(t *testing.T) {
	root := writeTree(t, map[string]string{
		"instance/list.json": `["i1.alb", "i2", 7, "i3.alb"]`,
	})
	names, err := filestore.New(root).ListInstances(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"i1", "i2", "i3"}, names)
}

func TestListInstancesWithoutListJSON(t *testing.T) {
	root := writeTree(t, map[string]string{
		"instance/b.alb": "",
		"instance/a.alb": "",
		"instance/notes": "",
		"soluce/a.sol":   "",
		"instance/c.txt": "",
		"instance/d.alb": "",
	})
	names, err := filestore.New(root).ListInstances(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "d"}, names)

	names, err = filestore.New(t.TempDir()).ListInstances(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestListInstancesBadJSON(t *testing.T) {
	for _, content := range []string{`{"i1": true}`, `[oops`} {
		root := writeTree(t, map[string]string{"instance/list.json": content})
		_, err := filestore.New(root).ListInstances(context.Background())
		assert.Error(t, err, content)
	}
}

func TestGetInstanceAndSolution(t *testing.T) {
	root := writeTree(t, map[string]string{
		"instance/i1.alb": "<cycle time>\n10\n",
		"soluce/i1.sol":   "station_1: 1\n",
	})
	store := filestore.New(root)
	ctx := context.Background()

	text, err := store.GetInstance(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, 10, salbp.ParseInstance(text).CycleTime)

	sol, err := store.GetSolution(ctx, "i1")
	require.NoError(t, err)
	assert.Len(t, salbp.ParseSolution(sol), 1)

	_, err = store.GetInstance(ctx, "i9")
	assert.ErrorIs(t, err, salbp.ErrInstanceNotFound)
	_, err = store.GetSolution(ctx, "i9")
	assert.ErrorIs(t, err, salbp.ErrSolutionNotFound)
}

func TestRejectsPathNames(t *testing.T) {
	store := filestore.New(t.TempDir())
	ctx := context.Background()
	for _, name := range []string{"", "..", "../etc/passwd", `a\b`} {
		_, err := store.GetInstance(ctx, name)
		assert.ErrorIs(t, err, salbp.ErrInvalidName, name)
		assert.ErrorIs(t, store.PutInstance(ctx, name, "x"), salbp.ErrInvalidName, name)
		assert.ErrorIs(t, store.DeleteInstance(ctx, name), salbp.ErrInvalidName, name)
	}
}

func TestPutAndDelete(t *testing.T) {
	root := t.TempDir()
	store := filestore.New(root)
	ctx := context.Background()

	require.ErrorIs(t, store.PutSolution(ctx, "i1", "station_1: 1\n"), salbp.ErrInstanceNotFound)

	require.NoError(t, store.PutInstance(ctx, "i1", "<cycle time>\n10\n"))
	require.NoError(t, store.PutInstance(ctx, "i2", "<cycle time>\n20\n"))
	require.NoError(t, store.PutInstance(ctx, "i1", "<cycle time>\n11\n"))
	require.NoError(t, store.PutSolution(ctx, "i1", "station_1: 1\n"))

	list, err := os.ReadFile(filepath.Join(root, "instance", "list.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `["i1.alb", "i2.alb"]`, string(list))

	text, err := store.GetInstance(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "<cycle time>\n11\n", text)

	require.NoError(t, store.DeleteInstance(ctx, "i1"))
	require.NoError(t, store.DeleteInstance(ctx, "i1"))

	names, err := store.ListInstances(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"i2"}, names)
	_, err = store.GetSolution(ctx, "i1")
	assert.ErrorIs(t, err, salbp.ErrSolutionNotFound)
}
