package library

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/path-of-filtering/internal/encoder"
	"github.com/bnema/path-of-filtering/internal/gateway"
	"github.com/bnema/path-of-filtering/internal/logging"
	"github.com/bnema/path-of-filtering/internal/models"
	"github.com/bnema/path-of-filtering/internal/parser"
	"github.com/bnema/path-of-filtering/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLibrary(t *testing.T, withStore bool) (*Library, string) {
	t.Helper()
	dir := t.TempDir()
	log := logging.NewWriterLogger("test", "error", io.Discard)

	var st store.WorkspaceStore
	if withStore {
		s, err := store.NewSQLiteStore(store.SQLiteConfig{Path: filepath.Join(t.TempDir(), "ws.db")})
		require.NoError(t, err)
		require.NoError(t, s.Connect(context.Background()))
		require.NoError(t, s.Migrate(context.Background()))
		t.Cleanup(func() { s.Close() })
		st = s
	}

	return New(gateway.New(dir, ".filter"), st, log), dir
}

func TestNewLibraryHasDefaultFilter(t *testing.T) {
	l, _ := newTestLibrary(t, false)

	require.Len(t, l.Filters(), 1)
	assert.Equal(t, DefaultFilterName, l.Selected().Name())
	assert.Equal(t, DefaultFilterDescription, l.Selected().Description())
}

func TestAddAndDeleteFilters(t *testing.T) {
	l, _ := newTestLibrary(t, false)

	f := l.AddFilter()
	assert.Equal(t, "New Filter 2", f.Name())
	assert.Equal(t, 1, l.SelectedIndex())

	require.NoError(t, l.DeleteFilter(1))
	assert.Equal(t, 0, l.SelectedIndex())

	require.NoError(t, l.DeleteFilter(0))
	assert.Empty(t, l.Filters())
	assert.Nil(t, l.Selected())
	assert.ErrorIs(t, l.DeleteFilter(0), models.ErrIndexOutOfRange)

	_, err := l.AddRule()
	assert.ErrorIs(t, err, models.ErrIndexOutOfRange)
}

func TestDuplicateFilter(t *testing.T) {
	l, _ := newTestLibrary(t, false)
	original := l.Selected()
	original.AddRule(models.NewRule(models.ActionHide, "Junk"))

	dup, err := l.DuplicateFilter(0)
	require.NoError(t, err)

	assert.Equal(t, DefaultFilterName+"-copy", dup.Name())
	assert.Equal(t, 1, l.SelectedIndex())
	require.Len(t, dup.Rules(), 1)

	dup.Rules()[0].SetName("Changed")
	assert.Equal(t, "Junk", original.Rules()[0].Name)

	_, err = l.DuplicateFilter(5)
	assert.ErrorIs(t, err, models.ErrIndexOutOfRange)
}

func TestAddRuleGoesToTop(t *testing.T) {
	l, _ := newTestLibrary(t, false)

	l.Selected().AddRule(models.NewRule(models.ActionHide, "old"))
	rule, err := l.AddRule()
	require.NoError(t, err)

	assert.Equal(t, NewRuleName, rule.Name)
	assert.Equal(t, models.ActionShow, rule.Action)
	assert.Same(t, rule, l.Selected().Rules()[0])
}

func TestExportThenImportAll(t *testing.T) {
	l, dir := newTestLibrary(t, false)

	f := l.Selected()
	f.SetName("My Filter")
	r := models.NewRule(models.ActionRecolor, "Gold")
	r.SetColor(models.YellowSolid)
	f.AddRule(r)

	path, err := l.ExportSelected()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "My_Filter.filter"), path)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Broken.filter"), []byte("nonsense\nShow\n"), 0644))

	report, err := l.ImportAll()
	require.NoError(t, err)
	assert.Equal(t, 2, report.Files)
	assert.Equal(t, 1, report.Rules)
	assert.Len(t, report.Warnings, 1)

	filters := l.Filters()
	require.Len(t, filters, 2)
	assert.Equal(t, parser.FallbackName, filters[0].Name())
	assert.Equal(t, "Imported from Broken.filter", filters[0].ImportedFrom())
	assert.Equal(t, "My Filter", filters[1].Name())
	assert.Equal(t, "Imported from My_Filter.filter", filters[1].ImportedFrom())
	assert.Equal(t, models.YellowSolid, filters[1].Rules()[0].Color)
	assert.Equal(t, 0, l.SelectedIndex())
}

func TestImportAllEmptyDirectoryKeepsCollection(t *testing.T) {
	l, _ := newTestLibrary(t, false)

	report, err := l.ImportAll()
	require.NoError(t, err)
	assert.Zero(t, report.Files)
	assert.Len(t, l.Filters(), 1)
}

func TestImportSingleDocument(t *testing.T) {
	l, _ := newTestLibrary(t, false)
	src := models.NewFilter("Remote", "", "from the web", []*models.Rule{models.NewRule(models.ActionHide, "Junk")})

	f, err := l.Import("Imported from https://example.com/a.filter", encoder.EncodeFilter(src))
	require.NoError(t, err)

	assert.Equal(t, "Remote", f.Name())
	assert.Equal(t, 1, l.SelectedIndex())
	idx, ok := l.FindByName("Remote")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestSaveAndLoadWorkspace(t *testing.T) {
	l, _ := newTestLibrary(t, true)
	ctx := context.Background()

	second := l.AddFilter()
	second.AddRule(models.NewRule(models.ActionHide, "Junk"))
	edited := second.LastEdited()
	require.NoError(t, l.Select(1))
	require.NoError(t, l.Save(ctx))

	require.NoError(t, l.DeleteFilter(0))
	require.NoError(t, l.DeleteFilter(0))
	require.NoError(t, l.Load(ctx))

	filters := l.Filters()
	require.Len(t, filters, 2)
	assert.Equal(t, DefaultFilterName, filters[0].Name())
	assert.Equal(t, "New Filter 2", filters[1].Name())
	assert.Equal(t, "Junk", filters[1].Rules()[0].Name)
	assert.WithinDuration(t, edited, filters[1].LastEdited(), time.Millisecond)
	assert.Equal(t, 1, l.SelectedIndex())
}

func TestSaveAndLoadKeepsUnwrittenState(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	log := logging.NewWriterLogger("test", "error", io.Discard)

	st, err := store.NewSQLiteStore(store.SQLiteConfig{Path: filepath.Join(t.TempDir(), "ws.db")})
	require.NoError(t, err)
	require.NoError(t, st.Connect(ctx))
	require.NoError(t, st.Migrate(ctx))
	t.Cleanup(func() { st.Close() })

	l := New(gateway.New(dir, ".filter"), st, log)
	rule, err := l.AddRule()
	require.NoError(t, err)
	rule.IsEmphasized = true
	rule.SetMapIcon(true, models.IconStar)
	require.NoError(t, rule.SetSoundEffect(true, 4))
	rule.HasBeamEffect = true
	require.NoError(t, rule.AddCondition(models.NewItemTypeCondition(
		models.ItemTypeEntry{Kind: models.ItemTypeDefense, Value: "Evasion"},
	)))
	require.NoError(t, rule.AddCondition(models.NewFlagCondition(models.KindCorrupted, true)))
	want := rule.Clone()
	require.NoError(t, l.Save(ctx))

	fresh := New(gateway.New(dir, ".filter"), st, log)
	require.NoError(t, fresh.Load(ctx))

	rules := fresh.Selected().Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, want, rules[0])
}

func TestLoadFallsBackToDocument(t *testing.T) {
	ctx := context.Background()
	log := logging.NewWriterLogger("test", "error", io.Discard)

	st, err := store.NewSQLiteStore(store.SQLiteConfig{Path: filepath.Join(t.TempDir(), "ws.db")})
	require.NoError(t, err)
	require.NoError(t, st.Connect(ctx))
	require.NoError(t, st.Migrate(ctx))
	t.Cleanup(func() { st.Close() })

	src := models.NewFilter("Old", "", "", []*models.Rule{models.NewRule(models.ActionHide, "Junk")})
	records := []store.FilterRecord{
		{Name: "Old", Document: encoder.EncodeFilter(src), LastEdited: src.LastEdited()},
		{Name: "Broken", Model: "rules: [unclosed", Document: encoder.EncodeFilter(src), LastEdited: src.LastEdited()},
	}
	require.NoError(t, st.SaveWorkspace(ctx, records, ""))

	l := New(gateway.New(t.TempDir(), ".filter"), st, log)
	require.NoError(t, l.Load(ctx))

	filters := l.Filters()
	require.Len(t, filters, 2)
	for _, f := range filters {
		assert.Equal(t, "Old", f.Name())
		require.Len(t, f.Rules(), 1)
		assert.Equal(t, "Junk", f.Rules()[0].Name)
	}
}

func TestSaveWithoutStore(t *testing.T) {
	l, _ := newTestLibrary(t, false)

	assert.ErrorIs(t, l.Save(context.Background()), ErrNoStore)
	assert.ErrorIs(t, l.Load(context.Background()), ErrNoStore)
}
