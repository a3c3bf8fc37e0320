package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t *testing.T) *time.Time {
	t.Helper()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	prev := Now
	Now = func() time.Time { return now }
	t.Cleanup(func() { Now = prev })
	return &now
}

func ruleNames(f *Filter) []string {
	var names []string
	for _, r := range f.Rules() {
		names = append(names, r.Name)
	}
	return names
}

func TestAddRuleInsertsAtFront(t *testing.T) {
	f := NewFilter("Main", "", "", nil)
	f.AddRule(NewRule(ActionShow, "first"))
	f.AddRule(NewRule(ActionShow, "second"))

	assert.Equal(t, []string{"second", "first"}, ruleNames(f))
}

func TestMutationsUpdateLastEdited(t *testing.T) {
	now := fixedClock(t)
	f := NewFilter("Main", "Imported from a.filter", "desc", nil)
	assert.Equal(t, *now, f.LastEdited())

	steps := []struct {
		name string
		fn   func()
	}{
		{"add", func() { f.AddRule(NewRule(ActionHide, "a")) }},
		{"rename", func() { f.SetName("Renamed") }},
		{"describe", func() { f.SetDescription("new") }},
		{"update", func() { require.NoError(t, f.UpdateRule(0, NewRule(ActionShow, "b"))) }},
		{"remove", func() { require.NoError(t, f.RemoveRule(0)) }},
	}

	for _, s := range steps {
		*now = now.Add(time.Minute)
		s.fn()
		assert.Equal(t, *now, f.LastEdited(), s.name)
	}
	assert.Equal(t, "Imported from a.filter", f.ImportedFrom())
}

func TestMoveRule(t *testing.T) {
	f := NewFilter("Main", "", "", []*Rule{
		NewRule(ActionShow, "a"),
		NewRule(ActionShow, "b"),
		NewRule(ActionShow, "c"),
	})

	require.NoError(t, f.MoveRule(0, 2))
	assert.Equal(t, []string{"b", "c", "a"}, ruleNames(f))

	require.NoError(t, f.MoveRule(2, 0))
	assert.Equal(t, []string{"a", "b", "c"}, ruleNames(f))

	assert.ErrorIs(t, f.MoveRule(0, 3), ErrIndexOutOfRange)
	assert.ErrorIs(t, f.RemoveRule(-1), ErrIndexOutOfRange)
	assert.ErrorIs(t, f.UpdateRule(3, NewRule(ActionShow, "x")), ErrIndexOutOfRange)
}

func TestUpdateRuleStoresCopy(t *testing.T) {
	f := NewFilter("Main", "", "", []*Rule{NewRule(ActionShow, "a")})
	replacement := NewRule(ActionHide, "b")

	require.NoError(t, f.UpdateRule(0, replacement))
	replacement.Name = "changed later"

	r, err := f.Rule(0)
	require.NoError(t, err)
	assert.Equal(t, "b", r.Name)
}

func TestFilterCloneIsIndependent(t *testing.T) {
	f := NewFilter("Main", "src", "desc", []*Rule{NewRule(ActionShow, "a")})
	cp := f.Clone()

	cp.SetName("Copy")
	cp.AddRule(NewRule(ActionHide, "b"))
	cp.Rules()[1].Name = "changed"

	assert.Equal(t, "Main", f.Name())
	assert.Equal(t, []string{"a"}, ruleNames(f))
	assert.Equal(t, "src", cp.ImportedFrom())
}

func TestNamesStayOnOneLine(t *testing.T) {
	f := NewFilter("Two\nlines", "", "a\r\nb", nil)
	assert.Equal(t, "Two lines", f.Name())
	assert.Equal(t, "a b", f.Description())

	f.SetName("x\ny")
	f.SetDescription("first\rsecond\nthird")
	assert.Equal(t, "x y", f.Name())
	assert.Equal(t, "first second third", f.Description())

	r := NewRule(ActionHide, "bad\nname")
	assert.Equal(t, "bad name", r.Name)
	r.SetName("a\nb")
	assert.Equal(t, "a b", r.Name)
}
