package models

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout matches the ISO-8601 form written to "Last Edited"
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Now is the clock used for lastEdited
var Now = func() time.Time {
	return time.Now().UTC()
}

// Filter is a named, ordered rule set. The first matching rule wins.
type Filter struct {
	name         string
	importedFrom string
	description  string
	lastEdited   time.Time
	rules        []*Rule
}

// NewFilter creates a filter owning rules
func NewFilter(name, importedFrom, description string, rules []*Rule) *Filter {
	return &Filter{
		name:         SingleLine(name),
		importedFrom: importedFrom,
		description:  SingleLine(description),
		lastEdited:   Now(),
		rules:        rules,
	}
}

func (f *Filter) Name() string          { return f.name }
func (f *Filter) ImportedFrom() string  { return f.importedFrom }
func (f *Filter) Description() string   { return f.description }
func (f *Filter) LastEdited() time.Time { return f.lastEdited }

// Rules returns the rules in precedence order; mutate through Filter methods
func (f *Filter) Rules() []*Rule { return f.rules }

// Rule returns the rule at index
func (f *Filter) Rule(index int) (*Rule, error) {
	if index < 0 || index >= len(f.rules) {
		return nil, fmt.Errorf("rule %d: %w", index, ErrIndexOutOfRange)
	}
	return f.rules[index], nil
}

func (f *Filter) touch() {
	f.lastEdited = Now()
}

// SetLastEdited overrides the timestamp, used when restoring a saved filter
func (f *Filter) SetLastEdited(t time.Time) {
	f.lastEdited = t.UTC()
}

// SetName and SetDescription keep the value on one line; the document
// header reads them from fixed lines.
func (f *Filter) SetName(name string) {
	f.name = SingleLine(name)
	f.touch()
}

func (f *Filter) SetDescription(description string) {
	f.description = SingleLine(description)
	f.touch()
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// SingleLine replaces line breaks with spaces
func SingleLine(s string) string {
	return lineBreaks.Replace(s)
}

// AddRule inserts rule at the top so it takes precedence
func (f *Filter) AddRule(rule *Rule) {
	f.rules = append([]*Rule{rule}, f.rules...)
	f.touch()
}

func (f *Filter) RemoveRule(index int) error {
	if index < 0 || index >= len(f.rules) {
		return fmt.Errorf("rule %d: %w", index, ErrIndexOutOfRange)
	}
	f.rules = append(f.rules[:index], f.rules[index+1:]...)
	f.touch()
	return nil
}

// MoveRule removes the rule at from and reinserts it at to
func (f *Filter) MoveRule(from, to int) error {
	if from < 0 || from >= len(f.rules) || to < 0 || to >= len(f.rules) {
		return fmt.Errorf("move %d to %d: %w", from, to, ErrIndexOutOfRange)
	}
	rule := f.rules[from]
	f.rules = append(f.rules[:from], f.rules[from+1:]...)
	f.rules = append(f.rules[:to], append([]*Rule{rule}, f.rules[to:]...)...)
	f.touch()
	return nil
}

// UpdateRule replaces the rule at index with a copy of rule
func (f *Filter) UpdateRule(index int, rule *Rule) error {
	if index < 0 || index >= len(f.rules) {
		return fmt.Errorf("rule %d: %w", index, ErrIndexOutOfRange)
	}
	f.rules[index] = rule.Clone()
	f.touch()
	return nil
}

// Clone returns an independent deep copy
func (f *Filter) Clone() *Filter {
	cp := *f
	cp.rules = make([]*Rule, len(f.rules))
	for i, r := range f.rules {
		cp.rules[i] = r.Clone()
	}
	return &cp
}
