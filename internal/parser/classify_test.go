package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected []Directive
	}{
		{name: "rarity", line: "\tRarity Normal Magic", expected: []Directive{DirRarity}},
		{name: "stack size", line: "\tStackSize > 10", expected: []Directive{DirStackSize}},
		{name: "class wins over base type", line: `Class == "BaseType"`, expected: []Directive{DirClass}},
		{name: "area level is not a condition", line: "\tAreaLevel >= 60", expected: nil},
		{name: "styling line", line: "\tSetTextColor 255 0 0 255", expected: nil},
		{name: "substring match", line: `BaseType == "Quality Sockets"`, expected: []Directive{DirBaseType, DirQuality, DirSockets}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyLine(tt.line))
		})
	}
}

func TestQuotedValues(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "quoted with operator", input: `== "Rusted Sword" "Rusted Hatchet"`, expected: []string{"Rusted Sword", "Rusted Hatchet"}},
		{name: "bare words", input: `Rings Amulets`, expected: []string{"Rings", "Amulets"}},
		{name: "single equals", input: `= "Wands"`, expected: []string{"Wands"}},
		{name: "unterminated quote", input: `== "Open`, expected: []string{"Open"}},
		{name: "empty", input: ``, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, quotedValues(tt.input))
		})
	}
}
