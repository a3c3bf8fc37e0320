package parser

import (
	"strings"

	"github.com/bnema/path-of-filtering/internal/models"
)

// Directive is a condition keyword recognised inside a rule block
type Directive string

const (
	DirRarity       Directive = "Rarity"
	DirItemLevel    Directive = "ItemLevel"
	DirClass        Directive = models.ClassKeyword
	DirBaseType     Directive = models.BaseTypeKeyword
	DirQuality      Directive = "Quality"
	DirCorrupted    Directive = "Corrupted"
	DirMirrored     Directive = "Mirrored"
	DirWaystoneTier Directive = "WaystoneTier"
	DirStackSize    Directive = "StackSize"
	DirSockets      Directive = "Sockets"
)

// conditionDirectives is the order in which a line is tested
var conditionDirectives = []Directive{
	DirRarity, DirItemLevel, DirClass, DirBaseType, DirQuality,
	DirCorrupted, DirMirrored, DirWaystoneTier, DirStackSize, DirSockets,
}

var directiveKinds = map[Directive]models.ConditionKind{
	DirRarity:       models.KindRarity,
	DirItemLevel:    models.KindItemLevel,
	DirClass:        models.KindItemType,
	DirBaseType:     models.KindItemType,
	DirQuality:      models.KindQuality,
	DirCorrupted:    models.KindCorrupted,
	DirMirrored:     models.KindMirrored,
	DirWaystoneTier: models.KindWaystoneTier,
	DirStackSize:    models.KindStackableSize,
	DirSockets:      models.KindSockets,
}

// ClassifyLine returns every condition directive whose keyword occurs
// anywhere in line. Matching is by substring, so a single line can yield
// several directives. Class wins over BaseType when both occur.
func ClassifyLine(line string) []Directive {
	var found []Directive
	for _, d := range conditionDirectives {
		if !strings.Contains(line, string(d)) {
			continue
		}
		if d == DirBaseType && strings.Contains(line, string(DirClass)) {
			continue
		}
		found = append(found, d)
	}
	return found
}

// Kind maps a directive to the condition kind it produces
func (d Directive) Kind() models.ConditionKind {
	return directiveKinds[d]
}

// operand removes the first occurrence of keyword and splits the rest on whitespace
func operand(line, keyword string) []string {
	return strings.Fields(strings.Replace(strings.TrimSpace(line), keyword, "", 1))
}

// stripValue removes the first occurrence of prefix and trims the rest
func stripValue(line, prefix string) string {
	return strings.TrimSpace(strings.Replace(line, prefix, "", 1))
}

// itemTypeOperators may precede Class and BaseType values
var itemTypeOperators = map[string]bool{"==": true, "=": true}

// quotedValues splits `== "Rusted Sword" Bow` into its values. Quoted values
// keep inner spaces; bare words are split on whitespace.
func quotedValues(s string) []string {
	var values []string
	s = strings.TrimSpace(s)
	for s != "" {
		if s[0] == '"' {
			end := strings.IndexByte(s[1:], '"')
			if end == -1 {
				values = append(values, s[1:])
				break
			}
			values = append(values, s[1:end+1])
			s = strings.TrimSpace(s[end+2:])
			continue
		}
		word := s
		if idx := strings.IndexAny(s, " \t"); idx != -1 {
			word = s[:idx]
		}
		if len(values) > 0 || !itemTypeOperators[word] {
			values = append(values, word)
		}
		s = strings.TrimSpace(s[len(word):])
	}
	return values
}
