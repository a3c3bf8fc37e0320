package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/path-of-filtering/internal/encoder"
	"github.com/bnema/path-of-filtering/internal/models"
)

// FallbackName is used when the document header is not recognised
const FallbackName = "Imported Filter (ERROR WHEN IMPORTING)"

// Header layout of documents written by the encoder. Name and description
// are read from fixed lines; a format change must bump these explicitly.
const (
	bannerLine      = 1
	nameLine        = 3
	descriptionLine = 4
)

// emphasisThreshold is the smallest font size read back as emphasized
const emphasisThreshold = 32

var (
	ErrMissingBanner   = errors.New("document does not start with the filter banner")
	ErrMalformedHeader = errors.New("rule header is malformed")
)

// Parser decodes filter documents
type Parser struct {
	stats Stats
}

// Stats tracks parsing statistics
type Stats struct {
	Lines          int
	Rules          int
	Conditions     int
	HeaderMatched  bool
	AbortedAtLine  int // -1 when the whole document was read
	ItemTypeValues int
}

// New creates a new parser
func New() *Parser {
	return &Parser{
		stats: Stats{AbortedAtLine: -1},
	}
}

// Stats returns parsing statistics
func (p *Parser) Stats() Stats {
	return p.stats
}

// DecodeFilter parses a document and never fails; problems only show up as
// the fallback name or missing rules.
func DecodeFilter(importedFrom, data string) *models.Filter {
	f, _ := New().Parse(importedFrom, data)
	return f
}

// Parse always returns a filter. The error reports an unrecognised header
// and/or the rule block that stopped rule extraction.
func (p *Parser) Parse(importedFrom, data string) (*models.Filter, error) {
	lines := splitLines(data)
	name, description := FallbackName, ""

	var errs []error
	if len(lines) > descriptionLine && strings.Contains(lines[bannerLine], encoder.ProductBanner) {
		name = stripValue(lines[nameLine], "# ")
		description = stripValue(lines[descriptionLine], "# ")
		p.stats.HeaderMatched = true
	} else {
		errs = append(errs, ErrMissingBanner)
	}

	rules, err := p.parseRules(lines)
	if err != nil {
		errs = append(errs, err)
	}

	return models.NewFilter(name, importedFrom, description, rules), errors.Join(errs...)
}

// ParseRules extracts every rule block. On a malformed block it stops and
// returns the rules read so far together with the error.
func (p *Parser) ParseRules(data string) ([]*models.Rule, error) {
	return p.parseRules(splitLines(data))
}

func (p *Parser) parseRules(lines []string) ([]*models.Rule, error) {
	var rules []*models.Rule
	p.stats.Lines += len(lines)

	for i := range lines {
		trigger := strings.TrimSpace(lines[i])
		if trigger != "Show" && trigger != "Hide" {
			continue
		}

		rule, err := p.parseRule(lines, i)
		if err != nil {
			p.stats.AbortedAtLine = i
			return rules, fmt.Errorf("line %d: %w", i+1, err)
		}

		rules = append(rules, rule)
		p.stats.Rules++
	}

	return rules, nil
}

// parseRule reads the block whose trigger line is lines[i]
func (p *Parser) parseRule(lines []string, i int) (*models.Rule, error) {
	action, name, err := parseHeader(lines, i)
	if err != nil {
		return nil, err
	}

	rule := &models.Rule{Action: action, Name: name}
	block := lines[i : blockEnd(lines, i)+1]

	if action == models.ActionRecolor {
		parseStyling(rule, block)
	}

	for _, line := range block {
		if strings.Contains(line, "AreaLevel") {
			rule.HasAreaLevelDependency = true
			rule.AreaLevel = models.ParseInt(stripValue(line, "AreaLevel >= "))
			break
		}
	}
	for _, line := range block {
		trimmed := strings.TrimSpace(line)
		if strings.Contains(trimmed, "PlayAlertSound") && !rule.HasSoundEffect {
			rule.HasSoundEffect = true
			rule.SoundEffect = models.ParseInt(stripValue(trimmed, "PlayAlertSound "))
		}
		if strings.Contains(trimmed, "PlayEffect") {
			rule.HasBeamEffect = true
		}
	}

	rule.Conditions = p.parseConditions(block)
	return rule, nil
}

// parseHeader reads action and name from the comment above the trigger line.
// A Show trigger carries the real action (Show or Recolor) in its header.
func parseHeader(lines []string, i int) (models.Action, string, error) {
	if i == 0 {
		return "", "", fmt.Errorf("%w: no header above %q", ErrMalformedHeader, strings.TrimSpace(lines[i]))
	}

	header := strings.TrimSpace(lines[i-1])
	if !strings.HasPrefix(header, "#") {
		return "", "", fmt.Errorf("%w: %q is not a comment", ErrMalformedHeader, header)
	}

	actionText, name, ok := splitHeader(strings.TrimPrefix(header, "#"))
	if !ok {
		return "", "", fmt.Errorf("%w: %q has no action", ErrMalformedHeader, header)
	}
	action, ok := models.ParseAction(actionText)
	if !ok {
		return "", "", fmt.Errorf("%w: unknown action %q", ErrMalformedHeader, actionText)
	}

	hide := strings.TrimSpace(lines[i]) == "Hide"
	if hide != (action == models.ActionHide) {
		return "", "", fmt.Errorf("%w: %s header above %s", ErrMalformedHeader, action, strings.TrimSpace(lines[i]))
	}
	return action, name, nil
}

// splitHeader splits "Action - name" on the first separator. An empty name
// may have lost its trailing space.
func splitHeader(body string) (string, string, bool) {
	body = strings.TrimSpace(body)
	if idx := strings.Index(body, " - "); idx != -1 {
		return body[:idx], strings.TrimSpace(body[idx+3:]), true
	}
	if strings.HasSuffix(body, " -") {
		return strings.TrimSuffix(body, " -"), "", true
	}
	return "", "", false
}

// blockEnd returns the index of the first empty line at or after i, or the
// last line
func blockEnd(lines []string, i int) int {
	end := i
	for end < len(lines)-1 {
		if lines[end] == "" {
			break
		}
		end++
	}
	return end
}

// parseStyling reads the Recolor-only directives. The border color is not
// used to pick the rule color.
func parseStyling(rule *models.Rule, block []string) {
	var textColor, backgroundColor string

	for _, line := range block {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "SetTextColor"):
			textColor = stripValue(trimmed, "SetTextColor")
		case strings.HasPrefix(trimmed, "SetBorderColor"):
			// always written alongside SetTextColor
		case strings.HasPrefix(trimmed, "SetBackgroundColor"):
			backgroundColor = stripValue(trimmed, "SetBackgroundColor")
		case strings.HasPrefix(trimmed, "SetFontSize"):
			size := models.ParseInt(stripValue(trimmed, "SetFontSize"))
			rule.IsEmphasized = size != models.NotANumber && size >= emphasisThreshold
		case strings.HasPrefix(trimmed, "MinimapIcon"):
			rule.HasMapIcon = true
			if parts := strings.Fields(trimmed); len(parts) >= 4 {
				rule.MapIcon = models.MapIcon(parts[3])
			}
		}
	}

	rule.Color = models.ColorFromWireTriplets(textColor, backgroundColor)
}

// parseConditions accumulates one condition per directive match. Class and
// BaseType lines share a single ItemType condition appended last.
func (p *Parser) parseConditions(block []string) []models.Condition {
	var conditions []models.Condition
	var itemTypes []models.ItemTypeEntry

	for _, line := range block {
		for _, d := range ClassifyLine(line) {
			fields := operand(line, string(d))

			switch kind := d.Kind(); {
			case kind == models.KindRarity:
				rarities := make([]models.RarityType, len(fields))
				for j, f := range fields {
					rarities[j] = models.RarityType(f)
				}
				conditions = append(conditions, models.NewRarityCondition(rarities...))

			case kind == models.KindItemType:
				entryKind := models.ItemTypeBaseType
				if d == DirClass {
					entryKind = models.ItemTypeClass
				}
				for _, v := range quotedValues(stripValue(line, string(d))) {
					itemTypes = append(itemTypes, models.ItemTypeEntry{Kind: entryKind, Value: v})
					p.stats.ItemTypeValues++
				}
				continue

			case kind.IsFlag():
				value := len(fields) > 0 && strings.EqualFold(fields[0], "True")
				conditions = append(conditions, models.NewFlagCondition(kind, value))

			case kind.IsNumeric():
				var op models.Comparator
				value := models.NotANumber
				if len(fields) > 0 {
					op = models.Comparator(fields[0])
				}
				if len(fields) > 1 {
					value = models.ParseInt(fields[1])
				}
				conditions = append(conditions, models.NewNumericCondition(kind, op, value))
			}
			p.stats.Conditions++
		}
	}

	if len(itemTypes) > 0 {
		conditions = append(conditions, models.NewItemTypeCondition(itemTypes...))
		p.stats.Conditions++
	}
	return conditions
}

// splitLines splits on \n and drops a trailing \r from each line
func splitLines(data string) []string {
	if data == "" {
		return nil
	}
	lines := strings.Split(data, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
