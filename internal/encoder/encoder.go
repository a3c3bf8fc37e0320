package encoder

import (
	"strings"

	"github.com/bnema/path-of-filtering/internal/models"
)

// Banner lines written at the top of every filter document
const (
	Separator     = "#==============================================================================================================="
	ProductBanner = "# Path of Filtering - for Path of Exile 2 Loot Filter"
)

// Font sizes written by SetFontSize
const (
	FontSizeNormal     = 30
	FontSizeEmphasized = 36
)

// AlertVolume is the fixed PlayAlertSound volume
const AlertVolume = 200

// Encoder writes filters in the game's filter format
type Encoder struct {
	stats Stats
}

// Stats tracks encoding statistics
type Stats struct {
	Rules      int
	Conditions int
	Lines      int
	Dropped    map[string]int // entries that have no directive, by reason
}

// Drop reason constants
const (
	DropDefenseEntry = "item-type defense entry"
)

// New creates a new encoder
func New() *Encoder {
	return &Encoder{
		stats: Stats{
			Dropped: make(map[string]int),
		},
	}
}

// Stats returns encoding statistics
func (e *Encoder) Stats() Stats {
	return e.stats
}

// EncodeFilter is a shorthand for New().Encode(f)
func EncodeFilter(f *models.Filter) string {
	return New().Encode(f)
}

// Encode renders the whole document. The output depends only on the
// filter's state, including the time it was last edited.
func (e *Encoder) Encode(f *models.Filter) string {
	var b strings.Builder

	header := []string{
		Separator,
		ProductBanner,
		Separator,
		"# " + f.Name(),
		"# " + f.Description(),
		"# Last Edited: " + f.LastEdited().UTC().Format(models.TimestampLayout),
		Separator,
		"# Rules",
		Separator,
	}
	for _, line := range header {
		e.writeLine(&b, line)
	}

	for _, r := range f.Rules() {
		b.WriteString(e.EncodeRule(r))
		e.writeLine(&b, "")
	}

	return b.String()
}

// EncodeRule renders one rule block, terminated by a blank line
func (e *Encoder) EncodeRule(r *models.Rule) string {
	var b strings.Builder
	recolor := r.Action == models.ActionRecolor

	e.writeLine(&b, "# "+string(r.Action)+" - "+r.Name)
	if r.Action == models.ActionHide {
		e.writeLine(&b, "Hide")
	} else {
		e.writeLine(&b, "Show")
	}

	color := r.EffectiveColor()
	if recolor {
		e.writeDirective(&b, "SetTextColor", color.WireTriplet())
		e.writeDirective(&b, "SetBorderColor", color.WireTriplet())
		e.writeDirective(&b, "SetBackgroundColor", color.BackgroundWireTriplet())
	}

	fontSize := FontSizeNormal
	if recolor && r.IsEmphasized {
		fontSize = FontSizeEmphasized
	}
	e.writeDirective(&b, "SetFontSize", models.FormatInt(fontSize))

	if recolor && r.HasMapIcon {
		e.writeDirective(&b, "MinimapIcon", "1 "+color.DisplayName()+" "+string(r.MapIcon))
	}
	if r.HasAreaLevelDependency {
		e.writeDirective(&b, "AreaLevel", ">= "+models.FormatInt(r.AreaLevel))
	}
	if recolor && r.HasSoundEffect && r.SoundEffect != 0 {
		e.writeDirective(&b, "PlayAlertSound", models.FormatInt(r.SoundEffect)+" "+models.FormatInt(AlertVolume))
	}
	if recolor && r.HasBeamEffect {
		e.writeDirective(&b, "PlayEffect", color.DisplayName())
	}

	for _, c := range r.Conditions {
		e.stats.Conditions++
		for _, line := range e.conditionLines(c) {
			e.writeLine(&b, "\t"+line)
		}
	}

	e.writeLine(&b, "")
	e.stats.Rules++
	return b.String()
}

// conditionLines renders a condition; item types may take zero to two lines
func (e *Encoder) conditionLines(c models.Condition) []string {
	it, ok := c.(*models.ItemTypeCondition)
	if !ok {
		return []string{c.Kind().Keyword() + " " + c.Operand()}
	}

	var lines []string
	if classes := it.Values(models.ItemTypeClass); len(classes) > 0 {
		lines = append(lines, models.ClassKeyword+" == "+models.QuoteValues(classes))
	}
	if bases := it.Values(models.ItemTypeBaseType); len(bases) > 0 {
		lines = append(lines, models.BaseTypeKeyword+" == "+models.QuoteValues(bases))
	}
	if n := len(it.Values(models.ItemTypeDefense)); n > 0 {
		e.stats.Dropped[DropDefenseEntry] += n
	}
	return lines
}

func (e *Encoder) writeDirective(b *strings.Builder, keyword, value string) {
	e.writeLine(b, "\t"+keyword+" "+value)
}

func (e *Encoder) writeLine(b *strings.Builder, line string) {
	b.WriteString(line)
	b.WriteByte('\n')
	e.stats.Lines++
}
