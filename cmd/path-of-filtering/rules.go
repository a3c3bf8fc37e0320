package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bnema/path-of-filtering/internal/encoder"
	"github.com/bnema/path-of-filtering/internal/models"
	"github.com/spf13/cobra"
)

var ruleCmd = &cobra.Command{
	Use:   "rule",
	Short: "Edit the rules of a workspace filter",
}

var ruleListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the rules of a filter in precedence order",
	RunE:  runRuleList,
}

var ruleAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a rule at the top of a filter",
	RunE:  runRuleAdd,
}

var ruleEditCmd = &cobra.Command{
	Use:   "edit <index>",
	Short: "Change an existing rule; only the given flags are applied",
	Args:  cobra.ExactArgs(1),
	RunE:  runRuleEdit,
}

var ruleMoveCmd = &cobra.Command{
	Use:   "move <from> <to>",
	Short: "Move a rule to another position",
	Args:  cobra.ExactArgs(2),
	RunE:  runRuleMove,
}

var ruleRemoveCmd = &cobra.Command{
	Use:   "remove <index>",
	Short: "Remove a rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runRuleRemove,
}

// numeric condition flags, keyed by flag name
var numericFlags = map[string]models.ConditionKind{
	"item-level":    models.KindItemLevel,
	"quality":       models.KindQuality,
	"waystone-tier": models.KindWaystoneTier,
	"stack-size":    models.KindStackableSize,
	"sockets":       models.KindSockets,
}

// Values accepted by --clear
const (
	clearIcon      = "icon"
	clearAreaLevel = "area-level"
	clearSound     = "sound"
)

func init() {
	ruleCmd.PersistentFlags().String("filter", "", "filter name (default: the selected filter)")

	addRuleFlags(ruleAddCmd)
	addRuleFlags(ruleEditCmd)
	ruleEditCmd.Flags().StringSlice("clear", nil, "turn off icon, area-level or sound")
	ruleEditCmd.Flags().StringSlice("drop", nil, "remove conditions by kind, e.g. Rarity,ItemLevel")

	ruleCmd.AddCommand(ruleListCmd, ruleAddCmd, ruleEditCmd, ruleMoveCmd, ruleRemoveCmd)
}

func addRuleFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("action", "", "Show, Hide or Recolor")
	f.String("name", "", "rule name")
	f.String("color", "", "color for Recolor rules, e.g. Red or GreenSolid")
	f.Bool("emphasize", false, "larger font")
	f.String("icon", "", "minimap icon shape")
	f.Int("area-level", 0, "only apply from this area level")
	f.Int("sound", 0, "alert sound id (1-16)")
	f.Bool("beam", false, "light beam")
	f.StringSlice("rarity", nil, "rarities, e.g. Rare,Unique")
	f.StringSlice("class", nil, "item classes")
	f.StringSlice("basetype", nil, "base types")
	f.Bool("corrupted", false, "match corrupted items (set false to exclude them)")
	f.Bool("mirrored", false, "match mirrored items (set false to exclude them)")
	for name := range numericFlags {
		f.String(name, "", `comparison such as "> 70"`)
	}
}

// selectedFilter resolves --filter and selects it in the library
func (a *app) selectedFilter(cmd *cobra.Command) (*models.Filter, error) {
	name, _ := cmd.Flags().GetString("filter")
	idx, err := a.filterIndex(name)
	if err != nil {
		return nil, err
	}
	if err := a.library.Select(idx); err != nil {
		return nil, err
	}
	return a.library.Selected(), nil
}

func runRuleList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := a.selectedFilter(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%d rules)\n", f.Name(), len(f.Rules()))
	enc := encoder.New()
	for i, r := range f.Rules() {
		fmt.Printf("\n[%d]\n%s", i, enc.EncodeRule(r))
	}
	return nil
}

func runRuleAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := a.selectedFilter(cmd)
	if err != nil {
		return err
	}

	rule, err := a.library.AddRule()
	if err != nil {
		return err
	}
	if err := applyRuleFlags(cmd, rule); err != nil {
		return err
	}

	if err := a.library.Save(cmd.Context()); err != nil {
		return err
	}
	fmt.Printf("Added %q to %s\n", rule.Name, f.Name())
	return nil
}

func runRuleEdit(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := a.selectedFilter(cmd)
	if err != nil {
		return err
	}
	current, err := f.Rule(index)
	if err != nil {
		return err
	}

	rule := current.Clone()
	if err := clearRuleFlags(cmd, rule); err != nil {
		return err
	}
	if err := applyRuleFlags(cmd, rule); err != nil {
		return err
	}
	if err := f.UpdateRule(index, rule); err != nil {
		return err
	}

	if err := a.library.Save(cmd.Context()); err != nil {
		return err
	}
	fmt.Printf("Updated rule %d of %s\n", index, f.Name())
	return nil
}

// clearRuleFlags applies --clear and --drop
func clearRuleFlags(cmd *cobra.Command, rule *models.Rule) error {
	toClear, _ := cmd.Flags().GetStringSlice("clear")
	for _, what := range toClear {
		switch what {
		case clearIcon:
			rule.SetMapIcon(false, "")
		case clearAreaLevel:
			rule.SetAreaLevelDependency(false, 0)
		case clearSound:
			if err := rule.SetSoundEffect(false, 0); err != nil {
				return err
			}
		default:
			return fmt.Errorf("--clear: unknown value %q", what)
		}
	}

	drop, _ := cmd.Flags().GetStringSlice("drop")
	for _, name := range drop {
		kind, ok := models.ParseConditionKind(name)
		if !ok {
			return fmt.Errorf("--drop: unknown condition kind %q", name)
		}
		rule.RemoveConditionKind(kind)
	}
	return nil
}

// applyRuleFlags sets what the user passed and leaves the rest of rule alone
func applyRuleFlags(cmd *cobra.Command, rule *models.Rule) error {
	flags := cmd.Flags()

	if actionText, _ := flags.GetString("action"); actionText != "" {
		action, ok := models.ParseAction(actionText)
		if !ok {
			return fmt.Errorf("unknown action %q", actionText)
		}
		rule.SetAction(action)
	}

	if name, _ := flags.GetString("name"); name != "" {
		rule.SetName(name)
	}
	if colorText, _ := flags.GetString("color"); colorText != "" {
		color, ok := models.ParseColor(colorText)
		if !ok {
			return fmt.Errorf("unknown color %q", colorText)
		}
		rule.SetColor(color)
	}
	if flags.Changed("emphasize") {
		rule.IsEmphasized, _ = flags.GetBool("emphasize")
	}
	if flags.Changed("beam") {
		rule.HasBeamEffect, _ = flags.GetBool("beam")
	}

	if icon, _ := flags.GetString("icon"); icon != "" {
		rule.SetMapIcon(true, models.MapIcon(icon))
	}
	if flags.Changed("area-level") {
		level, _ := flags.GetInt("area-level")
		rule.SetAreaLevelDependency(true, level)
	}
	if flags.Changed("sound") {
		id, _ := flags.GetInt("sound")
		if err := rule.SetSoundEffect(true, id); err != nil {
			return err
		}
	}

	conditions, err := conditionsFromFlags(cmd)
	if err != nil {
		return err
	}
	for _, c := range conditions {
		if err := rule.SetCondition(c); err != nil {
			return err
		}
	}
	return nil
}

func conditionsFromFlags(cmd *cobra.Command) ([]models.Condition, error) {
	flags := cmd.Flags()
	var conditions []models.Condition

	if rarities, _ := flags.GetStringSlice("rarity"); len(rarities) > 0 {
		values := make([]models.RarityType, len(rarities))
		for i, r := range rarities {
			values[i] = models.RarityType(r)
		}
		conditions = append(conditions, models.NewRarityCondition(values...))
	}

	var entries []models.ItemTypeEntry
	classes, _ := flags.GetStringSlice("class")
	for _, v := range classes {
		entries = append(entries, models.ItemTypeEntry{Kind: models.ItemTypeClass, Value: v})
	}
	bases, _ := flags.GetStringSlice("basetype")
	for _, v := range bases {
		entries = append(entries, models.ItemTypeEntry{Kind: models.ItemTypeBaseType, Value: v})
	}
	if len(entries) > 0 {
		conditions = append(conditions, models.NewItemTypeCondition(entries...))
	}

	for _, kind := range models.AllConditionKinds() {
		switch {
		case kind.IsFlag():
			name := strings.ToLower(kind.String())
			if flags.Changed(name) {
				value, _ := flags.GetBool(name)
				conditions = append(conditions, models.NewFlagCondition(kind, value))
			}
		case kind.IsNumeric():
			name := numericFlagName(kind)
			text, _ := flags.GetString(name)
			if text == "" {
				continue
			}
			c, err := parseNumericCondition(kind, text)
			if err != nil {
				return nil, fmt.Errorf("--%s: %w", name, err)
			}
			conditions = append(conditions, c)
		}
	}
	return conditions, nil
}

func numericFlagName(kind models.ConditionKind) string {
	for name, k := range numericFlags {
		if k == kind {
			return name
		}
	}
	return ""
}

// parseNumericCondition reads "<op> <value>", e.g. "> 70"
func parseNumericCondition(kind models.ConditionKind, text string) (*models.NumericCondition, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return nil, fmt.Errorf("expected \"<op> <value>\", got %q", text)
	}

	op := models.Comparator(fields[0])
	switch op {
	case models.OpEqual, models.OpGreater, models.OpLess:
	default:
		return nil, fmt.Errorf("unknown comparator %q", fields[0])
	}

	value, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, err
	}
	return models.NewNumericCondition(kind, op, value), nil
}

func runRuleMove(cmd *cobra.Command, args []string) error {
	from, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	to, err := strconv.Atoi(args[1])
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := a.selectedFilter(cmd)
	if err != nil {
		return err
	}
	if err := f.MoveRule(from, to); err != nil {
		return err
	}
	return a.library.Save(cmd.Context())
}

func runRuleRemove(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := a.selectedFilter(cmd)
	if err != nil {
		return err
	}
	if err := f.RemoveRule(index); err != nil {
		return err
	}
	return a.library.Save(cmd.Context())
}
