package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bnema/path-of-filtering/internal/encoder"
	"github.com/bnema/path-of-filtering/internal/fetcher"
	"github.com/bnema/path-of-filtering/internal/library"
	"github.com/bnema/path-of-filtering/internal/models"
	"github.com/bnema/path-of-filtering/internal/parser"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the filters in the workspace and in the filter directory",
	RunE:  runList,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the workspace with the filters found in the filter directory",
	RunE:  runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export [filter name]",
	Short: "Write a workspace filter to the filter directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

var newCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Add an empty filter to the workspace",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNew,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Decode a filter file and print what was understood",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Download a filter document into the workspace",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Manage the filters of the workspace",
}

var filterRenameCmd = &cobra.Command{
	Use:   "rename <new name>",
	Short: "Rename a filter",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilterRename,
}

var filterDescribeCmd = &cobra.Command{
	Use:   "describe <description>",
	Short: "Change the description of a filter",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilterDescribe,
}

var filterDuplicateCmd = &cobra.Command{
	Use:   "duplicate",
	Short: "Copy a filter under the name <name>-copy",
	RunE:  runFilterDuplicate,
}

var filterDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove a filter from the workspace",
	RunE:  runFilterDelete,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-import the filter directory whenever it changes",
	RunE:  runWatch,
}

func init() {
	newCmd.Flags().String("description", "", "filter description")
	inspectCmd.Flags().StringP("format", "f", "yaml", "output format (yaml, text)")
	fetchCmd.Flags().Bool("export", false, "also write the filter to the filter directory")

	filterCmd.PersistentFlags().String("filter", "", "filter name (default: the selected filter)")
	filterCmd.AddCommand(filterRenameCmd, filterDescribeCmd, filterDuplicateCmd, filterDeleteCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Println("Workspace:")
	selected := a.library.SelectedIndex()
	for i, f := range a.library.Filters() {
		marker := " "
		if i == selected {
			marker = "*"
		}
		fmt.Printf("  %s %s (%d rules, edited %s)\n", marker, f.Name(), len(f.Rules()),
			f.LastEdited().Format(models.TimestampLayout))
	}

	fmt.Printf("\nFilter directory %s:\n", a.gateway.Directory())
	files, err := a.gateway.ListFilterFiles()
	if err != nil {
		fmt.Printf("  ERROR: %v\n", err)
		return nil
	}
	for _, file := range files {
		p := parser.New()
		p.Parse(file.Name, file.Contents)
		stats := p.Stats()
		status := "ok"
		if !stats.HeaderMatched {
			status = "foreign"
		}
		fmt.Printf("  [%s] %s (%d rules)\n", status, file.Name, stats.Rules)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.library.ImportAll()
	if err != nil {
		return err
	}
	printReport(report)

	return a.library.Save(cmd.Context())
}

func printReport(report library.ImportReport) {
	fmt.Printf("Imported %d files, %d rules\n", report.Files, report.Rules)
	for _, w := range report.Warnings {
		fmt.Printf("  WARNING: %s\n", w)
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	var name string
	if len(args) > 0 {
		name = args[0]
	}
	idx, err := a.filterIndex(name)
	if err != nil {
		return err
	}

	path, err := a.library.Export(idx)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

func runNew(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	f := a.library.AddFilter()
	if len(args) > 0 {
		f.SetName(args[0])
	}
	if desc, _ := cmd.Flags().GetString("description"); desc != "" {
		f.SetDescription(desc)
	}

	if err := a.library.Save(cmd.Context()); err != nil {
		return err
	}
	fmt.Printf("Created %s\n", f.Name())
	return nil
}

func runFilterRename(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := a.selectedFilter(cmd)
	if err != nil {
		return err
	}
	old := f.Name()
	f.SetName(args[0])

	if err := a.library.Save(cmd.Context()); err != nil {
		return err
	}
	fmt.Printf("Renamed %s to %s\n", old, f.Name())
	return nil
}

func runFilterDescribe(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := a.selectedFilter(cmd)
	if err != nil {
		return err
	}
	f.SetDescription(args[0])
	return a.library.Save(cmd.Context())
}

func runFilterDuplicate(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.selectedFilter(cmd); err != nil {
		return err
	}
	dup, err := a.library.DuplicateFilter(a.library.SelectedIndex())
	if err != nil {
		return err
	}

	if err := a.library.Save(cmd.Context()); err != nil {
		return err
	}
	fmt.Printf("Created %s\n", dup.Name())
	return nil
}

func runFilterDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := a.selectedFilter(cmd)
	if err != nil {
		return err
	}
	if err := a.library.DeleteFilter(a.library.SelectedIndex()); err != nil {
		return err
	}

	if err := a.library.Save(cmd.Context()); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", f.Name())
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	p := parser.New()
	f, perr := p.Parse("Imported from "+filepath.Base(args[0]), string(data))
	if perr != nil {
		fmt.Fprintf(os.Stderr, "WARNING: %v\n", perr)
	}

	switch format {
	case "text":
		fmt.Print(encoder.EncodeFilter(f))
	case "yaml":
		out, err := library.EncodeModel(f)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	stats := p.Stats()
	fmt.Fprintf(os.Stderr, "%d lines, %d rules, %d conditions, %d class/base type values\n",
		stats.Lines, stats.Rules, stats.Conditions, stats.ItemTypeValues)
	return nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := fetcher.New(cfg.HTTP).Fetch(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Downloaded: %d bytes\n", len(data))

	f, err := a.library.Import("Imported from "+args[0], data)
	if err != nil {
		fmt.Printf("  WARNING: %v\n", err)
	}
	fmt.Printf("Added %s (%d rules)\n", f.Name(), len(f.Rules()))

	if export, _ := cmd.Flags().GetBool("export"); export {
		path, err := a.library.ExportSelected()
		if err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", path)
	}

	return a.library.Save(cmd.Context())
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", a.gateway.Directory())
	err = a.library.Watch(ctx, func(report library.ImportReport) {
		printReport(report)
		if err := a.library.Save(ctx); err != nil {
			a.log.Error("save workspace: %v", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
