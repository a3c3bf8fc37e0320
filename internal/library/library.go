package library

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/path-of-filtering/internal/encoder"
	"github.com/bnema/path-of-filtering/internal/gateway"
	"github.com/bnema/path-of-filtering/internal/logging"
	"github.com/bnema/path-of-filtering/internal/models"
	"github.com/bnema/path-of-filtering/internal/parser"
	"github.com/bnema/path-of-filtering/internal/store"
	"github.com/google/uuid"
)

// Names used for filters and rules the library creates
const (
	DefaultFilterName        = "Default Filter"
	DefaultFilterDescription = "This is a default filter."
	NewRuleName              = "NEW RULE"
)

var ErrNoStore = errors.New("library has no workspace store")

type entry struct {
	id     string
	filter *models.Filter
}

// Library is the user's collection of filters with one of them selected
type Library struct {
	mu       sync.Mutex
	entries  []entry
	selected int

	gateway *gateway.Gateway
	store   store.WorkspaceStore
	log     logging.LoggerService
}

// ImportReport summarises a directory import
type ImportReport struct {
	Files    int
	Rules    int
	Warnings []string
}

// New creates a library holding the default filter. st may be nil.
func New(gw *gateway.Gateway, st store.WorkspaceStore, log logging.LoggerService) *Library {
	l := &Library{
		gateway: gw,
		store:   st,
		log:     log.Named("library"),
	}
	l.entries = []entry{newEntry(models.NewFilter(DefaultFilterName, "", DefaultFilterDescription, nil))}
	return l
}

func newEntry(f *models.Filter) entry {
	return entry{id: uuid.NewString(), filter: f}
}

// Filters returns the filters in display order
func (l *Library) Filters() []*models.Filter {
	l.mu.Lock()
	defer l.mu.Unlock()

	filters := make([]*models.Filter, len(l.entries))
	for i, e := range l.entries {
		filters[i] = e.filter
	}
	return filters
}

// Selected returns the selected filter, nil when the library is empty
func (l *Library) Selected() *models.Filter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selectedLocked()
}

func (l *Library) selectedLocked() *models.Filter {
	if l.selected < 0 || l.selected >= len(l.entries) {
		return nil
	}
	return l.entries[l.selected].filter
}

func (l *Library) SelectedIndex() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selected
}

func (l *Library) Select(index int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.entries) {
		return fmt.Errorf("filter %d: %w", index, models.ErrIndexOutOfRange)
	}
	l.selected = index
	return nil
}

// AddFilter appends an empty filter and selects it
func (l *Library) AddFilter() *models.Filter {
	l.mu.Lock()
	defer l.mu.Unlock()

	f := models.NewFilter(fmt.Sprintf("New Filter %d", len(l.entries)+1), "", "", nil)
	l.entries = append(l.entries, newEntry(f))
	l.selected = len(l.entries) - 1
	return f
}

// DuplicateFilter appends a copy of the filter at index named "<name>-copy"
// and selects it
func (l *Library) DuplicateFilter(index int) (*models.Filter, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.entries) {
		return nil, fmt.Errorf("filter %d: %w", index, models.ErrIndexOutOfRange)
	}
	f := l.entries[index].filter.Clone()
	f.SetName(f.Name() + "-copy")
	l.entries = append(l.entries, newEntry(f))
	l.selected = len(l.entries) - 1
	return f, nil
}

// DeleteFilter removes a filter and keeps the selection in range
func (l *Library) DeleteFilter(index int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.entries) {
		return fmt.Errorf("filter %d: %w", index, models.ErrIndexOutOfRange)
	}
	l.entries = append(l.entries[:index], l.entries[index+1:]...)
	if l.selected >= len(l.entries) {
		l.selected = max(0, len(l.entries)-1)
	}
	return nil
}

// AddRule puts a new Show rule at the top of the selected filter
func (l *Library) AddRule() (*models.Rule, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f := l.selectedLocked()
	if f == nil {
		return nil, fmt.Errorf("no filter selected: %w", models.ErrIndexOutOfRange)
	}
	rule := models.NewRule(models.ActionShow, NewRuleName)
	f.AddRule(rule)
	return rule, nil
}

// Import decodes one document, appends it and selects it
func (l *Library) Import(label, data string) (*models.Filter, error) {
	p := parser.New()
	f, err := p.Parse(label, data)
	if err != nil {
		l.log.Warn("import %s: %v", label, err)
	}
	l.log.Debug("import %s: %d rules, %d conditions", label, p.Stats().Rules, p.Stats().Conditions)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, newEntry(f))
	l.selected = len(l.entries) - 1
	return f, err
}

// ImportAll replaces the collection with every filter file in the gateway
// directory. An empty directory leaves the collection untouched.
func (l *Library) ImportAll() (ImportReport, error) {
	var report ImportReport

	files, err := l.gateway.ListFilterFiles()
	if err != nil {
		return report, fmt.Errorf("list filter files: %w", err)
	}
	if len(files) == 0 {
		l.log.Info("no filter files in %s", l.gateway.Directory())
		return report, nil
	}

	entries := make([]entry, 0, len(files))
	for _, file := range files {
		p := parser.New()
		f, err := p.Parse("Imported from "+file.Name, file.Contents)
		if err != nil {
			l.log.Warn("%s: %v", file.Name, err)
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", file.Name, err))
		}
		report.Rules += len(f.Rules())
		entries = append(entries, newEntry(f))
	}
	report.Files = len(files)

	l.mu.Lock()
	l.entries = entries
	l.selected = 0
	l.mu.Unlock()

	l.log.Info("imported %d filters with %d rules from %s", report.Files, report.Rules, l.gateway.Directory())
	return report, nil
}

// Export writes the filter at index to the gateway directory
func (l *Library) Export(index int) (string, error) {
	l.mu.Lock()
	if index < 0 || index >= len(l.entries) {
		l.mu.Unlock()
		return "", fmt.Errorf("filter %d: %w", index, models.ErrIndexOutOfRange)
	}
	f := l.entries[index].filter.Clone()
	l.mu.Unlock()

	enc := encoder.New()
	doc := enc.Encode(f)
	if n := enc.Stats().Dropped[encoder.DropDefenseEntry]; n > 0 {
		l.log.Warn("%s: %d defense entries are not written", f.Name(), n)
	}

	path, err := l.gateway.Export(f.Name(), doc)
	if err != nil {
		l.log.Error("export %s failed: %v", f.Name(), err)
		return "", err
	}
	l.log.Info("exported %s (%d rules) to %s", f.Name(), enc.Stats().Rules, path)
	return path, nil
}

// ExportSelected writes the selected filter
func (l *Library) ExportSelected() (string, error) {
	return l.Export(l.SelectedIndex())
}

// FindByName returns the index of the first filter with the given name
func (l *Library) FindByName(name string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, e := range l.entries {
		if e.filter.Name() == name {
			return i, true
		}
	}
	return -1, false
}

// Save stores the whole collection
func (l *Library) Save(ctx context.Context) error {
	if l.store == nil {
		return ErrNoStore
	}

	l.mu.Lock()
	records := make([]store.FilterRecord, len(l.entries))
	for i, e := range l.entries {
		model, err := EncodeModel(e.filter)
		if err != nil {
			l.mu.Unlock()
			return fmt.Errorf("encode %s: %w", e.filter.Name(), err)
		}
		records[i] = store.FilterRecord{
			ID:           e.id,
			Name:         e.filter.Name(),
			ImportedFrom: e.filter.ImportedFrom(),
			Model:        string(model),
			Document:     encoder.EncodeFilter(e.filter),
			LastEdited:   e.filter.LastEdited(),
		}
	}
	var selectedID string
	if l.selected < len(l.entries) {
		selectedID = l.entries[l.selected].id
	}
	l.mu.Unlock()

	if err := l.store.SaveWorkspace(ctx, records, selectedID); err != nil {
		return fmt.Errorf("save workspace: %w", err)
	}
	l.log.Debug("saved %d filters", len(records))
	return nil
}

// Load replaces the collection with the stored one. An empty store keeps
// the current collection.
func (l *Library) Load(ctx context.Context) error {
	if l.store == nil {
		return ErrNoStore
	}

	records, selectedID, err := l.store.LoadWorkspace(ctx)
	if err != nil {
		return fmt.Errorf("load workspace: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	entries := make([]entry, len(records))
	selected := 0
	for i, r := range records {
		f := l.restore(r)
		f.SetLastEdited(r.LastEdited)
		entries[i] = entry{id: r.ID, filter: f}
		if r.ID == selectedID {
			selected = i
		}
	}

	l.mu.Lock()
	l.entries = entries
	l.selected = selected
	l.mu.Unlock()

	l.log.Debug("loaded %d filters", len(entries))
	return nil
}

// restore rebuilds a stored filter from its model, or from the exported
// document when the model is missing or unreadable
func (l *Library) restore(r store.FilterRecord) *models.Filter {
	if r.Model != "" {
		f, err := DecodeModel([]byte(r.Model))
		if err == nil {
			return f
		}
		l.log.Warn("stored filter %s: %v, falling back to its document", r.Name, err)
	}

	f, err := parser.New().Parse(r.ImportedFrom, r.Document)
	if err != nil {
		l.log.Warn("stored filter %s: %v", r.Name, err)
	}
	return f
}

// Watch re-imports the directory whenever its filter files change
func (l *Library) Watch(ctx context.Context, onReload func(ImportReport)) error {
	w := gateway.NewWatcher(l.gateway, gateway.DefaultDebounce, func() {
		report, err := l.ImportAll()
		if err != nil {
			l.log.Error("reload: %v", err)
			return
		}
		if onReload != nil {
			onReload(report)
		}
	}, func(err error) {
		l.log.Warn("watcher: %v", err)
	})
	return w.Run(ctx)
}
