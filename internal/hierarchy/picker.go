package hierarchy

import (
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrUnknownID is returned when confirming an id that is not in the forest.
var ErrUnknownID = errors.New("unknown id")

// Variant selects between the inline list picker and the modal one.
type Variant int

const (
	VariantList Variant = iota
	VariantModal
)

const defaultPlaceholder = "Search..."

// Options configures a Picker.
type Options[T any] struct {
	SelectedID      *int64
	ProhibitedIDs   []int64
	EditingID       *int64
	Placeholder     string
	AllowRootChoice bool
	AutoFocusSearch bool
	Variant         Variant

	OnSelect func(T)
	OnChange func(*int64)
	Logger   *slog.Logger
}

// Picker is the searchable tree chooser. It owns the query, the expansion
// state, the keyboard focus and the selection; the records come from the
// caller and are replaced wholesale through SetItems.
type Picker[T any] struct {
	acc    Accessors[T]
	opts   Options[T]
	logger *slog.Logger

	forest    *Forest[T]
	expanded  *Expansion
	query     string
	rows      []Row[T]
	focus     int
	inputOn   bool
	picking   bool
	selection *Selection
}

func New[T any](items []T, acc Accessors[T], opts Options[T]) *Picker[T] {
	p := &Picker[T]{
		acc:      acc,
		opts:     opts,
		logger:   opts.Logger,
		expanded: NewExpansion(),
		inputOn:  opts.AutoFocusSearch,
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if strings.TrimSpace(p.opts.Placeholder) == "" {
		p.opts.Placeholder = defaultPlaceholder
	}
	p.selection = NewSelection(opts.SelectedID, nil, opts.OnChange)
	p.forest = p.build(items)
	p.selection.SetProhibited(p.prohibited())
	p.rows = VisibleRows(p.forest, p.expanded.Set(), p.query)
	p.focus = -1
	p.refocus(nil)
	return p
}

func (p *Picker[T]) build(items []T) *Forest[T] {
	f := Build(items, p.acc)
	if dups := f.Duplicates(); len(dups) > 0 {
		p.logger.Warn("duplicate ids ignored", "ids", dups)
	}
	return f
}

func (p *Picker[T]) prohibited() IDSet {
	out := NewIDSet(p.opts.ProhibitedIDs...)
	if p.opts.EditingID != nil {
		for id := range p.forest.Prohibited(*p.opts.EditingID) {
			out.Add(id)
		}
	}
	return out
}

// SetItems replaces the records. Query, expansion and selection are kept.
func (p *Picker[T]) SetItems(items []T) {
	if p == nil {
		return
	}
	p.forest = p.build(items)
	p.selection.SetProhibited(p.prohibited())
	p.mergeSearch()
	p.refresh(nil)
}

// mergeSearch opens the ancestors of the current matches. It runs only when
// the query or the records change, so collapsing during a search sticks.
func (p *Picker[T]) mergeSearch() {
	if normalizeQuery(p.query) != "" {
		p.expanded.Merge(SearchExpansion(p.forest, p.query))
	}
}

func (p *Picker[T]) refresh(prefer *int64) {
	p.rows = VisibleRows(p.forest, p.expanded.Set(), p.query)
	p.refocus(prefer)
}

// refocus re-derives the focus index after the rows changed: the preferred id
// if visible, then the highlighted id, then the previous index clamped.
func (p *Picker[T]) refocus(prefer *int64) {
	if len(p.rows) == 0 {
		p.focus = -1
		return
	}
	if prefer != nil {
		if idx := p.rowIndex(*prefer); idx >= 0 {
			p.focus = idx
			return
		}
	}
	if id, ok := p.selection.Highlighted(); ok {
		if idx := p.rowIndex(id); idx >= 0 {
			p.focus = idx
			return
		}
	}
	if p.focus < 0 {
		p.focus = 0
	}
	if p.focus >= len(p.rows) {
		p.focus = len(p.rows) - 1
	}
}

func (p *Picker[T]) rowIndex(id int64) int {
	for i, r := range p.rows {
		if r.Node.ID == id {
			return i
		}
	}
	return -1
}

func (p *Picker[T]) Forest() *Forest[T] {
	if p == nil {
		return nil
	}
	return p.forest
}

func (p *Picker[T]) Rows() []Row[T] {
	if p == nil {
		return nil
	}
	return append([]Row[T](nil), p.rows...)
}

func (p *Picker[T]) Query() string {
	if p == nil {
		return ""
	}
	return p.query
}

func (p *Picker[T]) Placeholder() string {
	if p == nil {
		return ""
	}
	return p.opts.Placeholder
}

func (p *Picker[T]) AllowRootChoice() bool {
	return p != nil && p.opts.AllowRootChoice
}

func (p *Picker[T]) Variant() Variant {
	if p == nil {
		return VariantList
	}
	return p.opts.Variant
}

// SetQuery updates the search text. Ancestors of matches are expanded and
// stay expanded after the query is cleared.
func (p *Picker[T]) SetQuery(q string) {
	if p == nil {
		return
	}
	p.query = q
	p.mergeSearch()
	p.refresh(nil)
}

// Focus is the index of the focused row, or -1 when there are no rows.
func (p *Picker[T]) Focus() int {
	if p == nil {
		return -1
	}
	return p.focus
}

// SetFocus moves the focus to idx, clamped into the rows.
func (p *Picker[T]) SetFocus(idx int) {
	if p == nil || len(p.rows) == 0 {
		return
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(p.rows) {
		idx = len(p.rows) - 1
	}
	p.focus = idx
}

func (p *Picker[T]) FocusedRow() (Row[T], bool) {
	if p == nil || p.focus < 0 || p.focus >= len(p.rows) {
		return Row[T]{}, false
	}
	return p.rows[p.focus], true
}

func (p *Picker[T]) InputFocused() bool {
	return p != nil && p.inputOn
}

func (p *Picker[T]) FocusInput() {
	p.inputOn = true
}

func (p *Picker[T]) BlurInput() {
	p.inputOn = false
}

func (p *Picker[T]) IsExpanded(id int64) bool {
	return p != nil && p.expanded.Has(id)
}

// ToggleExpanded flips the expansion of id and keeps the focus on it.
func (p *Picker[T]) ToggleExpanded(id int64) bool {
	if p == nil {
		return false
	}
	open := p.expanded.Toggle(id)
	p.refresh(Ptr(id))
	return open
}

func (p *Picker[T]) Expand(id int64) {
	if p == nil {
		return
	}
	p.expanded.Expand(id)
	p.refresh(Ptr(id))
}

func (p *Picker[T]) Collapse(id int64) {
	if p == nil {
		return
	}
	p.expanded.Collapse(id)
	p.refresh(Ptr(id))
}

// Expanded returns the expanded ids in ascending order.
func (p *Picker[T]) Expanded() []int64 {
	if p == nil {
		return nil
	}
	return p.expanded.IDs()
}

// SetExpanded replaces the expansion state, e.g. from saved preferences.
func (p *Picker[T]) SetExpanded(ids []int64) {
	if p == nil {
		return
	}
	p.expanded = NewExpansion(ids...)
	p.refresh(nil)
}

// ExpandAll opens every node that has children.
func (p *Picker[T]) ExpandAll() {
	if p == nil {
		return
	}
	for _, n := range p.forest.nodes {
		if len(n.Children) > 0 {
			p.expanded.Expand(n.ID)
		}
	}
	p.refresh(nil)
}

// Open starts a modal picking session; clears inside it stay local.
func (p *Picker[T]) Open() {
	if p == nil {
		return
	}
	p.picking = true
	p.selection.setPicking(true)
	if c := p.selection.Committed(); c != nil {
		p.selection.Select(*c)
	}
	if p.opts.AutoFocusSearch {
		p.inputOn = true
	}
	p.refocus(nil)
}

func (p *Picker[T]) Close() {
	if p == nil {
		return
	}
	p.picking = false
	p.selection.setPicking(false)
}

func (p *Picker[T]) Picking() bool {
	return p != nil && p.picking
}

func (p *Picker[T]) Select(id int64) {
	if p == nil {
		return
	}
	p.selection.Select(id)
	if idx := p.rowIndex(id); idx >= 0 {
		p.focus = idx
	}
}

func (p *Picker[T]) Highlighted() (int64, bool) {
	if p == nil {
		return 0, false
	}
	return p.selection.Highlighted()
}

func (p *Picker[T]) Committed() *int64 {
	if p == nil {
		return nil
	}
	return p.selection.Committed()
}

func (p *Picker[T]) IsProhibited(id int64) bool {
	return p != nil && p.selection.IsProhibited(id)
}

func (p *Picker[T]) CanConfirm() bool {
	return p != nil && p.selection.CanConfirm()
}

// Confirm commits id as the chosen entity.
func (p *Picker[T]) Confirm(id int64) error {
	if p == nil {
		return ErrUnknownID
	}
	if p.selection.IsProhibited(id) {
		p.logger.Debug("selection rejected", "id", id, "err", ErrProhibited)
		return ErrProhibited
	}
	n, ok := p.forest.Node(id)
	if !ok {
		return ErrUnknownID
	}
	if err := p.selection.Confirm(Ptr(id)); err != nil {
		p.logger.Debug("selection rejected", "id", id, "err", err)
		return err
	}
	if p.opts.OnSelect != nil {
		p.opts.OnSelect(n.Item)
	}
	if p.picking {
		p.Close()
	}
	return nil
}

// ConfirmRoot commits "no parent".
func (p *Picker[T]) ConfirmRoot() error {
	if p == nil || !p.opts.AllowRootChoice {
		return ErrRootNotAllowed
	}
	if err := p.selection.Confirm(nil); err != nil {
		return err
	}
	if p.picking {
		p.Close()
	}
	return nil
}

func (p *Picker[T]) Clear() {
	if p == nil {
		return
	}
	p.selection.Clear()
}

// Suggestions returns up to limit labels close to a query that matched
// nothing, nearest first.
func (p *Picker[T]) Suggestions(limit int) []string {
	q := normalizeQuery(p.Query())
	if q == "" || len(p.rows) > 0 || limit <= 0 {
		return nil
	}
	maxDist := len(q) / 3
	if maxDist < 2 {
		maxDist = 2
	}
	type scored struct {
		label string
		dist  int
		order int
	}
	var out []scored
	seen := make(map[string]bool)
	for _, n := range p.forest.nodes {
		label := p.acc.Label(n.Item)
		key := strings.ToLower(label)
		if seen[key] {
			continue
		}
		seen[key] = true
		cand := []rune(key)
		if n := len([]rune(q)); len(cand) > n {
			cand = cand[:n]
		}
		d := levenshtein.ComputeDistance(q, string(cand))
		if full := levenshtein.ComputeDistance(q, key); full < d {
			d = full
		}
		if d <= maxDist {
			out = append(out, scored{label: label, dist: d, order: n.order})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].dist != out[j].dist {
			return out[i].dist < out[j].dist
		}
		return out[i].order < out[j].order
	})
	labels := make([]string, 0, limit)
	for i := 0; i < len(out) && i < limit; i++ {
		labels = append(labels, out[i].label)
	}
	return labels
}
