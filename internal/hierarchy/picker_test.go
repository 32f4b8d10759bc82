package hierarchy

import (
	"errors"
	"reflect"
	"testing"
)

type rowView struct {
	ID    int64
	Depth int
}

func rowViews[T any](rows []Row[T]) []rowView {
	out := make([]rowView, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowView{ID: r.Node.ID, Depth: r.Depth})
	}
	return out
}

func budgetTree() []Entity {
	return []Entity{
		ent(1, 0, "Food"),
		ent(2, 1, "Groceries"),
		ent(3, 2, "Dairy"),
		ent(4, 1, "Restaurants"),
		ent(5, 0, "Housing"),
		ent(6, 5, "Rent"),
		{ID: 7, ParentID: Ptr(5), Name: "Utilities", Description: "power and water"},
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		query, label, desc string
		want               bool
	}{
		{"", "anything", "", true},
		{"dai", "Dairy", "", true},
		{"  DAI ", "dairy", "", true},
		{"water", "Utilities", "power and water", true},
		{"xyz", "Dairy", "milk", false},
	}
	for _, tt := range tests {
		if got := Match(tt.query, tt.label, tt.desc); got != tt.want {
			t.Fatalf("Match(%q, %q, %q) = %v, want %v", tt.query, tt.label, tt.desc, got, tt.want)
		}
	}
}

func TestVisibleRowsNoQuery(t *testing.T) {
	f := Build(budgetTree(), EntityAccessors())
	tests := []struct {
		name     string
		expanded IDSet
		want     []rowView
	}{
		{
			name: "collapsed shows roots",
			want: []rowView{{1, 0}, {5, 0}},
		},
		{
			name:     "expanded root shows its children",
			expanded: NewIDSet(1),
			want:     []rowView{{1, 0}, {2, 1}, {4, 1}, {5, 0}},
		},
		{
			name:     "expanded child under collapsed parent stays hidden",
			expanded: NewIDSet(2),
			want:     []rowView{{1, 0}, {5, 0}},
		},
		{
			name:     "nested expansion",
			expanded: NewIDSet(1, 2, 5),
			want:     []rowView{{1, 0}, {2, 1}, {3, 2}, {4, 1}, {5, 0}, {6, 1}, {7, 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rowViews(VisibleRows(f, tt.expanded, ""))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rows = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisibleRowsWithQuery(t *testing.T) {
	f := Build(budgetTree(), EntityAccessors())
	tests := []struct {
		name  string
		query string
		want  []rowView
	}{
		{"deep match opens its branch", "dai", []rowView{{1, 0}, {2, 1}, {3, 2}}},
		{"description match", "water", []rowView{{5, 0}, {7, 1}}},
		{"matching parent hides non-matching children", "food", []rowView{{1, 0}}},
		{"several branches", "r", []rowView{{1, 0}, {2, 1}, {3, 2}, {4, 1}, {5, 0}, {6, 1}, {7, 1}}},
		{"no match", "zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VisibleRows(f, nil, tt.query)
			if tt.want == nil {
				if len(got) != 0 {
					t.Fatalf("rows = %v, want none", rowViews(got))
				}
				return
			}
			if gotViews := rowViews(got); !reflect.DeepEqual(gotViews, tt.want) {
				t.Fatalf("rows = %v, want %v", gotViews, tt.want)
			}
		})
	}
}

func TestSearchScenario(t *testing.T) {
	p := New(foodTree(), EntityAccessors(), Options[Entity]{AutoFocusSearch: true})
	p.SetQuery("dai")
	want := []rowView{{1, 0}, {2, 1}, {3, 2}}
	if got := rowViews(p.Rows()); !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
	if !p.IsExpanded(1) || !p.IsExpanded(2) {
		t.Fatalf("expanded = %v, want superset of [1 2]", p.Expanded())
	}
}

func TestClearingQueryKeepsAutoExpansion(t *testing.T) {
	p := New(foodTree(), EntityAccessors(), Options[Entity]{})
	p.SetQuery("dairy")
	p.SetQuery("")
	if got := p.Expanded(); !reflect.DeepEqual(got, []int64{1, 2}) {
		t.Fatalf("expanded = %v, want [1 2]", got)
	}
	want := []rowView{{1, 0}, {2, 1}, {3, 2}}
	if got := rowViews(p.Rows()); !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
}

func TestCollapseDuringSearchSticks(t *testing.T) {
	p := New(foodTree(), EntityAccessors(), Options[Entity]{})
	p.SetQuery("dai")
	if !p.IsExpanded(2) {
		t.Fatalf("search should expand 2, got %v", p.Expanded())
	}
	if open := p.ToggleExpanded(2); open {
		t.Fatalf("toggle(2) reported open")
	}
	if p.IsExpanded(2) {
		t.Fatalf("2 still expanded after collapse: %v", p.Expanded())
	}
	p.SetQuery("")
	if got := p.Expanded(); !reflect.DeepEqual(got, []int64{1}) {
		t.Fatalf("expanded = %v, want [1]", got)
	}
	want := []rowView{{1, 0}, {2, 1}}
	if got := rowViews(p.Rows()); !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
}

func TestConfirmProhibitedOutsideSnapshot(t *testing.T) {
	p := New(foodTree(), EntityAccessors(), Options[Entity]{ProhibitedIDs: []int64{99}})
	if err := p.Confirm(99); !errors.Is(err, ErrProhibited) {
		t.Fatalf("Confirm(99) = %v, want ErrProhibited", err)
	}
	if p.Committed() != nil {
		t.Fatalf("committed = %v, want nil", *p.Committed())
	}
	if err := p.Confirm(42); !errors.Is(err, ErrUnknownID) {
		t.Fatalf("Confirm(42) = %v, want ErrUnknownID", err)
	}
}

func TestExpansionSurvivesRebuild(t *testing.T) {
	p := New(foodTree(), EntityAccessors(), Options[Entity]{})
	p.ToggleExpanded(1)
	items := append(foodTree(), ent(8, 1, "Snacks"))
	p.SetItems(items)
	want := []rowView{{1, 0}, {2, 1}, {8, 1}}
	if got := rowViews(p.Rows()); !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
}

func TestEditScenarioProhibitsDescendants(t *testing.T) {
	var changes []*int64
	var selected []Entity
	p := New(foodTree(), EntityAccessors(), Options[Entity]{
		EditingID:       Ptr(1),
		AllowRootChoice: true,
		Variant:         VariantModal,
		OnChange:        func(id *int64) { changes = append(changes, id) },
		OnSelect:        func(e Entity) { selected = append(selected, e) },
	})
	for _, id := range []int64{1, 2, 3} {
		if !p.IsProhibited(id) {
			t.Fatalf("id %d should be prohibited", id)
		}
	}
	p.Open()
	for _, id := range []int64{2, 3} {
		if err := p.Confirm(id); !errors.Is(err, ErrProhibited) {
			t.Fatalf("confirm(%d) = %v, want ErrProhibited", id, err)
		}
	}
	if len(changes) != 0 || len(selected) != 0 {
		t.Fatalf("rejected confirms fired callbacks: changes=%v selected=%v", changes, selected)
	}
	if !p.Picking() {
		t.Fatalf("rejected confirm must keep the session open")
	}
	if err := p.ConfirmRoot(); err != nil {
		t.Fatalf("confirm root: %v", err)
	}
	if len(changes) != 1 || changes[0] != nil {
		t.Fatalf("changes = %v, want one nil change", changes)
	}
	if p.Picking() {
		t.Fatalf("root confirm should close the session")
	}
}

func TestConfirmCommitsAndNotifies(t *testing.T) {
	var changed *int64
	var selected Entity
	p := New(budgetTree(), EntityAccessors(), Options[Entity]{
		OnChange: func(id *int64) { changed = id },
		OnSelect: func(e Entity) { selected = e },
	})
	if err := p.Confirm(6); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if changed == nil || *changed != 6 || selected.Name != "Rent" {
		t.Fatalf("changed=%v selected=%+v", changed, selected)
	}
	if err := p.Confirm(999); !errors.Is(err, ErrUnknownID) {
		t.Fatalf("confirm unknown = %v, want ErrUnknownID", err)
	}
}

func TestConfirmRootNotAllowed(t *testing.T) {
	p := New(foodTree(), EntityAccessors(), Options[Entity]{})
	if err := p.ConfirmRoot(); !errors.Is(err, ErrRootNotAllowed) {
		t.Fatalf("confirm root = %v, want ErrRootNotAllowed", err)
	}
}

func TestClearInsideAndOutsideSession(t *testing.T) {
	var changes int
	p := New(foodTree(), EntityAccessors(), Options[Entity]{
		SelectedID: Ptr(2),
		Variant:    VariantModal,
		OnChange:   func(*int64) { changes++ },
	})

	p.Open()
	p.Clear()
	if changes != 0 {
		t.Fatalf("clear while picking must stay local, got %d changes", changes)
	}
	if _, ok := p.Highlighted(); ok {
		t.Fatalf("highlight should be cleared")
	}
	if c := p.Committed(); c == nil || *c != 2 {
		t.Fatalf("committed = %v, want 2", c)
	}
	p.Close()

	p.Clear()
	if changes != 1 {
		t.Fatalf("clear outside session should notify once, got %d", changes)
	}
	if p.Committed() != nil {
		t.Fatalf("committed should be nil after clear")
	}
}

func TestCanConfirmMirrorsProhibition(t *testing.T) {
	p := New(foodTree(), EntityAccessors(), Options[Entity]{ProhibitedIDs: []int64{3}})
	if p.CanConfirm() {
		t.Fatalf("nothing highlighted yet")
	}
	p.Select(3)
	if p.CanConfirm() {
		t.Fatalf("prohibited highlight must disable confirm")
	}
	p.Select(1)
	if !p.CanConfirm() {
		t.Fatalf("valid highlight should enable confirm")
	}
}

func TestSelectedIDSeedsFocus(t *testing.T) {
	p := New(budgetTree(), EntityAccessors(), Options[Entity]{SelectedID: Ptr(5)})
	if p.Focus() != 1 {
		t.Fatalf("focus = %d, want 1 (Housing)", p.Focus())
	}
}

func TestEmptyPicker(t *testing.T) {
	p := New[Entity](nil, EntityAccessors(), Options[Entity]{})
	if p.Focus() != -1 || len(p.Rows()) != 0 {
		t.Fatalf("focus=%d rows=%d", p.Focus(), len(p.Rows()))
	}
	if res := p.HandleKey("enter"); res.Action != ActionNone {
		t.Fatalf("enter on empty picker = %v", res.Action)
	}
	if p.Placeholder() != "Search..." {
		t.Fatalf("placeholder = %q", p.Placeholder())
	}
}

func TestSuggestions(t *testing.T) {
	p := New(budgetTree(), EntityAccessors(), Options[Entity]{})
	p.SetQuery("rnt")
	got := p.Suggestions(3)
	if len(got) == 0 || got[0] != "Rent" {
		t.Fatalf("suggestions = %v, want Rent first", got)
	}
	p.SetQuery("rent")
	if got := p.Suggestions(3); got != nil {
		t.Fatalf("suggestions with matches = %v, want nil", got)
	}
}
