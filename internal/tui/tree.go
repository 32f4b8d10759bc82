package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/fintree/internal/hierarchy"
	"github.com/jask/fintree/internal/service"
)

// treeTab shows one hierarchy as an inline list picker.
type treeTab struct {
	kind     service.Kind
	picker   *hierarchy.Picker[hierarchy.Entity]
	restored bool
}

func (a *App) newTreeTab(kind service.Kind) *treeTab {
	return &treeTab{
		kind: kind,
		picker: hierarchy.New(nil, hierarchy.EntityAccessors(), hierarchy.Options[hierarchy.Entity]{
			Placeholder:     a.cfg.Picker.Placeholder,
			AutoFocusSearch: a.cfg.Picker.AutoFocusSearch,
			Variant:         hierarchy.VariantList,
			Logger:          a.pickerLogger(),
		}),
	}
}

func (t *treeTab) zonePrefix() string {
	return string(t.kind) + "-row-"
}

func (t *treeTab) focusedID() (int64, bool) {
	row, ok := t.picker.FocusedRow()
	if !ok {
		return 0, false
	}
	return row.Node.ID, true
}

func (a *App) entitiesOf(kind service.Kind) []hierarchy.Entity {
	var out []hierarchy.Entity
	switch kind {
	case service.KindAccounts:
		for _, acc := range a.snap.Accounts {
			out = append(out, service.AccountEntity(acc))
		}
	case service.KindAccountCategories:
		for _, c := range a.snap.AccountCategories {
			out = append(out, service.CategoryEntity(c))
		}
	case service.KindTransactionCategories:
		for _, c := range a.snap.TransactionCategories {
			out = append(out, service.CategoryEntity(c))
		}
	}
	return out
}

func (a *App) handleTreeKey(t *treeTab, m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !t.picker.InputFocused() {
		switch {
		case key.Matches(m, a.keys.New):
			a.form = a.editorFor(t.kind, nil, nil)
			return a, nil
		case key.Matches(m, a.keys.AddChild):
			if id, ok := t.focusedID(); ok {
				a.form = a.editorFor(t.kind, nil, hierarchy.Ptr(id))
			}
			return a, nil
		case key.Matches(m, a.keys.Edit):
			if id, ok := t.focusedID(); ok {
				a.form = a.editorFor(t.kind, hierarchy.Ptr(id), nil)
			}
			return a, nil
		case key.Matches(m, a.keys.Reparent):
			a.openReparent(t)
			return a, nil
		case key.Matches(m, a.keys.Delete):
			if id, ok := t.focusedID(); ok {
				label := t.picker.Forest().Label(id)
				a.confirm = &confirmState{
					prompt: fmt.Sprintf("Delete %s? Its children move to the top level.", label),
					run:    a.deleteCmd(t.kind, id, label),
				}
			}
			return a, nil
		}
	}

	res := t.picker.HandleKey(m.String())
	switch res.Action {
	case hierarchy.ActionCommitted:
		if res.ID != nil {
			a.form = a.editorFor(t.kind, res.ID, nil)
		}
	case hierarchy.ActionRejected:
		a.setError(res.Err)
	}
	return a, nil
}

// editorFor opens the form of an existing entity (id set) or a new one,
// optionally under parent.
func (a *App) editorFor(kind service.Kind, id, parent *int64) *form {
	if kind == service.KindAccounts {
		if id != nil {
			for i := range a.snap.Accounts {
				if a.snap.Accounts[i].ID == *id {
					return a.accountForm(&a.snap.Accounts[i], nil)
				}
			}
		}
		return a.accountForm(nil, parent)
	}
	if id != nil {
		cats := a.categoriesOf(kind)
		for i := range cats {
			if cats[i].ID == *id {
				return a.categoryForm(kind, &cats[i], nil)
			}
		}
	}
	return a.categoryForm(kind, nil, parent)
}

// categoryPath renders "Parent > Child" for a category id.
func (a *App) categoryPath(kind service.Kind, id *int64) string {
	if id == nil {
		return ""
	}
	t := a.trees[kind]
	if t == nil {
		return ""
	}
	return strings.Join(t.picker.Forest().Path(*id), " > ")
}

func (a *App) renderTree(t *treeTab) string {
	th := a.theme
	var b strings.Builder
	b.WriteString(renderPicker(t.picker, th, t.zonePrefix(), a.width, a.bodyHeight()-2))
	b.WriteString("\n")
	b.WriteString(describeFocused(t.picker, th, a.width))
	return b.String()
}
