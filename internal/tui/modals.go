package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/fintree/internal/database/repository"
	"github.com/jask/fintree/internal/hierarchy"
	"github.com/jask/fintree/internal/service"
)

const (
	reparentZone = "reparent-row-"
	chooserZone  = "chooser-row-"
)

// reparentModal picks a new parent for one entity. The entity and its
// descendants are prohibited targets.
type reparentModal struct {
	kind   service.Kind
	id     int64
	label  string
	picker *hierarchy.Picker[hierarchy.Entity]
}

func (a *App) openReparent(t *treeTab) {
	row, ok := t.picker.FocusedRow()
	if !ok {
		return
	}
	id := row.Node.ID
	f := t.picker.Forest()
	var current *int64
	if parent, ok := f.Parent(id); ok {
		current = hierarchy.Ptr(parent)
	}
	p := hierarchy.New(f.Items(), hierarchy.EntityAccessors(), hierarchy.Options[hierarchy.Entity]{
		SelectedID:      current,
		EditingID:       hierarchy.Ptr(id),
		Placeholder:     a.cfg.Picker.Placeholder,
		AllowRootChoice: a.cfg.Picker.AllowRootChoice,
		AutoFocusSearch: a.cfg.Picker.AutoFocusSearch,
		Variant:         hierarchy.VariantModal,
		Logger:          a.pickerLogger(),
	})
	p.SetExpanded(t.picker.Expanded())
	p.Open()
	a.reparent = &reparentModal{kind: t.kind, id: id, label: f.Label(id), picker: p}
}

func (a *App) handleReparentKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	r := a.reparent
	res := r.picker.HandleKey(m.String())
	switch res.Action {
	case hierarchy.ActionMoved:
		r.picker.Select(*res.ID)
	case hierarchy.ActionCommitted:
		a.reparent = nil
		return a, a.reparentCmd(r.kind, r.id, res.ID, r.label)
	case hierarchy.ActionRejected:
		a.setError(rejection(r.label, res.Err))
	case hierarchy.ActionCancelled:
		a.reparent = nil
		a.setStatus("move cancelled")
	}
	return a, nil
}

func rejection(label string, err error) error {
	switch {
	case errors.Is(err, hierarchy.ErrProhibited):
		return errors.New("cannot move " + label + " under itself or one of its descendants")
	case errors.Is(err, hierarchy.ErrRootNotAllowed):
		return errors.New("top level is not allowed here")
	default:
		return err
	}
}

func (a *App) renderReparent() string {
	r := a.reparent
	th := a.theme
	var b strings.Builder
	b.WriteString(th.Title.Render("Move " + r.label))
	b.WriteString("\n")
	b.WriteString(renderPicker(r.picker, th, reparentZone, a.modalWidth(), a.modalHeight()))
	b.WriteString("\n\n")

	hint := "[enter] Move here"
	if row, ok := r.picker.FocusedRow(); !ok || r.picker.IsProhibited(row.Node.ID) {
		b.WriteString(th.Prohibited.Render(hint))
	} else {
		b.WriteString(th.Muted.Render(hint))
	}
	if r.picker.AllowRootChoice() {
		b.WriteString(th.Muted.Render("  [ctrl+r] Top level"))
	}
	b.WriteString(th.Muted.Render("  [esc] Cancel"))
	return th.Modal.Render(b.String())
}

type chooserPurpose int

const (
	chooseTransactionCategory chooserPurpose = iota
	chooseFormCategory
)

// chooser is a modal category picker. Choosing the top level means no
// category.
type chooser struct {
	purpose chooserPurpose
	kind    service.Kind
	title   string
	txID    int64
	picker  *hierarchy.Picker[repository.Category]
	chosen  *repository.Category
}

func (a *App) categoriesOf(kind service.Kind) []repository.Category {
	if kind == service.KindAccountCategories {
		return a.snap.AccountCategories
	}
	return a.snap.TransactionCategories
}

func (a *App) openChooser(purpose chooserPurpose, kind service.Kind, title string, selected *int64) *chooser {
	c := &chooser{purpose: purpose, kind: kind, title: title}
	c.picker = hierarchy.New(a.categoriesOf(kind), service.CategoryAccessors(), hierarchy.Options[repository.Category]{
		SelectedID:      selected,
		Placeholder:     a.cfg.Picker.Placeholder,
		AllowRootChoice: true,
		AutoFocusSearch: true,
		Variant:         hierarchy.VariantModal,
		Logger:          a.pickerLogger(),
		OnSelect:        func(cat repository.Category) { c.chosen = &cat },
	})
	if selected != nil {
		for _, id := range c.picker.Forest().Ancestors(*selected) {
			c.picker.Expand(id)
		}
		c.picker.Select(*selected)
	}
	c.picker.Open()
	a.chooser = c
	return c
}

func (a *App) handleChooserKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := a.chooser
	res := c.picker.HandleKey(m.String())
	switch res.Action {
	case hierarchy.ActionMoved:
		c.picker.Select(*res.ID)
	case hierarchy.ActionCommitted:
		a.chooser = nil
		if res.ID == nil {
			c.chosen = nil
		}
		return a, a.applyChoice(c, res.ID)
	case hierarchy.ActionRejected:
		a.setError(res.Err)
	case hierarchy.ActionCancelled:
		a.chooser = nil
	}
	return a, nil
}

func (a *App) applyChoice(c *chooser, id *int64) tea.Cmd {
	switch c.purpose {
	case chooseTransactionCategory:
		return a.setTransactionCategoryCmd(c.txID, id)
	case chooseFormCategory:
		if a.form != nil {
			a.form.category = id
			a.form.categoryLabel = ""
			if c.chosen != nil {
				a.form.categoryLabel = strings.Join(c.picker.Forest().Path(c.chosen.ID), " > ")
			}
		}
	}
	return nil
}

func (a *App) renderChooser() string {
	c := a.chooser
	th := a.theme
	var b strings.Builder
	b.WriteString(th.Title.Render(c.title))
	b.WriteString("\n")
	b.WriteString(renderPicker(c.picker, th, chooserZone, a.modalWidth(), a.modalHeight()))
	b.WriteString("\n")
	b.WriteString(describeFocused(c.picker, th, a.modalWidth()))
	b.WriteString("\n\n")
	b.WriteString(th.Muted.Render("[enter] Choose  [ctrl+r] None  [esc] Cancel"))
	return th.Modal.Render(b.String())
}

// confirmState is a yes/no question guarding a destructive command.
type confirmState struct {
	prompt string
	run    tea.Cmd
}

func (a *App) handleConfirmKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := a.confirm
	switch m.String() {
	case "y", "Y":
		a.confirm = nil
		return a, c.run
	case "n", "N", "esc":
		a.confirm = nil
		a.setStatus("cancelled")
	}
	return a, nil
}

func (a *App) renderConfirm() string {
	th := a.theme
	body := th.Title.Render(a.confirm.prompt) + "\n\n" + th.Muted.Render(helpLine(a.keys.Yes, a.keys.No))
	return th.Modal.Render(body)
}
