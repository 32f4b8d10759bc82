package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/fintree/internal/service"
)

type formKind int

const (
	formCategory formKind = iota
	formAccount
	formTransaction
)

type formResult int

const (
	formPending formResult = iota
	formSubmitted
	formCancelled
	formPickCategory
)

type fieldSpec struct {
	key         string
	label       string
	value       string
	placeholder string
}

type formField struct {
	key   string
	label string
	input textinput.Model
}

// form is a column of text inputs plus an optional category chosen through
// a modal picker.
type form struct {
	title  string
	kind   formKind
	target service.Kind // hierarchy being edited; empty for transactions
	id     *int64       // nil while creating
	parent *int64

	fields []formField
	focus  int
	err    string

	categoryKind  service.Kind
	category      *int64
	categoryLabel string
}

func newForm(title string, kind formKind, specs ...fieldSpec) *form {
	f := &form{title: title, kind: kind}
	for _, s := range specs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = s.placeholder
		ti.CharLimit = 120
		ti.Width = 40
		ti.SetValue(s.value)
		f.fields = append(f.fields, formField{key: s.key, label: s.label, input: ti})
	}
	if len(f.fields) > 0 {
		f.fields[0].input.Focus()
	}
	return f
}

func (f *form) withCategory(kind service.Kind, id *int64, label string) *form {
	f.categoryKind = kind
	f.category = id
	f.categoryLabel = label
	return f
}

func (f *form) value(key string) string {
	for _, fl := range f.fields {
		if fl.key == key {
			return strings.TrimSpace(fl.input.Value())
		}
	}
	return ""
}

func (f *form) setFocus(i int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	if i < 0 {
		i = len(f.fields) - 1
	}
	if i >= len(f.fields) {
		i = 0
	}
	f.fields[f.focus].input.Blur()
	f.focus = i
	return f.fields[f.focus].input.Focus()
}

func (f *form) update(m tea.KeyMsg) (formResult, tea.Cmd) {
	switch m.String() {
	case "esc":
		return formCancelled, nil
	case "ctrl+s":
		return formSubmitted, nil
	case "ctrl+k":
		if f.categoryKind != "" {
			return formPickCategory, nil
		}
		return formPending, nil
	case "enter":
		if f.focus == len(f.fields)-1 {
			return formSubmitted, nil
		}
		return formPending, f.setFocus(f.focus + 1)
	case "tab", "down":
		return formPending, f.setFocus(f.focus + 1)
	case "shift+tab", "up":
		return formPending, f.setFocus(f.focus - 1)
	}
	if len(f.fields) == 0 {
		return formPending, nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(m)
	f.err = ""
	return formPending, cmd
}

func (f *form) view(th Theme) string {
	var b strings.Builder
	b.WriteString(th.Title.Render(f.title))
	b.WriteString("\n\n")
	width := 0
	for _, fl := range f.fields {
		if len(fl.label) > width {
			width = len(fl.label)
		}
	}
	for i, fl := range f.fields {
		label := fl.label + strings.Repeat(" ", width-len(fl.label))
		if i == f.focus {
			b.WriteString(th.Focused.Render(label))
		} else {
			b.WriteString(th.Muted.Render(label))
		}
		b.WriteString("  ")
		b.WriteString(fl.input.View())
		b.WriteString("\n")
	}
	if f.categoryKind != "" {
		label := f.categoryLabel
		if label == "" {
			label = "none"
		}
		b.WriteString(th.Muted.Render("Category"+strings.Repeat(" ", max(0, width-len("Category")))) + "  " + label + th.Muted.Render("  [ctrl+k] change"))
		b.WriteString("\n")
	}
	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(th.Error.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(th.Muted.Render("[tab] Next  [enter] Save on last field  [ctrl+s] Save  [esc] Cancel"))
	return th.Modal.Render(b.String())
}
