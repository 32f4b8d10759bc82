package hierarchy

type Action int

const (
	ActionNone Action = iota
	ActionMoved
	ActionToggled
	ActionQueryChanged
	ActionSelected
	ActionCommitted
	ActionRejected
	ActionCleared
	ActionFocused
	ActionBlurred
	ActionCancelled
)

func (a Action) String() string {
	switch a {
	case ActionMoved:
		return "moved"
	case ActionToggled:
		return "toggled"
	case ActionQueryChanged:
		return "query_changed"
	case ActionSelected:
		return "selected"
	case ActionCommitted:
		return "committed"
	case ActionRejected:
		return "rejected"
	case ActionCleared:
		return "cleared"
	case ActionFocused:
		return "focused"
	case ActionBlurred:
		return "blurred"
	case ActionCancelled:
		return "cancelled"
	default:
		return "none"
	}
}

// Result reports what a key did. ID is nil for the root choice.
type Result[T any] struct {
	Action Action
	ID     *int64
	Item   T
	Err    error
}

// HandleKey runs one key through the picker state machine. Key names follow
// bubbletea's KeyMsg.String().
func (p *Picker[T]) HandleKey(keyName string) Result[T] {
	if p == nil {
		return Result[T]{Action: ActionNone}
	}
	switch keyName {
	case "up", "ctrl+p":
		return p.move(-1)
	case "down", "ctrl+n":
		return p.move(1)
	case "enter":
		row, ok := p.FocusedRow()
		if !ok {
			return Result[T]{Action: ActionNone}
		}
		id := row.Node.ID
		if err := p.Confirm(id); err != nil {
			return Result[T]{Action: ActionRejected, ID: Ptr(id), Item: row.Node.Item, Err: err}
		}
		return Result[T]{Action: ActionCommitted, ID: Ptr(id), Item: row.Node.Item}
	case " ", "space":
		if p.opts.Variant != VariantList {
			return Result[T]{Action: ActionNone}
		}
		return p.toggleFocused()
	case "right":
		return p.setFocusedExpanded(true)
	case "left":
		return p.setFocusedExpanded(false)
	case "esc":
		if p.opts.Variant == VariantModal && p.query == "" {
			p.Close()
			return Result[T]{Action: ActionCancelled}
		}
		p.SetQuery("")
		p.inputOn = false
		return Result[T]{Action: ActionBlurred}
	case "ctrl+r":
		if err := p.ConfirmRoot(); err != nil {
			return Result[T]{Action: ActionRejected, Err: err}
		}
		return Result[T]{Action: ActionCommitted}
	case "ctrl+x":
		p.Clear()
		return Result[T]{Action: ActionCleared}
	case "/":
		if !p.inputOn {
			p.inputOn = true
			return Result[T]{Action: ActionFocused}
		}
		return p.appendQuery(keyName)
	case "backspace":
		if !p.inputOn || p.query == "" {
			return Result[T]{Action: ActionNone}
		}
		r := []rune(p.query)
		p.SetQuery(string(r[:len(r)-1]))
		return Result[T]{Action: ActionQueryChanged}
	default:
		if isPrintableKey(keyName) {
			return p.appendQuery(keyName)
		}
		return Result[T]{Action: ActionNone}
	}
}

func (p *Picker[T]) move(delta int) Result[T] {
	if len(p.rows) == 0 {
		return Result[T]{Action: ActionNone}
	}
	before := p.focus
	next := before + delta
	if before < 0 {
		next = 0
	}
	p.SetFocus(next)
	if p.focus == before {
		return Result[T]{Action: ActionNone}
	}
	row := p.rows[p.focus]
	return Result[T]{Action: ActionMoved, ID: Ptr(row.Node.ID), Item: row.Node.Item}
}

func (p *Picker[T]) toggleFocused() Result[T] {
	row, ok := p.FocusedRow()
	if !ok || len(row.Node.Children) == 0 {
		return Result[T]{Action: ActionNone}
	}
	p.ToggleExpanded(row.Node.ID)
	return Result[T]{Action: ActionToggled, ID: Ptr(row.Node.ID), Item: row.Node.Item}
}

func (p *Picker[T]) setFocusedExpanded(open bool) Result[T] {
	row, ok := p.FocusedRow()
	if !ok || len(row.Node.Children) == 0 || p.expanded.Has(row.Node.ID) == open {
		return Result[T]{Action: ActionNone}
	}
	if open {
		p.Expand(row.Node.ID)
	} else {
		p.Collapse(row.Node.ID)
	}
	return Result[T]{Action: ActionToggled, ID: Ptr(row.Node.ID), Item: row.Node.Item}
}

func (p *Picker[T]) appendQuery(s string) Result[T] {
	if !p.inputOn {
		return Result[T]{Action: ActionNone}
	}
	p.SetQuery(p.query + s)
	return Result[T]{Action: ActionQueryChanged}
}

// isPrintableKey accepts single-rune key names, which is how bubbletea
// reports typed characters.
func isPrintableKey(keyName string) bool {
	r := []rune(keyName)
	return len(r) == 1 && r[0] >= 32 && r[0] != 127
}
