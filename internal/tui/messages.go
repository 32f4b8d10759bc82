package tui

import (
	"github.com/jask/fintree/internal/prefs"
	"github.com/jask/fintree/internal/service"
)

type statusMsg string

type errMsg struct{ error }

// doneMsg reports a finished write; the app reloads afterwards.
type doneMsg string

type sessionMsg struct {
	userID string
	prefs  prefs.Prefs
}

type snapshotMsg struct {
	snap service.Snapshot
}
