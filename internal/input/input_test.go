package input

import (
	"testing"

	"github.com/g3n/engine/window"
)

func TestDefaultBindings(t *testing.T) {
	m := NewManager()

	m.HandleKeyEvent(window.KeyR, true)
	if !m.IsActive(ActionResetView) {
		t.Error("Expected R to activate ActionResetView")
	}
	if !m.JustPressed(ActionResetView) {
		t.Error("Expected ActionResetView to be just pressed")
	}

	m.HandleKeyEvent(window.KeyEscape, true)
	if !m.JustPressed(ActionQuit) {
		t.Error("Expected Escape to activate ActionQuit")
	}
}

func TestEdgeDetection(t *testing.T) {
	m := NewManager()

	m.HandleKeyEvent(window.KeyH, true)
	if !m.JustPressed(ActionToggleVisibility) {
		t.Fatal("Expected just-pressed on first press")
	}

	// Holding the key across frames must not re-trigger the edge.
	m.PostUpdate()
	m.HandleKeyEvent(window.KeyH, true)
	if m.JustPressed(ActionToggleVisibility) {
		t.Error("Expected no just-pressed while key is held")
	}
	if !m.IsActive(ActionToggleVisibility) {
		t.Error("Expected action to remain active while held")
	}

	m.HandleKeyEvent(window.KeyH, false)
	if !m.JustReleased(ActionToggleVisibility) {
		t.Error("Expected just-released on release")
	}

	m.PostUpdate()
	if m.JustReleased(ActionToggleVisibility) {
		t.Error("Expected just-released cleared by PostUpdate")
	}
}

func TestBindAndUnbind(t *testing.T) {
	m := NewManager()

	// Second key bound to the same action
	m.BindKey(window.KeyDelete, ActionClearModels)
	m.HandleKeyEvent(window.KeyDelete, true)
	if !m.JustPressed(ActionClearModels) {
		t.Error("Expected Delete to trigger ActionClearModels after BindKey")
	}
	m.HandleKeyEvent(window.KeyDelete, false)
	m.PostUpdate()

	m.UnbindKey(window.KeyDelete)
	m.HandleKeyEvent(window.KeyDelete, true)
	if m.JustPressed(ActionClearModels) {
		t.Error("Expected no trigger after UnbindKey")
	}
}

func TestUnknownKeyIgnored(t *testing.T) {
	m := NewManager()
	m.HandleKeyEvent(window.KeyF12, true)

	for a := Action(0); a < ActionCount; a++ {
		if m.IsActive(a) || m.JustPressed(a) {
			t.Errorf("Expected no action state for unbound key, action %d active", a)
		}
	}
}
