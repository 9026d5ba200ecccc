package input

import (
	"sync"

	"github.com/g3n/engine/window"
)

// Action represents a logical viewer action, not a physical key
type Action int

// Action constants using iota
const (
	ActionResetView Action = iota
	ActionToggleVisibility
	ActionClearModels
	ActionQuit
	ActionCount // Sentinel value for array sizing
)

// Manager maps physical keys to logical viewer actions and tracks
// per-frame edge state. Key events arrive from the engine's window
// dispatcher; the render loop consumes edges and calls PostUpdate
// once per frame.
type Manager struct {
	mu sync.RWMutex

	// Key to action mapping (one key can map to multiple actions)
	keyToActions map[window.Key][]Action

	// Current held state (indexed by Action)
	currentState [ActionCount]bool

	// Just pressed/released flags (reset each frame)
	justPressed  [ActionCount]bool
	justReleased [ActionCount]bool
}

// NewManager creates a Manager with the default viewer key bindings
func NewManager() *Manager {
	m := &Manager{
		keyToActions: make(map[window.Key][]Action),
	}

	m.BindKey(window.KeyR, ActionResetView)
	m.BindKey(window.KeyH, ActionToggleVisibility)
	m.BindKey(window.KeyC, ActionClearModels)
	m.BindKey(window.KeyEscape, ActionQuit)

	return m
}

// BindKey binds a physical key to a logical action.
// Multiple keys can be bound to the same action.
func (m *Manager) BindKey(key window.Key, action Action) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if action < 0 || action >= ActionCount {
		return
	}

	m.keyToActions[key] = append(m.keyToActions[key], action)
}

// UnbindKey removes all action bindings for a key
func (m *Manager) UnbindKey(key window.Key) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.keyToActions, key)
}

// HandleKeyEvent processes a key transition and updates internal state
func (m *Manager) HandleKeyEvent(key window.Key, pressed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	actions, exists := m.keyToActions[key]
	if !exists {
		return
	}

	for _, act := range actions {
		if act < 0 || act >= ActionCount {
			continue
		}
		// Detect edges immediately when the event arrives
		if pressed && !m.currentState[act] {
			m.justPressed[act] = true
		}
		if !pressed && m.currentState[act] {
			m.justReleased[act] = true
		}
		m.currentState[act] = pressed
	}
}

// PostUpdate must be called at the end of each frame, after all input
// checks are done, to reset edge detection state
func (m *Manager) PostUpdate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range ActionCount {
		m.justPressed[i] = false
		m.justReleased[i] = false
	}
}

// IsActive returns true if the action is currently being held down
func (m *Manager) IsActive(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.currentState[action]
}

// JustPressed returns true only if the action was pressed in the current frame
func (m *Manager) JustPressed(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.justPressed[action]
}

// JustReleased returns true only if the action was released in the current frame
func (m *Manager) JustReleased(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.justReleased[action]
}
