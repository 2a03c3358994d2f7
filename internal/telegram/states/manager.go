package states

import (
	"fmt"
	"sync"

	"anomonus-bot/internal/telegram/flows"
)

var _ StateManager = (*Manager)(nil)

// Manager keeps per-user conversation state in memory.
type Manager struct {
	mu         sync.RWMutex
	userStates map[int64]State
	userData   map[int64]any
}

func NewManager() *Manager {
	return &Manager{
		userStates: make(map[int64]State),
		userData:   make(map[int64]any),
	}
}

// GetState returns StateNone for users the manager has not seen.
func (m *Manager) GetState(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, exists := m.userStates[userID]
	if !exists {
		return StateNone
	}
	return state
}

func (m *Manager) GetStateData(userID int64) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.userData[userID]
	return data, ok
}

// SetState stores the state. Nil data keeps whatever data is already held.
func (m *Manager) SetState(userID int64, state State, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.userStates[userID] = state
	if data != nil {
		m.userData[userID] = data
	}
}

// BeginValidation moves the user into Validating unless a validation is
// already running for them.
func (m *Manager) BeginValidation(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.userStates[userID] == Validating {
		return false
	}
	m.userStates[userID] = Validating
	return true
}

func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.userStates, userID)
	delete(m.userData, userID)
}

// GetLinkData returns the pending linking data of a user.
func (m *Manager) GetLinkData(userID int64) (*flows.LinkFlowData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, exists := m.userData[userID]
	if !exists {
		return nil, fmt.Errorf("no data for user %d", userID)
	}

	flowData, ok := data.(*flows.LinkFlowData)
	if !ok {
		return nil, fmt.Errorf("invalid data type for user %d", userID)
	}

	return flowData, nil
}
