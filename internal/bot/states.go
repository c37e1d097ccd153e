package bot

import "sync"

type inputMode string

const (
	modeNone          inputMode = ""
	modeGroup         inputMode = "group"
	modeSubgroup      inputMode = "subgroup"
	modeReminders     inputMode = "reminders"
	modeFormat        inputMode = "format"
	modeOtherGroup    inputMode = "other_group"
	modeOtherSubgroup inputMode = "other_subgroup"
)

type inputState struct {
	mode inputMode
	// group pending in the other-group lookup flow.
	group string
}

// inputStates tracks which multi-step flow each chat is in the middle of.
type inputStates struct {
	mu    sync.Mutex
	state map[int64]inputState
}

func newInputStates() *inputStates {
	return &inputStates{state: make(map[int64]inputState)}
}

func (s *inputStates) set(chatID int64, st inputState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[chatID] = st
}

func (s *inputStates) get(chatID int64) inputState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state[chatID]
}

func (s *inputStates) clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state, chatID)
}
