// Package navigation tracks where a client session is in the app and what
// transient reading state it carries. The screen history is a stack that is
// never empty; sessions start at the library.
package navigation

// Screen identifies one view of the app.
type Screen string

const (
	ScreenLibrary      Screen = "library"
	ScreenReadBook     Screen = "read_book"
	ScreenCreateStory  Screen = "create_story"
	ScreenTakeQuiz     Screen = "take_quiz"
	ScreenBookComplete Screen = "book_complete"
	ScreenStore        Screen = "store"
	ScreenProgress     Screen = "progress"
	ScreenSettings     Screen = "settings"
	ScreenPlayground   Screen = "playground"
)

// InitialAction is what the reader should do when a book opens.
type InitialAction string

const (
	ActionNone   InitialAction = ""
	ActionRead   InitialAction = "read"
	ActionListen InitialAction = "listen"
)

// State is the transient reading state attached to a session. It is cleared
// piecewise as the user navigates away from the screens that need it.
type State struct {
	SelectedBookID string        `json:"selectedBookId,omitempty"`
	InitialAction  InitialAction `json:"initialAction,omitempty"`
	QuizBookID     string        `json:"quizBookId,omitempty"`
}

// Stack is a screen history with transient state. Not safe for concurrent use;
// the session manager serializes access.
type Stack struct {
	screens []Screen
	state   State
}

// NewStack returns a stack with the library at the bottom.
func NewStack() *Stack {
	return &Stack{screens: []Screen{ScreenLibrary}}
}

// Current returns the screen on top of the stack.
func (s *Stack) Current() Screen {
	return s.screens[len(s.screens)-1]
}

// Depth returns the number of screens on the stack.
func (s *Stack) Depth() int {
	return len(s.screens)
}

// Screens returns a copy of the stack, bottom first.
func (s *Stack) Screens() []Screen {
	out := make([]Screen, len(s.screens))
	copy(out, s.screens)
	return out
}

// State returns the current transient state.
func (s *Stack) State() State {
	return s.state
}

// Push navigates to a screen.
func (s *Stack) Push(screen Screen) {
	s.screens = append(s.screens, screen)
}

// SelectBook records the book being opened and what to do with it.
func (s *Stack) SelectBook(bookID string, action InitialAction) {
	s.state.SelectedBookID = bookID
	s.state.InitialAction = action
}

// StartQuiz records the book being quizzed.
func (s *Stack) StartQuiz(bookID string) {
	s.state.QuizBookID = bookID
}

// readingScreen reports whether the screen still needs the selected book.
func readingScreen(screen Screen) bool {
	return screen == ScreenReadBook || screen == ScreenBookComplete || screen == ScreenTakeQuiz
}

// Pop navigates back one screen and clears whatever transient state the
// destination no longer needs. Popping the last screen is a no-op.
func (s *Stack) Pop() Screen {
	if len(s.screens) == 1 {
		return s.Current()
	}

	leaving := s.Current()
	s.screens = s.screens[:len(s.screens)-1]
	destination := s.Current()

	// Leaving the reading flow for an unrelated screen drops the selected
	// book; hopping between reading, completion and quiz keeps it.
	if (leaving == ScreenReadBook || leaving == ScreenBookComplete) && !readingScreen(destination) {
		s.state.SelectedBookID = ""
		s.state.InitialAction = ActionNone
	}

	if leaving == ScreenTakeQuiz {
		s.state.QuizBookID = ""
	}

	return destination
}

// ResetTo replaces the whole history with a single screen. Tab switches use
// this so hopping between tabs does not pile up history; all transient state
// is cleared.
func (s *Stack) ResetTo(screen Screen) {
	s.screens = s.screens[:0]
	s.screens = append(s.screens, screen)
	s.state = State{}
}

// ReturnToLibrary abandons the whole flow: all transient state is cleared and
// the history collapses to the library.
func (s *Stack) ReturnToLibrary() {
	s.ResetTo(ScreenLibrary)
}
