package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack_StartsAtLibrary(t *testing.T) {
	stack := NewStack()

	assert.Equal(t, ScreenLibrary, stack.Current())
	assert.Equal(t, 1, stack.Depth())
	assert.Equal(t, State{}, stack.State())
}

func TestStack_PushAndPop(t *testing.T) {
	stack := NewStack()

	stack.Push(ScreenStore)
	stack.Push(ScreenSettings)
	assert.Equal(t, []Screen{ScreenLibrary, ScreenStore, ScreenSettings}, stack.Screens())

	assert.Equal(t, ScreenStore, stack.Pop())
	assert.Equal(t, ScreenLibrary, stack.Pop())
}

func TestStack_PopOnLibraryIsNoOp(t *testing.T) {
	stack := NewStack()

	assert.Equal(t, ScreenLibrary, stack.Pop())
	assert.Equal(t, 1, stack.Depth())
}

func TestStack_LeavingReadingClearsSelection(t *testing.T) {
	stack := NewStack()
	stack.SelectBook("b1", ActionRead)
	stack.Push(ScreenReadBook)

	stack.Pop()

	state := stack.State()
	assert.Empty(t, state.SelectedBookID)
	assert.Equal(t, ActionNone, state.InitialAction)
}

func TestStack_ReadingFlowKeepsSelection(t *testing.T) {
	stack := NewStack()
	stack.SelectBook("b1", ActionListen)
	stack.Push(ScreenReadBook)
	stack.Push(ScreenBookComplete)
	stack.StartQuiz("b1")
	stack.Push(ScreenTakeQuiz)

	// Back from the quiz to the completion screen keeps the book but drops
	// the quiz.
	assert.Equal(t, ScreenBookComplete, stack.Pop())
	state := stack.State()
	assert.Equal(t, "b1", state.SelectedBookID)
	assert.Equal(t, ActionListen, state.InitialAction)
	assert.Empty(t, state.QuizBookID)

	// Back to the reader, selection intact.
	assert.Equal(t, ScreenReadBook, stack.Pop())
	assert.Equal(t, "b1", stack.State().SelectedBookID)

	// Back to the library drops everything.
	assert.Equal(t, ScreenLibrary, stack.Pop())
	assert.Equal(t, State{}, stack.State())
}

func TestStack_ResetTo(t *testing.T) {
	stack := NewStack()

	// Hopping between tabs replaces the history instead of growing it.
	stack.ResetTo(ScreenStore)
	stack.ResetTo(ScreenProgress)
	stack.ResetTo(ScreenSettings)

	assert.Equal(t, 1, stack.Depth())
	assert.Equal(t, []Screen{ScreenSettings}, stack.Screens())
}

func TestStack_ResetToClearsState(t *testing.T) {
	stack := NewStack()
	stack.SelectBook("b1", ActionRead)
	stack.Push(ScreenReadBook)
	stack.StartQuiz("b1")
	stack.Push(ScreenTakeQuiz)

	stack.ResetTo(ScreenStore)

	assert.Equal(t, ScreenStore, stack.Current())
	assert.Equal(t, 1, stack.Depth())
	assert.Equal(t, State{}, stack.State())
}

func TestStack_ReturnToLibrary(t *testing.T) {
	stack := NewStack()
	stack.SelectBook("b1", ActionRead)
	stack.Push(ScreenReadBook)
	stack.StartQuiz("b1")
	stack.Push(ScreenTakeQuiz)

	stack.ReturnToLibrary()

	assert.Equal(t, ScreenLibrary, stack.Current())
	assert.Equal(t, 1, stack.Depth())
	assert.Equal(t, State{}, stack.State())
}

func TestStack_ScreensReturnsCopy(t *testing.T) {
	stack := NewStack()
	stack.Push(ScreenStore)

	screens := stack.Screens()
	screens[0] = ScreenPlayground

	assert.Equal(t, ScreenLibrary, stack.Screens()[0])
}
