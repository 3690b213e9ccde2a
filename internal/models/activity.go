package models

// ActivityKind discriminates the rewarded activity union.
type ActivityKind string

const (
	ActivityBookRead     ActivityKind = "book_read"
	ActivityQuizComplete ActivityKind = "quiz_complete"
	ActivityStoryCreated ActivityKind = "story_created"
)

// Activity is a rewarded user action. Quiz completions carry their score; the
// other kinds carry no payload. Constructors keep callers from building a quiz
// activity without a score.
type Activity struct {
	Kind  ActivityKind
	Score int
	Total int
}

// BookReadActivity marks a book read to its final page.
func BookReadActivity() Activity {
	return Activity{Kind: ActivityBookRead}
}

// QuizCompletedActivity marks a finished quiz with its score out of total.
func QuizCompletedActivity(score, total int) Activity {
	return Activity{Kind: ActivityQuizComplete, Score: score, Total: total}
}

// StoryCreatedActivity marks a user-created story saved to the library.
func StoryCreatedActivity() Activity {
	return Activity{Kind: ActivityStoryCreated}
}

// GemAward returns the gems this activity earns. Quiz completions are tiered
// by score fraction; a quiz below the pass threshold earns nothing.
func (a Activity) GemAward() int {
	switch a.Kind {
	case ActivityBookRead:
		return RewardBookRead
	case ActivityStoryCreated:
		return RewardStoryCreated
	case ActivityQuizComplete:
		if a.Total <= 0 {
			return 0
		}
		if a.Score == a.Total {
			return RewardQuizPerfect
		}
		fraction := float64(a.Score) / float64(a.Total)
		if fraction >= QuizGoodThreshold {
			return RewardQuizGood
		}
		if fraction >= QuizPassThreshold {
			return RewardQuizPass
		}
		return 0
	default:
		return 0
	}
}
