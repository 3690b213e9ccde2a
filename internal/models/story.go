package models

// StoryPageDraft is one generated page before illustration: the narration text
// plus the prompt used to render its picture.
type StoryPageDraft struct {
	Text        string `json:"text"`
	ImagePrompt string `json:"imagePrompt"`
}

// StoryDraft is a generated story before it becomes a library book.
type StoryDraft struct {
	Title string           `json:"title"`
	Pages []StoryPageDraft `json:"pages"`
}
