package question

import "time"

// recentWindow is how far back a publication still counts as recent.
const recentWindow = 24 * time.Hour

// IsPublished reports whether the question is visible at now.
func IsPublished(q *Question, now time.Time) bool {
	return !now.Before(q.PubDate)
}

// CanVote reports whether the voting window is open at now. The window is
// closed on both ends: a question with EndDate exactly equal to now still
// accepts votes.
func CanVote(q *Question, now time.Time) bool {
	if now.Before(q.PubDate) {
		return false
	}
	return q.EndDate == nil || !now.After(*q.EndDate)
}

// WasPublishedRecently reports whether PubDate lies within [now-24h, now].
func WasPublishedRecently(q *Question, now time.Time) bool {
	if q.PubDate.After(now) {
		return false
	}
	return !q.PubDate.Before(now.Add(-recentWindow))
}
