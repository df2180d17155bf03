package core

import "context"

// DefaultEncouragement is returned whenever feedback generation degrades
// (missing credential, timeout, upstream error). Content is decorative; it
// must never block submission persistence.
const DefaultEncouragement = "Tugas berhasil diterima! Semangat terus berkarya."

// Feedback is the best-effort result of encouragement generation.
type Feedback struct {
	Text     string
	Degraded bool
}

// FeedbackService is any service that can produce one short congratulatory
// sentence for a submission. Encourage never fails: on any error it returns
// DefaultEncouragement marked as degraded.
type FeedbackService interface {
	Encourage(ctx context.Context, studentName, videoTitle, class string) Feedback
}
