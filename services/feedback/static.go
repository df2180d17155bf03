package feedbacksvc

import (
	"context"

	"vlogvalidator/core"
)

// staticService always returns the default encouragement; wired when no
// Gemini credential is configured.
type staticService struct{}

var _ core.FeedbackService = (*staticService)(nil)

func NewStaticService() *staticService {
	return &staticService{}
}

func (staticService) Encourage(context.Context, string, string, string) core.Feedback {
	return core.Feedback{Text: core.DefaultEncouragement, Degraded: true}
}
