package submission

import (
	"context"
	"errors"
	"sync"
	"time"

	"vlogvalidator/core"
)

// Stage is one step of the intake pipeline. Stages only ever advance in
// order; error is reachable from extracting (bad URL) and persisting
// (repository failure) only, since metadata and feedback lookups degrade
// instead of failing.
type Stage int

const (
	StageIdle Stage = iota
	StageExtracting
	StageResolvingMetadata
	StageGeneratingFeedback
	StagePersisting
	StageComplete
	StageError
)

var stageNames = map[Stage]string{
	StageIdle:               "idle",
	StageExtracting:         "extracting",
	StageResolvingMetadata:  "resolving-metadata",
	StageGeneratingFeedback: "generating-feedback",
	StagePersisting:         "persisting",
	StageComplete:           "complete",
	StageError:              "error",
}

func (s Stage) String() string { return stageNames[s] }

// legal forward transitions; anything else is a programming error.
var stageTransitions = map[Stage][]Stage{
	StageIdle:               {StageExtracting},
	StageExtracting:         {StageResolvingMetadata, StageError},
	StageResolvingMetadata:  {StageGeneratingFeedback},
	StageGeneratingFeedback: {StagePersisting},
	StagePersisting:         {StageComplete, StageError},
	StageComplete:           {StageIdle},
	StageError:              {StageIdle},
}

var (
	ErrIntakeBusy      = errors.New("a submission is already in flight")
	ErrIntakeNotDone   = errors.New("intake can only be reset once complete or failed")
	ErrInvalidVideoURL = errors.New("invalid YouTube URL; use a full link (e.g. youtube.com/watch?v=...)")

	errIllegalStage = errors.New("illegal intake stage transition")
)

type (
	// IntakeInput is the raw student form input.
	IntakeInput struct {
		StudentName string `json:"student_name"`
		Class       string `json:"class"`
		RollNumber  string `json:"roll_number"`
		VideoURL    string `json:"video_url"`
	}

	// Summary is the short-lived success state retained until reset.
	Summary struct {
		StudentName string    `json:"student_name"`
		VideoTitle  string    `json:"video_title"`
		Feedback    string    `json:"feedback"`
		CompletedAt time.Time `json:"completed_at"`
	}

	// Intake sequences extraction, metadata lookup, feedback generation and
	// persistence as an explicit state machine. One submission at a time;
	// re-submission is only possible from idle.
	Intake struct {
		svc  *Service
		meta core.MetadataService
		fb   core.FeedbackService

		mu      sync.Mutex
		stage   Stage
		err     error
		summary *Summary
	}
)

func NewIntake(svc *Service, meta core.MetadataService, fb core.FeedbackService) *Intake {
	return &Intake{svc: svc, meta: meta, fb: fb, stage: StageIdle}
}

func (in *Intake) Stage() Stage {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.stage
}

// Summary returns the success summary retained since the last completion,
// or nil.
func (in *Intake) Summary() *Summary {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.summary
}

// Err returns the failure recorded by the last run, or nil.
func (in *Intake) Err() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.err
}

func (in *Intake) advance(to Stage) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for _, next := range stageTransitions[in.stage] {
		if next == to {
			in.stage = to
			return
		}
	}
	// unreachable as long as Run drives the stages sequentially
	panic(errIllegalStage)
}

func (in *Intake) fail(err error) error {
	in.advance(StageError)
	in.mu.Lock()
	in.err = err
	in.mu.Unlock()
	return err
}

// Run drives one submission through the pipeline. It returns ErrIntakeBusy
// when invoked anywhere but idle.
func (in *Intake) Run(ctx context.Context, input IntakeInput) (*Summary, error) {
	in.mu.Lock()
	if in.stage != StageIdle {
		in.mu.Unlock()
		return nil, ErrIntakeBusy
	}
	in.stage = StageExtracting
	in.mu.Unlock()

	// extraction is the only hard validation gate
	videoID, err := core.ExtractVideoID(input.VideoURL)
	if err != nil {
		return nil, in.fail(core.NewValidationError(ErrInvalidVideoURL,
			core.FieldError{Field: "video_url", Error: ErrInvalidVideoURL.Error()}))
	}

	// best-effort; degrades to a fallback title, never errors
	in.advance(StageResolvingMetadata)
	meta := in.meta.Resolve(ctx, videoID)

	// best-effort; degrades to the default encouragement, never errors
	in.advance(StageGeneratingFeedback)
	fb := in.fb.Encourage(ctx, core.CleanString(input.StudentName), meta.Title, core.CleanString(input.Class))

	in.advance(StagePersisting)
	sub, err := in.svc.Create(ctx, NewSubmission{
		StudentName: input.StudentName,
		Class:       input.Class,
		RollNumber:  input.RollNumber,
		VideoURL:    input.VideoURL,
		VideoID:     videoID,
		VideoTitle:  meta.Title,
		AIFeedback:  fb.Text,
	})
	if err != nil {
		return nil, in.fail(err)
	}

	in.advance(StageComplete)
	summary := &Summary{
		StudentName: sub.StudentName,
		VideoTitle:  sub.VideoTitle,
		Feedback:    sub.AIFeedback,
		CompletedAt: time.Now().UTC(),
	}
	in.mu.Lock()
	in.summary = summary
	in.mu.Unlock()
	return summary, nil
}

// Reset returns to idle, clearing all transient staged data. It is only
// legal from complete or error.
func (in *Intake) Reset() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.stage != StageComplete && in.stage != StageError {
		return ErrIntakeNotDone
	}
	in.stage = StageIdle
	in.err = nil
	in.summary = nil
	return nil
}
