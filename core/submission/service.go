package submission

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"vlogvalidator/core"
)

var (
	// errors
	ErrNotFound         = errors.New("submission not found")
	ErrWriteTimeout     = errors.New("database write timed out; check your connection and try again")
	ErrPermissionDenied = errors.New("permission denied; check the database access rules")
)

type (
	Repository interface {
		// CreateSubmission persists sub and assigns its ID. Absent optional
		// fields must be omitted at the storage layer, never sent as nulls.
		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		QueryAllSubmissions(ctx context.Context) ([]Submission, error)
		// UpdateGrade partially updates score and teacher note only.
		UpdateGrade(ctx context.Context, id string, score int, note string) error
		// UpdateStudent partially updates name, class and roll number only.
		UpdateStudent(ctx context.Context, id, name, class, roll string) error
		DeleteSubmission(ctx context.Context, id string) error
		// DeleteAllSubmissions removes every record in one all-or-nothing
		// batch. It is a no-op when the collection is already empty.
		DeleteAllSubmissions(ctx context.Context) error
		// Subscribe registers a listener that receives the full current
		// snapshot (SubmittedAt descending) on registration and again on
		// every change, until cancelled.
		Subscribe(ctx context.Context) (*Subscription, error)
	}

	Service struct {
		repo         Repository
		validate     *validator.Validate
		writeTimeout time.Duration
	}
)

func NewService(repo Repository, validate *validator.Validate, conf *core.Config) *Service {
	return &Service{
		repo:         repo,
		validate:     validate,
		writeTimeout: conf.Store.WriteTimeout,
	}
}

// Create validates ns, stamps the submission time and persists it. The write
// races a wall-clock timer; on timeout the underlying operation may still
// land in the background but its outcome is ignored.
func (svc *Service) Create(ctx context.Context, ns NewSubmission) (Submission, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Submission{}, err
	}
	sub := Submission{
		StudentName: ns.StudentName,
		Class:       ns.Class,
		RollNumber:  ns.RollNumber,
		VideoURL:    ns.VideoURL,
		VideoID:     ns.VideoID,
		VideoTitle:  ns.VideoTitle,
		AIFeedback:  ns.AIFeedback,
		SubmittedAt: time.Now().UTC(),
	}

	type result struct {
		sub Submission
		err error
	}
	done := make(chan result, 1)
	go func() {
		created, err := svc.repo.CreateSubmission(ctx, sub)
		done <- result{created, err}
	}()
	select {
	case res := <-done:
		return res.sub, res.err
	case <-time.After(svc.writeTimeout):
		return Submission{}, ErrWriteTimeout
	}
}

func (svc *Service) QueryAll(ctx context.Context) ([]Submission, error) {
	return svc.repo.QueryAllSubmissions(ctx)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Submission, error) {
	subs, err := svc.repo.QueryAllSubmissions(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(subs, filter), nil
}

// UpdateGrade rejects an out-of-range score before any write occurs.
func (svc *Service) UpdateGrade(ctx context.Context, id string, grade Grade) error {
	if err := grade.Validate(svc.validate); err != nil {
		return err
	}
	if id == "" {
		return core.NewValidationError(ErrNotFound, core.FieldError{Field: "id", Error: "missing submission id"})
	}
	return svc.repo.UpdateGrade(ctx, id, grade.Score, grade.TeacherNote)
}

func (svc *Service) UpdateStudent(ctx context.Context, id string, upd StudentUpdate) error {
	if err := upd.Validate(svc.validate); err != nil {
		return err
	}
	if id == "" {
		return core.NewValidationError(ErrNotFound, core.FieldError{Field: "id", Error: "missing submission id"})
	}
	return svc.repo.UpdateStudent(ctx, id, upd.StudentName, upd.Class, upd.RollNumber)
}

// Delete rejects an empty id before attempting the operation; the delete
// itself races a wall-clock timer like Create.
func (svc *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return core.NewValidationError(ErrNotFound, core.FieldError{Field: "id", Error: "missing submission id"})
	}

	done := make(chan error, 1)
	go func() { done <- svc.repo.DeleteSubmission(ctx, id) }()
	select {
	case err := <-done:
		return err
	case <-time.After(svc.writeTimeout):
		return ErrWriteTimeout
	}
}

func (svc *Service) DeleteAll(ctx context.Context) error {
	return svc.repo.DeleteAllSubmissions(ctx)
}

func (svc *Service) Subscribe(ctx context.Context) (*Subscription, error) {
	return svc.repo.Subscribe(ctx)
}

// Subscription is a cancellable long-lived stream of full snapshots.
// Authorization failures on the underlying channel are delivered on Errs so
// callers can clear cached state without the listener being torn down.
type Subscription struct {
	C    <-chan []Submission
	Errs <-chan error

	cancel func()
	once   sync.Once
}

func NewSubscription(c <-chan []Submission, errs <-chan error, cancel func()) *Subscription {
	return &Subscription{C: c, Errs: errs, cancel: cancel}
}

// Cancel stops the stream. It is idempotent and must always be invoked on
// teardown.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}
