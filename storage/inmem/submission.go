package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"vlogvalidator/core/submission"
)

type submissionRepository struct {
	db *submissionTable
}

func NewSubmissionRepository(db *DB) submission.Repository {
	return &submissionRepository{db: db.submissions}
}

// query returns the snapshot ordered by SubmittedAt descending.
// Callers must hold at least a read lock.
func (repo *submissionRepository) query() []submission.Submission {
	subs := make([]submission.Submission, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		subs = append(subs, *s)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].SubmittedAt.After(subs[j].SubmittedAt) })
	return subs
}

// notify pushes a fresh snapshot to every subscriber. Callers must hold the
// write lock. Slow subscribers drop snapshots rather than blocking writes.
func (repo *submissionRepository) notify() {
	snapshot := repo.query()
	for _, ch := range repo.db.subscribers {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

func (repo *submissionRepository) CreateSubmission(_ context.Context, sub submission.Submission) (submission.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sub.ID = uuid.NewString()
	repo.db.table[sub.ID] = &sub
	repo.notify()
	return sub, nil
}

func (repo *submissionRepository) QueryAllSubmissions(context.Context) ([]submission.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *submissionRepository) UpdateGrade(_ context.Context, id string, score int, note string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	sub, ok := repo.db.table[id]
	if !ok {
		return submission.ErrNotFound
	}
	sub.Score = &score
	sub.TeacherNote = note
	repo.notify()
	return nil
}

func (repo *submissionRepository) UpdateStudent(_ context.Context, id, name, class, roll string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	sub, ok := repo.db.table[id]
	if !ok {
		return submission.ErrNotFound
	}
	sub.StudentName = name
	sub.Class = class
	sub.RollNumber = roll
	repo.notify()
	return nil
}

func (repo *submissionRepository) DeleteSubmission(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return submission.ErrNotFound
	}
	delete(repo.db.table, id)
	repo.notify()
	return nil
}

func (repo *submissionRepository) DeleteAllSubmissions(context.Context) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if len(repo.db.table) == 0 {
		return nil
	}
	repo.db.table = make(map[string]*submission.Submission)
	repo.notify()
	return nil
}

func (repo *submissionRepository) Subscribe(context.Context) (*submission.Subscription, error) {
	ch := make(chan []submission.Submission, 16)
	errs := make(chan error, 1)

	repo.db.Lock()
	id := repo.db.nextSubID
	repo.db.nextSubID++
	repo.db.subscribers[id] = ch
	ch <- repo.query() // initial snapshot
	repo.db.Unlock()

	cancel := func() {
		repo.db.Lock()
		delete(repo.db.subscribers, id)
		repo.db.Unlock()
	}
	return submission.NewSubscription(ch, errs, cancel), nil
}
