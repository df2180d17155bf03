package firestoredb

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"vlogvalidator/core"
	"vlogvalidator/core/submission"
)

// Open connects to the Firestore project configured in conf.
func Open(ctx context.Context, conf *core.Config) (*firestore.Client, error) {
	var opts []option.ClientOption
	if conf.Store.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(conf.Store.CredentialsFile))
	}
	client, err := firestore.NewClient(ctx, conf.Store.ProjectID, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "opening Firestore client")
	}
	return client, nil
}

type submissionRepository struct {
	client *firestore.Client
	col    *firestore.CollectionRef
	logger core.Logger
}

func NewSubmissionRepository(client *firestore.Client, conf *core.Config, logger core.Logger) submission.Repository {
	return &submissionRepository{
		client: client,
		col:    client.Collection(conf.Store.Collection),
		logger: logger,
	}
}

// translate maps store errors onto the submission error taxonomy.
func translate(err error) error {
	switch status.Code(errors.Cause(err)) {
	case codes.PermissionDenied:
		return submission.ErrPermissionDenied
	case codes.NotFound:
		return submission.ErrNotFound
	case codes.DeadlineExceeded:
		return submission.ErrWriteTimeout
	}
	return err
}

// CreateSubmission inserts via a field map so absent optional fields are
// omitted from the document rather than stored as nulls.
func (repo *submissionRepository) CreateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	data := map[string]interface{}{
		"studentName": sub.StudentName,
		"kelas":       sub.Class,
		"noAbsen":     sub.RollNumber,
		"videoUrl":    sub.VideoURL,
		"videoId":     sub.VideoID,
		"videoTitle":  sub.VideoTitle,
		"submittedAt": sub.SubmittedAt,
		"status":      "valid",
	}
	if sub.AIFeedback != "" {
		data["aiFeedback"] = sub.AIFeedback
	}
	if sub.Score != nil {
		data["score"] = *sub.Score
	}
	if sub.TeacherNote != "" {
		data["teacherFeedback"] = sub.TeacherNote
	}

	ref, _, err := repo.col.Add(ctx, data)
	if err != nil {
		return submission.Submission{}, translate(errors.Wrap(err, "adding submission document"))
	}
	sub.ID = ref.ID
	return sub, nil
}

func (repo *submissionRepository) QueryAllSubmissions(ctx context.Context) ([]submission.Submission, error) {
	docs, err := repo.col.OrderBy("submittedAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, translate(errors.Wrap(err, "querying submissions"))
	}
	return docsToSubmissions(docs)
}

func (repo *submissionRepository) UpdateGrade(ctx context.Context, id string, score int, note string) error {
	_, err := repo.col.Doc(id).Update(ctx, []firestore.Update{
		{Path: "score", Value: score},
		{Path: "teacherFeedback", Value: note},
	})
	if err != nil {
		return translate(errors.Wrap(err, "updating grade"))
	}
	return nil
}

func (repo *submissionRepository) UpdateStudent(ctx context.Context, id, name, class, roll string) error {
	_, err := repo.col.Doc(id).Update(ctx, []firestore.Update{
		{Path: "studentName", Value: name},
		{Path: "kelas", Value: class},
		{Path: "noAbsen", Value: roll},
	})
	if err != nil {
		return translate(errors.Wrap(err, "updating student data"))
	}
	return nil
}

func (repo *submissionRepository) DeleteSubmission(ctx context.Context, id string) error {
	if _, err := repo.col.Doc(id).Delete(ctx); err != nil {
		return translate(errors.Wrap(err, "deleting submission"))
	}
	return nil
}

// DeleteAllSubmissions commits a single atomic batch (bounded by the store's
// 500-operation batch ceiling); either the whole batch lands or none does.
func (repo *submissionRepository) DeleteAllSubmissions(ctx context.Context) error {
	docs, err := repo.col.Documents(ctx).GetAll()
	if err != nil {
		return translate(errors.Wrap(err, "listing submissions for batch delete"))
	}
	if len(docs) == 0 {
		return nil
	}

	batch := repo.client.Batch()
	for _, doc := range docs {
		batch.Delete(doc.Ref)
	}
	if _, err = batch.Commit(ctx); err != nil {
		return translate(errors.Wrap(err, "committing batch delete"))
	}
	return nil
}

// Subscribe opens a snapshot listener on the ordered collection and forwards
// each full snapshot. Authorization failures are forwarded on the error
// channel without tearing the listener down; everything stops when the
// subscription is cancelled.
func (repo *submissionRepository) Subscribe(ctx context.Context) (*submission.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan []submission.Submission, 16)
	errs := make(chan error, 4)

	it := repo.col.OrderBy("submittedAt", firestore.Desc).Snapshots(ctx)

	go func() {
		defer it.Stop()
		defer close(ch)
		for {
			snap, err := it.Next()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				select {
				case errs <- translate(err):
				default:
				}
				if status.Code(errors.Cause(err)) == codes.PermissionDenied {
					// callers clear cached state; nothing more to stream
					return
				}
				repo.logger.Error(fmt.Sprintf("submission snapshot listener: %v", err), err)
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				select {
				case errs <- translate(err):
				default:
				}
				continue
			}
			subs, err := docsToSubmissions(docs)
			if err != nil {
				repo.logger.Error(fmt.Sprintf("decoding snapshot: %v", err), err)
				continue
			}
			select {
			case ch <- subs:
			case <-ctx.Done():
				return
			}
		}
	}()

	return submission.NewSubscription(ch, errs, cancel), nil
}

func docsToSubmissions(docs []*firestore.DocumentSnapshot) ([]submission.Submission, error) {
	subs := make([]submission.Submission, 0, len(docs))
	for _, doc := range docs {
		var sub submission.Submission
		if err := doc.DataTo(&sub); err != nil {
			return nil, errors.Wrapf(err, "decoding submission %s", doc.Ref.ID)
		}
		sub.ID = doc.Ref.ID
		subs = append(subs, sub)
	}
	return subs, nil
}
