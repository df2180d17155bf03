package submission

import (
	"time"
)

// Classes is the fixed set of class codes a submission may belong to.
var Classes = []string{"9-A", "9-B", "9-C", "9-D", "9-E", "9-F", "9-G"}

// UntitledVideoTitle is persisted when no usable title survived the pipeline.
const UntitledVideoTitle = "Video Tanpa Judul"

// Submission is one student vlog entry. ID is repository-assigned at
// creation, stable and never reused. SubmittedAt never changes after
// creation. A nil Score is the sole "ungraded" signal; it is distinct from a
// score of zero, which is why optional fields are persisted by omission
// rather than as explicit nulls.
type Submission struct {
	ID          string    `json:"id" firestore:"-"`
	StudentName string    `json:"student_name" firestore:"studentName"`
	Class       string    `json:"class" firestore:"kelas"`
	RollNumber  string    `json:"roll_number" firestore:"noAbsen"`
	VideoURL    string    `json:"video_url" firestore:"videoUrl"`
	VideoID     string    `json:"video_id" firestore:"videoId"`
	VideoTitle  string    `json:"video_title" firestore:"videoTitle"`
	SubmittedAt time.Time `json:"submitted_at" firestore:"submittedAt"`
	AIFeedback  string    `json:"ai_feedback,omitempty" firestore:"aiFeedback"`
	Score       *int      `json:"score,omitempty" firestore:"score"`
	TeacherNote string    `json:"teacher_note,omitempty" firestore:"teacherFeedback"`
}

// Graded reports whether a teacher has scored this submission.
func (s Submission) Graded() bool { return s.Score != nil }

// NewSubmission holds the validated output of the intake pipeline, ready for
// persistence. SubmittedAt and ID are assigned by the service/repository.
type NewSubmission struct {
	StudentName string `json:"student_name" validate:"required"`
	Class       string `json:"class" validate:"required,class"`
	RollNumber  string `json:"roll_number" validate:"required"`
	VideoURL    string `json:"video_url" validate:"required"`
	VideoID     string `json:"video_id" validate:"required,len=11"`
	VideoTitle  string `json:"video_title"`
	AIFeedback  string `json:"ai_feedback"`
}

// Grade is a partial update of score and teacher note only.
type Grade struct {
	Score       int    `json:"score" validate:"min=0,max=100"`
	TeacherNote string `json:"teacher_note"`
}

// StudentUpdate is a partial correction of a submission's student metadata.
type StudentUpdate struct {
	StudentName string `json:"student_name" validate:"required"`
	Class       string `json:"class" validate:"required,class"`
	RollNumber  string `json:"roll_number" validate:"required"`
}

type SortOption string

const (
	SortNewest  SortOption = "newest"
	SortOldest  SortOption = "oldest"
	SortNameAsc SortOption = "name_asc"
)

// QueryFilter applies AND operation on available fields.
// Search does a case-insensitive match on one of StudentName, Class,
// RollNumber or VideoTitle.
type QueryFilter struct {
	Search string
	Class  string
	SortBy SortOption
}

// IsValidClass reports whether class is one of the fixed class codes.
func IsValidClass(class string) bool {
	for _, c := range Classes {
		if c == class {
			return true
		}
	}
	return false
}
