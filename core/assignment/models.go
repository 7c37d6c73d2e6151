package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
)

// Submission statuses
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusGraded    Status = "graded"
)

type (
	Assignment struct {
		ID          string       `json:"id" db:"id"`
		Title       string       `json:"title" db:"title"`
		Description string       `json:"description" db:"description"`
		DueDate     time.Time    `json:"due_date" db:"due_date"`
		TargetYear  student.Year `json:"target_year" db:"target_year"`
		CreatedAt   time.Time    `json:"created_at" db:"created_at"` // UTC
		Submissions []Submission `json:"submissions,omitempty" db:"-"`
	}

	Submission struct {
		ID           string    `json:"id" db:"id"`
		AssignmentID string    `json:"-" db:"assignment_id"`
		StudentID    string    `json:"-" db:"student_id"`
		FileName     string    `json:"file_name" db:"file_name"`
		OriginalName string    `json:"original_name" db:"original_name"`
		SubmittedAt  time.Time `json:"submitted_at" db:"submitted_at"` // UTC
		Grade        null.Int  `json:"grade" db:"grade"`
		Feedback     null.String `json:"feedback" db:"feedback"`
		Status       Status    `json:"status" db:"status"`

		// Student is populated on admin listings only.
		Student *student.Student `json:"student,omitempty" db:"-"`
	}

	// StudentAssignment is an assignment as seen by one student: the
	// submissions list is folded into that student's own submission state.
	StudentAssignment struct {
		ID           string       `json:"id"`
		Title        string       `json:"title"`
		Description  string       `json:"description"`
		DueDate      time.Time    `json:"due_date"`
		TargetYear   student.Year `json:"target_year"`
		Submitted    bool         `json:"submitted"`
		FileName     null.String  `json:"file_name"`
		OriginalName null.String  `json:"original_name"`
		SubmittedAt  null.Time    `json:"submitted_at"`
		Grade        null.Int     `json:"grade"`
		Feedback     null.String  `json:"feedback"`
	}
)

// studentView folds a's submissions into the given student's view of it.
func (a Assignment) studentView(studentID string) StudentAssignment {
	sa := StudentAssignment{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		DueDate:     a.DueDate,
		TargetYear:  a.TargetYear,
	}
	for _, sub := range a.Submissions {
		if sub.StudentID == studentID {
			sa.Submitted = true
			sa.FileName = null.StringFrom(sub.FileName)
			sa.OriginalName = null.StringFrom(sub.OriginalName)
			sa.SubmittedAt = null.TimeFrom(sub.SubmittedAt)
			sa.Grade = sub.Grade
			sa.Feedback = sub.Feedback
			break
		}
	}
	return sa
}

// NewAssignment contains information needed to publish a new Assignment.
type NewAssignment struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	DueDate     time.Time `json:"due_date" validate:"required"`
	TargetYear  string    `json:"target_year" validate:"required,year"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	return validate.Struct(na)
}

// GradeSubmission contains a grade and optional feedback for a submission.
type GradeSubmission struct {
	Grade    int    `json:"grade" validate:"min=0,max=100"`
	Feedback string `json:"feedback"`
}

func (gs *GradeSubmission) Validate(validate *validator.Validate) error {
	return validate.Struct(gs)
}
