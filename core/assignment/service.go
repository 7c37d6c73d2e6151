package assignment

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
)

var (
	// errors
	ErrNotFound           = errors.New("assignment not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrDeadlinePassed     = errors.New("assignment submission deadline has passed")
	ErrFileType           = errors.New("invalid file type. Only PDF, DOC, and DOCX files are allowed")

	allowedExtensions = []string{".pdf", ".doc", ".docx"}
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		// QueryAllAssignments returns all assignments, newest first, with
		// submissions and their student info populated.
		QueryAllAssignments(ctx context.Context) ([]Assignment, error)
		QueryAssignmentsByYear(ctx context.Context, year student.Year) ([]Assignment, error)
		GetAssignmentByID(ctx context.Context, id string) (Assignment, error)
		SetAssignmentYear(ctx context.Context, id string, year student.Year) error
		DeleteAssignment(ctx context.Context, id string) error

		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		UpdateSubmission(ctx context.Context, sub Submission) (Submission, error)
		GetSubmission(ctx context.Context, assignmentID, submissionID string) (Submission, error)
	}

	// Upload is an incoming submission file.
	Upload struct {
		Content      io.Reader
		OriginalName string
	}

	Service struct {
		repo  Repository
		files core.FileStore
	}
)

func NewService(repo Repository, files core.FileStore) *Service {
	return &Service{repo: repo, files: files}
}

func (svc *Service) Create(ctx context.Context, na NewAssignment) (Assignment, error) {
	a := Assignment{
		Title:       na.Title,
		Description: na.Description,
		DueDate:     na.DueDate.UTC(),
		TargetYear:  student.Year(na.TargetYear),
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateAssignment(ctx, a)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Assignment, error) {
	return svc.repo.QueryAllAssignments(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

// QueryForStudent returns the assignments targeting the student's year, each
// folded down to that student's own submission state.
func (svc *Service) QueryForStudent(ctx context.Context, st student.Student) ([]StudentAssignment, error) {
	assignments, err := svc.repo.QueryAssignmentsByYear(ctx, st.Year)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments by year")
	}
	views := make([]StudentAssignment, 0, len(assignments))
	for _, a := range assignments {
		views = append(views, a.studentView(st.ID))
	}
	return views, nil
}

// Submit stores the uploaded file and records the student's submission.
// A re-submission replaces the stored file and resets any previous grade.
func (svc *Service) Submit(ctx context.Context, assignmentID string, st student.Student, up Upload) (Submission, error) {
	ext := strings.ToLower(filepath.Ext(up.OriginalName))
	if !extAllowed(ext) {
		return Submission{}, ErrFileType
	}

	a, err := svc.repo.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return Submission{}, err
	}
	if a.DueDate.Before(time.Now()) {
		return Submission{}, ErrDeadlinePassed
	}

	fileName, err := svc.files.Save(up.Content, ext)
	if err != nil {
		return Submission{}, errors.Wrap(err, "saving submission file")
	}

	now := time.Now().UTC()
	for _, sub := range a.Submissions {
		if sub.StudentID != st.ID {
			continue
		}
		// replace the previous file and reset the grade
		if err = svc.files.Remove(sub.FileName); err != nil {
			svc.removeQuietly(fileName)
			return Submission{}, errors.Wrap(err, "removing previous submission file")
		}
		sub.FileName = fileName
		sub.OriginalName = up.OriginalName
		sub.SubmittedAt = now
		sub.Grade = null.Int{}
		sub.Feedback = null.String{}
		sub.Status = StatusSubmitted
		sub.Student = nil
		return svc.repo.UpdateSubmission(ctx, sub)
	}

	return svc.repo.CreateSubmission(ctx, Submission{
		AssignmentID: a.ID,
		StudentID:    st.ID,
		FileName:     fileName,
		OriginalName: up.OriginalName,
		SubmittedAt:  now,
		Status:       StatusSubmitted,
	})
}

func (svc *Service) Grade(ctx context.Context, assignmentID, submissionID string, gs GradeSubmission) (Submission, error) {
	sub, err := svc.repo.GetSubmission(ctx, assignmentID, submissionID)
	if err != nil {
		return Submission{}, err
	}
	sub.Grade = null.IntFrom(gs.Grade)
	sub.Feedback = null.NewString(gs.Feedback, gs.Feedback != "")
	sub.Status = StatusGraded
	sub.Student = nil
	return svc.repo.UpdateSubmission(ctx, sub)
}

// FindSubmissionByFile locates the submission holding the given stored file
// name within an assignment. Used for download access control.
func (svc *Service) FindSubmissionByFile(ctx context.Context, assignmentID, fileName string) (Submission, error) {
	a, err := svc.repo.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return Submission{}, err
	}
	for _, sub := range a.Submissions {
		if sub.FileName == fileName {
			return sub, nil
		}
	}
	return Submission{}, ErrSubmissionNotFound
}

func (svc *Service) OpenFile(name string) (io.ReadCloser, error) {
	return svc.files.Open(name)
}

// Delete removes an assignment along with all its submitted files.
func (svc *Service) Delete(ctx context.Context, id string) error {
	a, err := svc.repo.GetAssignmentByID(ctx, id)
	if err != nil {
		return err
	}
	for _, sub := range a.Submissions {
		svc.removeQuietly(sub.FileName)
	}
	return svc.repo.DeleteAssignment(ctx, a.ID)
}

type (
	FixResult struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Original string `json:"original"`
		Fixed    string `json:"fixed"`
	}

	FixReport struct {
		Total   int         `json:"totalAssignments"`
		Fixed   int         `json:"fixedCount"`
		Results []FixResult `json:"results"`
	}
)

// FixTargetYears normalizes legacy target-year labels across all
// assignments. It is idempotent: a second run fixes nothing.
func (svc *Service) FixTargetYears(ctx context.Context) (FixReport, error) {
	assignments, err := svc.repo.QueryAllAssignments(ctx)
	if err != nil {
		return FixReport{}, errors.Wrap(err, "querying assignments")
	}

	report := FixReport{Total: len(assignments), Results: []FixResult{}}
	for _, a := range assignments {
		fixed := student.NormalizeYear(string(a.TargetYear))
		if fixed == a.TargetYear {
			continue
		}
		if err = svc.repo.SetAssignmentYear(ctx, a.ID, fixed); err != nil {
			return FixReport{}, errors.Wrapf(err, "fixing assignment %s", a.ID)
		}
		report.Fixed++
		report.Results = append(report.Results, FixResult{
			ID:       a.ID,
			Title:    a.Title,
			Original: string(a.TargetYear),
			Fixed:    string(fixed),
		})
	}
	return report, nil
}

func (svc *Service) removeQuietly(fileName string) {
	_ = svc.files.Remove(fileName)
}

func extAllowed(ext string) bool {
	for _, e := range allowedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
