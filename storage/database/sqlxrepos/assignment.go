package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/student"
)

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sqlx.DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	a.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO assignment (id, title, description, due_date, target_year, created_at)
		VALUES (:id, :title, :description, :due_date, :target_year, :created_at)`, a)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return a, nil
}

func (repo assignmentRepository) QueryAllAssignments(ctx context.Context) ([]assignment.Assignment, error) {
	assignments := make([]assignment.Assignment, 0)
	err := repo.db.SelectContext(ctx, &assignments, `SELECT * FROM assignment ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	return repo.populateSubmissions(ctx, assignments)
}

func (repo assignmentRepository) QueryAssignmentsByYear(ctx context.Context, year student.Year) ([]assignment.Assignment, error) {
	assignments := make([]assignment.Assignment, 0)
	err := repo.db.SelectContext(ctx, &assignments,
		`SELECT * FROM assignment WHERE target_year = $1 ORDER BY created_at DESC`, year)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments by year")
	}
	return repo.populateSubmissions(ctx, assignments)
}

func (repo assignmentRepository) GetAssignmentByID(ctx context.Context, id string) (assignment.Assignment, error) {
	var a assignment.Assignment
	if err := repo.db.GetContext(ctx, &a, `SELECT * FROM assignment WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "getting assignment by id")
	}

	populated, err := repo.populateSubmissions(ctx, []assignment.Assignment{a})
	if err != nil {
		return assignment.Assignment{}, err
	}
	return populated[0], nil
}

func (repo assignmentRepository) SetAssignmentYear(ctx context.Context, id string, year student.Year) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE assignment SET target_year = $2 WHERE id = $1`, id, year)
	if err != nil {
		return errors.Wrap(err, "updating assignment year")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assignment.ErrNotFound
	}
	return nil
}

func (repo assignmentRepository) DeleteAssignment(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM assignment WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assignment.ErrNotFound
	}
	return nil
}

func (repo assignmentRepository) CreateSubmission(ctx context.Context, sub assignment.Submission) (assignment.Submission, error) {
	sub.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO submission (id, assignment_id, student_id, file_name, original_name, submitted_at, grade, feedback, status)
		VALUES (:id, :assignment_id, :student_id, :file_name, :original_name, :submitted_at, :grade, :feedback, :status)`, sub)
	if err != nil {
		return assignment.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return sub, nil
}

func (repo assignmentRepository) UpdateSubmission(ctx context.Context, sub assignment.Submission) (assignment.Submission, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE submission
		SET file_name = :file_name, original_name = :original_name, submitted_at = :submitted_at,
			grade = :grade, feedback = :feedback, status = :status
		WHERE id = :id`, sub)
	if err != nil {
		return assignment.Submission{}, errors.Wrap(err, "updating submission")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assignment.Submission{}, assignment.ErrSubmissionNotFound
	}
	return sub, nil
}

func (repo assignmentRepository) GetSubmission(ctx context.Context, assignmentID, submissionID string) (assignment.Submission, error) {
	var sub assignment.Submission
	err := repo.db.GetContext(ctx, &sub,
		`SELECT * FROM submission WHERE id = $1 AND assignment_id = $2`, submissionID, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return assignment.Submission{}, assignment.ErrSubmissionNotFound
		}
		return assignment.Submission{}, errors.Wrap(err, "getting submission")
	}
	return sub, nil
}

// populateSubmissions attaches submissions (with their student info) to the
// given assignments.
func (repo assignmentRepository) populateSubmissions(ctx context.Context, assignments []assignment.Assignment) ([]assignment.Assignment, error) {
	if len(assignments) == 0 {
		return assignments, nil
	}

	ids := make([]string, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.ID)
	}

	query, args, err := sqlx.In(`SELECT * FROM submission WHERE assignment_id IN (?) ORDER BY submitted_at`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "building submissions query")
	}
	subs := make([]assignment.Submission, 0)
	if err = repo.db.SelectContext(ctx, &subs, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	if len(subs) == 0 {
		return assignments, nil
	}

	students, err := repo.submissionStudents(ctx, subs)
	if err != nil {
		return nil, err
	}

	byAssignment := make(map[string][]assignment.Submission, len(assignments))
	for _, sub := range subs {
		if st, ok := students[sub.StudentID]; ok {
			sub.Student = &st
		}
		byAssignment[sub.AssignmentID] = append(byAssignment[sub.AssignmentID], sub)
	}
	for i := range assignments {
		assignments[i].Submissions = byAssignment[assignments[i].ID]
	}
	return assignments, nil
}

func (repo assignmentRepository) submissionStudents(ctx context.Context, subs []assignment.Submission) (map[string]student.Student, error) {
	ids := make([]string, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.StudentID)
	}

	query, args, err := sqlx.In(`SELECT * FROM student WHERE id IN (?)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "building students query")
	}
	students := make([]student.Student, 0)
	if err = repo.db.SelectContext(ctx, &students, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying submission students")
	}

	byID := make(map[string]student.Student, len(students))
	for _, st := range students {
		byID[st.ID] = st
	}
	return byID, nil
}
