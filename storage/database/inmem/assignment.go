package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/student"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignment(_ context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	a.ID = uuid.New().String()
	stored := a
	stored.Submissions = nil
	repo.db.assignments[a.ID] = &stored
	return a, nil
}

func (repo *assignmentRepository) QueryAllAssignments(_ context.Context) ([]assignment.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(func(assignment.Assignment) bool { return true }), nil
}

func (repo *assignmentRepository) QueryAssignmentsByYear(_ context.Context, year student.Year) ([]assignment.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(func(a assignment.Assignment) bool { return a.TargetYear == year }), nil
}

func (repo *assignmentRepository) GetAssignmentByID(_ context.Context, id string) (assignment.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if a, ok := repo.db.assignments[id]; ok {
		populated := *a
		populated.Submissions = repo.submissionsFor(a.ID)
		return populated, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) SetAssignmentYear(_ context.Context, id string, year student.Year) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	a, ok := repo.db.assignments[id]
	if !ok {
		return assignment.ErrNotFound
	}
	a.TargetYear = year
	return nil
}

func (repo *assignmentRepository) DeleteAssignment(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.assignments[id]; !ok {
		return assignment.ErrNotFound
	}
	delete(repo.db.assignments, id)
	for subID, sub := range repo.db.submissions {
		if sub.AssignmentID == id {
			delete(repo.db.submissions, subID)
		}
	}
	return nil
}

func (repo *assignmentRepository) CreateSubmission(_ context.Context, sub assignment.Submission) (assignment.Submission, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sub.ID = uuid.New().String()
	stored := sub
	stored.Student = nil
	repo.db.submissions[sub.ID] = &stored
	return sub, nil
}

func (repo *assignmentRepository) UpdateSubmission(_ context.Context, sub assignment.Submission) (assignment.Submission, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.submissions[sub.ID]; !ok {
		return assignment.Submission{}, assignment.ErrSubmissionNotFound
	}
	stored := sub
	stored.Student = nil
	repo.db.submissions[sub.ID] = &stored
	return sub, nil
}

func (repo *assignmentRepository) GetSubmission(_ context.Context, assignmentID, submissionID string) (assignment.Submission, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sub, ok := repo.db.submissions[submissionID]; ok && sub.AssignmentID == assignmentID {
		return *sub, nil
	}
	return assignment.Submission{}, assignment.ErrSubmissionNotFound
}

// query returns matching assignments, newest first, with submissions populated.
// The caller must hold (at least) the read lock.
func (repo *assignmentRepository) query(match func(assignment.Assignment) bool) []assignment.Assignment {
	assignments := make([]assignment.Assignment, 0, len(repo.db.assignments))
	for _, a := range repo.db.assignments {
		if !match(*a) {
			continue
		}
		populated := *a
		populated.Submissions = repo.submissionsFor(a.ID)
		assignments = append(assignments, populated)
	}
	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].CreatedAt.After(assignments[j].CreatedAt)
	})
	return assignments
}

func (repo *assignmentRepository) submissionsFor(assignmentID string) []assignment.Submission {
	var subs []assignment.Submission
	for _, sub := range repo.db.submissions {
		if sub.AssignmentID != assignmentID {
			continue
		}
		populated := *sub
		if st, ok := repo.db.students[sub.StudentID]; ok {
			stCopy := *st
			populated.Student = &stCopy
		}
		subs = append(subs, populated)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].SubmittedAt.Before(subs[j].SubmittedAt) })
	return subs
}
