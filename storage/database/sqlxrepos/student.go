package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/student"
)

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to student.ErrNotFound
func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) CheckUniqueness(ctx context.Context, name, email string, excluded ...student.Student) error {
	query := `SELECT name, email FROM student WHERE (name = ? OR email = ?)`
	args := []interface{}{name, email}

	if len(excluded) > 0 {
		ids := make([]string, 0, len(excluded))
		for _, st := range excluded {
			ids = append(ids, st.ID)
		}
		q, inArgs, err := sqlx.In(` AND id NOT IN (?)`, ids)
		if err != nil {
			return errors.Wrap(err, "building exclusion clause")
		}
		query += q
		args = append(args, inArgs...)
	}

	var match struct {
		Name  string `db:"name"`
		Email string `db:"email"`
	}
	err := repo.db.GetContext(ctx, &match, repo.db.Rebind(query+` LIMIT 1`), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "checking student uniqueness")
	}
	if match.Name == name {
		return student.ErrNameExists
	}
	return student.ErrEmailExists
}

func (repo studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	st.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO student (id, name, email, password_hash, year, created_at, updated_at)
		VALUES (:id, :name, :email, :password_hash, :year, :created_at, :updated_at)`, st)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return st, nil
}

func (repo studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	students := make([]student.Student, 0)
	err := repo.db.SelectContext(ctx, &students, `SELECT * FROM student ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return students, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var st student.Student
	if err := repo.db.GetContext(ctx, &st, `SELECT * FROM student WHERE id = $1`, id); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "getting student by id")
	}
	return st, nil
}

func (repo studentRepository) GetStudentByName(ctx context.Context, name string) (student.Student, error) {
	var st student.Student
	if err := repo.db.GetContext(ctx, &st, `SELECT * FROM student WHERE name = $1`, name); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "getting student by name")
	}
	return st, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	query := `UPDATE student SET name = $2, email = $3, year = $4, updated_at = $5 WHERE id = $1 RETURNING *`
	args := []interface{}{st.ID, st.Name, st.Email, st.Year, st.UpdatedAt}
	if len(st.PasswordHash) > 0 {
		query = `UPDATE student SET name = $2, email = $3, year = $4, updated_at = $5, password_hash = $6
			WHERE id = $1 RETURNING *`
		args = append(args, st.PasswordHash)
	}

	var updated student.Student
	if err := repo.db.GetContext(ctx, &updated, query, args...); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "updating student")
	}
	return updated, nil
}

func (repo studentRepository) DeleteStudent(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM student WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.ErrNotFound
	}
	return nil
}
