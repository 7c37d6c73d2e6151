package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/notice"
)

type noticeRepository struct {
	db *sqlx.DB
}

var _ notice.Repository = (*noticeRepository)(nil) // interface compliance check

func NewNoticeRepository(db *sqlx.DB) *noticeRepository {
	return &noticeRepository{db: db}
}

func (repo noticeRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notice.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo noticeRepository) CreateNotice(ctx context.Context, n notice.Notice) (notice.Notice, error) {
	n.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO notice (id, title, content, category, created_at, updated_at)
		VALUES (:id, :title, :content, :category, :created_at, :updated_at)`, n)
	if err != nil {
		return notice.Notice{}, errors.Wrap(err, "inserting notice")
	}
	return n, nil
}

func (repo noticeRepository) QueryNotices(ctx context.Context, category notice.Category) ([]notice.Notice, error) {
	query := `SELECT * FROM notice ORDER BY created_at DESC`
	args := make([]interface{}, 0, 1)
	if category != "" {
		query = `SELECT * FROM notice WHERE category = $1 ORDER BY created_at DESC`
		args = append(args, category)
	}

	notices := make([]notice.Notice, 0)
	if err := repo.db.SelectContext(ctx, &notices, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying notices")
	}
	return notices, nil
}

func (repo noticeRepository) GetNoticeByID(ctx context.Context, id string) (notice.Notice, error) {
	var n notice.Notice
	if err := repo.db.GetContext(ctx, &n, `SELECT * FROM notice WHERE id = $1`, id); err != nil {
		return notice.Notice{}, repo.trapNoRowsErr(err, "getting notice by id")
	}
	return n, nil
}

func (repo noticeRepository) UpdateNotice(ctx context.Context, n notice.Notice) (notice.Notice, error) {
	var updated notice.Notice
	err := repo.db.GetContext(ctx, &updated, `
		UPDATE notice SET title = $2, content = $3, category = $4, updated_at = $5
		WHERE id = $1 RETURNING *`,
		n.ID, n.Title, n.Content, n.Category, n.UpdatedAt)
	if err != nil {
		return notice.Notice{}, repo.trapNoRowsErr(err, "updating notice")
	}
	return updated, nil
}

func (repo noticeRepository) DeleteNotice(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM notice WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting notice")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notice.ErrNotFound
	}
	return nil
}
