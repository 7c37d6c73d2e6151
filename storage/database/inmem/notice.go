package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/notice"
)

type noticeRepository struct {
	db *DB
}

var _ notice.Repository = (*noticeRepository)(nil) // interface compliance check

func NewNoticeRepository(db *DB) *noticeRepository {
	return &noticeRepository{db: db}
}

func (repo *noticeRepository) CreateNotice(_ context.Context, n notice.Notice) (notice.Notice, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	n.ID = uuid.New().String()
	repo.db.notices[n.ID] = &n
	return n, nil
}

func (repo *noticeRepository) QueryNotices(_ context.Context, category notice.Category) ([]notice.Notice, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	notices := make([]notice.Notice, 0, len(repo.db.notices))
	for _, n := range repo.db.notices {
		if category != "" && n.Category != category {
			continue
		}
		notices = append(notices, *n)
	}
	sort.Slice(notices, func(i, j int) bool { return notices[i].CreatedAt.After(notices[j].CreatedAt) })
	return notices, nil
}

func (repo *noticeRepository) GetNoticeByID(_ context.Context, id string) (notice.Notice, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if n, ok := repo.db.notices[id]; ok {
		return *n, nil
	}
	return notice.Notice{}, notice.ErrNotFound
}

func (repo *noticeRepository) UpdateNotice(_ context.Context, n notice.Notice) (notice.Notice, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.notices[n.ID]
	if !ok {
		return notice.Notice{}, notice.ErrNotFound
	}
	n.CreatedAt = orig.CreatedAt
	repo.db.notices[n.ID] = &n
	return n, nil
}

func (repo *noticeRepository) DeleteNotice(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.notices[id]; !ok {
		return notice.ErrNotFound
	}
	delete(repo.db.notices, id)
	return nil
}
