package notice

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("notice not found")

type (
	Repository interface {
		CreateNotice(ctx context.Context, n Notice) (Notice, error)
		// QueryNotices returns notices, newest first, optionally filtered by category.
		QueryNotices(ctx context.Context, category Category) ([]Notice, error)
		GetNoticeByID(ctx context.Context, id string) (Notice, error)
		UpdateNotice(ctx context.Context, n Notice) (Notice, error)
		DeleteNotice(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nn NewNotice) (Notice, error) {
	now := time.Now().UTC()
	return svc.repo.CreateNotice(ctx, Notice{
		Title:     nn.Title,
		Content:   nn.Content,
		Category:  Category(nn.Category),
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) Query(ctx context.Context, category Category) ([]Notice, error) {
	return svc.repo.QueryNotices(ctx, category)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Notice, error) {
	return svc.repo.GetNoticeByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, un UpdateNotice) (Notice, error) {
	return svc.repo.UpdateNotice(ctx, Notice{
		ID:        id,
		Title:     un.Title,
		Content:   un.Content,
		Category:  Category(un.Category),
		UpdatedAt: time.Now().UTC(),
	})
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteNotice(ctx, id)
}
