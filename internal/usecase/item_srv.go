package usecase

import (
	"context"
	"fmt"
	"time"

	"starter-api/internal/data/entity"
	"starter-api/internal/data/repository"
	"starter-api/internal/dto/request"
	"starter-api/internal/dto/response"
	"starter-api/pkg/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Actor is the authenticated caller.
type Actor struct {
	UserID uuid.UUID
	Role   entity.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == entity.RoleAdmin
}

type ItemService interface {
	List(ctx context.Context, actor Actor, page request.PageQuery) (*response.ItemsResponse, error)
	Create(ctx context.Context, actor Actor, req *request.ItemCreateRequest) (*response.ItemResponse, error)
	CreateForUser(ctx context.Context, ownerID uuid.UUID, req *request.ItemCreateRequest) (*response.ItemResponse, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*response.ItemResponse, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req *request.ItemUpdateRequest) (*response.ItemResponse, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type itemService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewItemService(repo *repository.Repository, log *zap.Logger) ItemService {
	return &itemService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// List shows admins every item and everyone else their own.
func (s *itemService) List(ctx context.Context, actor Actor, page request.PageQuery) (*response.ItemsResponse, error) {
	var (
		items []*entity.Item
		err   error
	)
	if actor.IsAdmin() {
		items, err = s.repo.Item.FindAll(ctx, page.Skip, page.Limit)
	} else {
		items, err = s.repo.Item.FindByOwner(ctx, actor.UserID, page.Skip, page.Limit)
	}
	if err != nil {
		return nil, err
	}

	resp := response.ItemsToResponse(items)
	return &resp, nil
}

func (s *itemService) Create(ctx context.Context, actor Actor, req *request.ItemCreateRequest) (*response.ItemResponse, error) {
	return s.create(ctx, actor.UserID, req)
}

func (s *itemService) CreateForUser(ctx context.Context, ownerID uuid.UUID, req *request.ItemCreateRequest) (*response.ItemResponse, error) {
	owner, err := s.repo.User.FindByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, fmt.Errorf("%w: user %s", apperror.ErrNotFound, ownerID.String())
	}

	return s.create(ctx, ownerID, req)
}

func (s *itemService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*response.ItemResponse, error) {
	item, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	resp := response.ItemToResponse(item)
	return &resp, nil
}

func (s *itemService) Update(ctx context.Context, actor Actor, id uuid.UUID, req *request.ItemUpdateRequest) (*response.ItemResponse, error) {
	item, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	item.UpdatedAt = s.now().UTC()

	if err := s.repo.Item.Update(ctx, item); err != nil {
		return nil, err
	}

	resp := response.ItemToResponse(item)
	return &resp, nil
}

func (s *itemService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}

	if err := s.repo.Item.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("Item deleted", zap.String("item_id", id.String()))
	return nil
}

func (s *itemService) create(ctx context.Context, ownerID uuid.UUID, req *request.ItemCreateRequest) (*response.ItemResponse, error) {
	now := s.now().UTC()
	item := &entity.Item{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:       req.Title,
		Description: req.Description,
		UserID:      ownerID,
	}

	if err := s.repo.Item.Create(ctx, item); err != nil {
		return nil, err
	}

	resp := response.ItemToResponse(item)
	return &resp, nil
}

// owned loads an item the actor may touch: admins any, others their own.
func (s *itemService) owned(ctx context.Context, actor Actor, id uuid.UUID) (*entity.Item, error) {
	item, err := s.repo.Item.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: item %s", apperror.ErrNotFound, id.String())
	}
	if !actor.IsAdmin() && item.UserID != actor.UserID {
		s.log.Warn("Item access denied",
			zap.String("item_id", id.String()),
			zap.String("user_id", actor.UserID.String()),
		)
		return nil, fmt.Errorf("%w: not enough permissions", apperror.ErrForbidden)
	}
	return item, nil
}
