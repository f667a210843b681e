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
	"starter-api/pkg/mailer"
	"starter-api/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	List(ctx context.Context, page request.PageQuery, withArchived bool) (*response.UsersResponse, error)
	Create(ctx context.Context, req *request.UserCreateRequest, role entity.UserRole) (*response.UserResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*response.UserResponse, error)
	UpdateMe(ctx context.Context, id uuid.UUID, req *request.UserUpdateRequest) (*response.UserResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *request.UserAdminUpdateRequest) (*response.UserResponse, error)
	Archive(ctx context.Context, id uuid.UUID) (*response.UserResponse, error)
	Unarchive(ctx context.Context, id uuid.UUID) (*response.UserResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	repo *repository.Repository
	mail mailer.Sender
	log  *zap.Logger
	now  func() time.Time
}

func NewUserService(repo *repository.Repository, mail mailer.Sender, log *zap.Logger) UserService {
	return &userService{
		repo: repo,
		mail: mail,
		log:  log,
		now:  time.Now,
	}
}

func (s *userService) List(ctx context.Context, page request.PageQuery, withArchived bool) (*response.UsersResponse, error) {
	users, err := s.repo.User.FindAll(ctx, page.Skip, page.Limit, withArchived)
	if err != nil {
		return nil, err
	}

	resp := response.UsersToResponse(users)
	return &resp, nil
}

// Create is the admin path: any role may be assigned and the new user is
// notified by email.
func (s *userService) Create(ctx context.Context, req *request.UserCreateRequest, role entity.UserRole) (*response.UserResponse, error) {
	email := utils.NormalizeEmail(req.Email)

	existing, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: the user with this email already exists in the system", apperror.ErrConflict)
	}

	now := s.now().UTC()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email:     email,
		Role:      role,
		Language:  entity.LanguageEN,
		Provider:  entity.ProviderEmail,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
		City:      req.City,
		Postcode:  req.Postcode,
		State:     req.State,
	}
	if req.Language != "" {
		user.Language = entity.Language(req.Language)
	}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = &hash
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		return nil, err
	}

	go sendEmail(s.mail, s.log, mailer.KindNewAccount, user.Email, nil)

	s.log.Info("User created by admin",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(role)),
	)

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*response.UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *userService) UpdateMe(ctx context.Context, id uuid.UUID, req *request.UserUpdateRequest) (*response.UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.applyUpdate(ctx, user, req); err != nil {
		return nil, err
	}

	return s.save(ctx, user)
}

func (s *userService) Update(ctx context.Context, id uuid.UUID, req *request.UserAdminUpdateRequest) (*response.UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.applyUpdate(ctx, user, &req.UserUpdateRequest); err != nil {
		return nil, err
	}
	if req.Role != nil {
		user.Role = entity.UserRole(*req.Role)
	}
	if req.Confirmed != nil {
		user.Confirmed = *req.Confirmed
	}

	return s.save(ctx, user)
}

func (s *userService) Archive(ctx context.Context, id uuid.UUID) (*response.UserResponse, error) {
	return s.setArchived(ctx, id, true)
}

func (s *userService) Unarchive(ctx context.Context, id uuid.UUID) (*response.UserResponse, error) {
	return s.setArchived(ctx, id, false)
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.User.Delete(ctx, id)
}

// ==================== HELPER METHODS ====================

func (s *userService) find(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.repo.User.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", apperror.ErrNotFound, id.String())
	}
	return user, nil
}

func (s *userService) setArchived(ctx context.Context, id uuid.UUID, archived bool) (*response.UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Archived = archived
	return s.save(ctx, user)
}

func (s *userService) applyUpdate(ctx context.Context, user *entity.User, req *request.UserUpdateRequest) error {
	if req.Email != nil {
		email := utils.NormalizeEmail(*req.Email)
		if email != user.Email {
			other, err := s.repo.User.FindByEmail(ctx, email)
			if err != nil {
				return err
			}
			if other != nil && other.ID != user.ID {
				return fmt.Errorf("%w: user with this email already exists", apperror.ErrConflict)
			}
			user.Email = email
		}
	}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = &hash
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Language != nil {
		user.Language = entity.Language(*req.Language)
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Address != nil {
		user.Address = req.Address
	}
	if req.City != nil {
		user.City = req.City
	}
	if req.Postcode != nil {
		user.Postcode = req.Postcode
	}
	if req.State != nil {
		user.State = req.State
	}
	return nil
}

func (s *userService) save(ctx context.Context, user *entity.User) (*response.UserResponse, error) {
	user.UpdatedAt = s.now().UTC()
	if err := s.repo.User.Update(ctx, user); err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}
