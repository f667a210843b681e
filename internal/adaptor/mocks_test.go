package adaptor

import (
	"context"

	"starter-api/internal/data/entity"
	"starter-api/internal/dto/request"
	"starter-api/internal/dto/response"
	"starter-api/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, req *request.RegisterRequest) (*response.LoginResponse, error) {
	args := m.Called(ctx, req)
	return loginResult(args)
}

func (m *mockAuthService) Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error) {
	args := m.Called(ctx, req)
	return loginResult(args)
}

func (m *mockAuthService) RequestOTP(ctx context.Context, req *request.OTPRequest) (*response.MessageResponse, error) {
	args := m.Called(ctx, req)
	return messageResult(args)
}

func (m *mockAuthService) VerifyOTP(ctx context.Context, req *request.OTPVerifyRequest) (*response.LoginResponse, error) {
	args := m.Called(ctx, req)
	return loginResult(args)
}

func (m *mockAuthService) Refresh(ctx context.Context, req *request.RefreshRequest) (*response.LoginResponse, error) {
	args := m.Called(ctx, req)
	return loginResult(args)
}

func (m *mockAuthService) TestToken(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	args := m.Called(ctx, userID)
	return userResult(args)
}

func (m *mockAuthService) RecoverPassword(ctx context.Context, email string) (*response.MessageResponse, error) {
	args := m.Called(ctx, email)
	return messageResult(args)
}

func (m *mockAuthService) ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) (*response.MessageResponse, error) {
	args := m.Called(ctx, req)
	return messageResult(args)
}

func (m *mockAuthService) SSOLoginURL(ctx context.Context, provider, returnURL string) (string, error) {
	args := m.Called(ctx, provider, returnURL)
	return args.String(0), args.Error(1)
}

func (m *mockAuthService) SSOCallback(ctx context.Context, provider, code, state string) (string, error) {
	args := m.Called(ctx, provider, code, state)
	return args.String(0), args.Error(1)
}

func (m *mockAuthService) SSOConfirm(ctx context.Context, req *request.SSOConfirmRequest) (*response.LoginResponse, error) {
	args := m.Called(ctx, req)
	return loginResult(args)
}

func (m *mockAuthService) GenerateReviewerOTP(ctx context.Context) (*response.OTPResponse, error) {
	args := m.Called(ctx)
	return otpResult(args)
}

func (m *mockAuthService) DeleteReviewerOTP(ctx context.Context) (*response.OTPResponse, error) {
	args := m.Called(ctx)
	return otpResult(args)
}

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) List(ctx context.Context, page request.PageQuery, withArchived bool) (*response.UsersResponse, error) {
	args := m.Called(ctx, page, withArchived)
	if v := args.Get(0); v != nil {
		return v.(*response.UsersResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserService) Create(ctx context.Context, req *request.UserCreateRequest, role entity.UserRole) (*response.UserResponse, error) {
	args := m.Called(ctx, req, role)
	return userResult(args)
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*response.UserResponse, error) {
	args := m.Called(ctx, id)
	return userResult(args)
}

func (m *mockUserService) UpdateMe(ctx context.Context, id uuid.UUID, req *request.UserUpdateRequest) (*response.UserResponse, error) {
	args := m.Called(ctx, id, req)
	return userResult(args)
}

func (m *mockUserService) Update(ctx context.Context, id uuid.UUID, req *request.UserAdminUpdateRequest) (*response.UserResponse, error) {
	args := m.Called(ctx, id, req)
	return userResult(args)
}

func (m *mockUserService) Archive(ctx context.Context, id uuid.UUID) (*response.UserResponse, error) {
	args := m.Called(ctx, id)
	return userResult(args)
}

func (m *mockUserService) Unarchive(ctx context.Context, id uuid.UUID) (*response.UserResponse, error) {
	args := m.Called(ctx, id)
	return userResult(args)
}

func (m *mockUserService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockItemService struct {
	mock.Mock
}

func (m *mockItemService) List(ctx context.Context, actor usecase.Actor, page request.PageQuery) (*response.ItemsResponse, error) {
	args := m.Called(ctx, actor, page)
	if v := args.Get(0); v != nil {
		return v.(*response.ItemsResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockItemService) Create(ctx context.Context, actor usecase.Actor, req *request.ItemCreateRequest) (*response.ItemResponse, error) {
	args := m.Called(ctx, actor, req)
	return itemResult(args)
}

func (m *mockItemService) CreateForUser(ctx context.Context, ownerID uuid.UUID, req *request.ItemCreateRequest) (*response.ItemResponse, error) {
	args := m.Called(ctx, ownerID, req)
	return itemResult(args)
}

func (m *mockItemService) Get(ctx context.Context, actor usecase.Actor, id uuid.UUID) (*response.ItemResponse, error) {
	args := m.Called(ctx, actor, id)
	return itemResult(args)
}

func (m *mockItemService) Update(ctx context.Context, actor usecase.Actor, id uuid.UUID, req *request.ItemUpdateRequest) (*response.ItemResponse, error) {
	args := m.Called(ctx, actor, id, req)
	return itemResult(args)
}

func (m *mockItemService) Delete(ctx context.Context, actor usecase.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func loginResult(args mock.Arguments) (*response.LoginResponse, error) {
	if v := args.Get(0); v != nil {
		return v.(*response.LoginResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func messageResult(args mock.Arguments) (*response.MessageResponse, error) {
	if v := args.Get(0); v != nil {
		return v.(*response.MessageResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func userResult(args mock.Arguments) (*response.UserResponse, error) {
	if v := args.Get(0); v != nil {
		return v.(*response.UserResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func otpResult(args mock.Arguments) (*response.OTPResponse, error) {
	if v := args.Get(0); v != nil {
		return v.(*response.OTPResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func itemResult(args mock.Arguments) (*response.ItemResponse, error) {
	if v := args.Get(0); v != nil {
		return v.(*response.ItemResponse), args.Error(1)
	}
	return nil, args.Error(1)
}
