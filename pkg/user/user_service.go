package user

import (
	"MedFund-Backend/domain"
	"MedFund-Backend/entities"
	"MedFund-Backend/pkg/jwt"
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.UserResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		Me(ctx context.Context, session domain.Session) (domain.UserResponse, error)
		EnsureAdmin(ctx context.Context, name, email, password string) (domain.UserResponse, error)
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
	}
)

func NewUserService(userRepository UserRepository, jwtService jwt.JWTService) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.UserResponse, error) {
	if req.Role != domain.RoleRecipient && req.Role != domain.RoleDonor {
		return domain.UserResponse{}, domain.ErrUserNotAllowed
	}
	return s.create(ctx, req.Name, req.Email, req.Password, req.Phone, req.Role)
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LoginResponse{}, domain.ErrCredentialsInvalid
		}
		return domain.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.LoginResponse{}, domain.ErrCredentialsInvalid
	}

	token, err := s.jwtService.GenerateTokenUser(user.ID.String(), user.Role)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	return domain.LoginResponse{Token: token, Role: user.Role}, nil
}

func (s *userService) Me(ctx context.Context, session domain.Session) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

// EnsureAdmin creates the admin account when it does not exist yet. Admins
// cannot self-register.
func (s *userService) EnsureAdmin(ctx context.Context, name, email, password string) (domain.UserResponse, error) {
	existing, err := s.userRepository.GetUserByEmail(ctx, normalizeEmail(email))
	if err == nil {
		if existing.Role != domain.RoleAdmin {
			return domain.UserResponse{}, domain.ErrEmailAlreadyExists
		}
		return toUserResponse(existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.UserResponse{}, err
	}

	res, err := s.create(ctx, name, email, password, "", domain.RoleAdmin)
	if err == nil {
		log.Infof("admin account %s created", res.Email)
	}
	return res, err
}

func (s *userService) create(ctx context.Context, name, email, password, phone, role string) (domain.UserResponse, error) {
	email = normalizeEmail(email)
	exists, err := s.userRepository.CheckEmailExists(ctx, email)
	if err != nil {
		return domain.UserResponse{}, err
	}
	if exists {
		return domain.UserResponse{}, domain.ErrEmailAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserResponse{}, domain.ErrHashPassword
	}

	user := &entities.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: string(hashed),
		Phone:    phone,
		Role:     role,
	}
	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		return domain.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserResponse(user *entities.User) domain.UserResponse {
	return domain.UserResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}
