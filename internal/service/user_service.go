package service

import (
	"context"
	"strings"
	"time"

	"iquiz-service/internal/event"
	"iquiz-service/internal/httperr"
	"iquiz-service/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles registration, login and the email-code flows for
// verification and password reset. Passwords are bcrypt hashed; login is
// blocked until the account is verified.
type UserService struct {
	users     UserStore
	publisher event.Publisher
}

func NewUserService(users UserStore, publisher event.Publisher) *UserService {
	return &UserService{users: users, publisher: publisher}
}

type RegisterInput struct {
	Type      models.UserType `json:"type"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Email     string          `json:"email"`
	Password  string          `json:"password"`
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.FirstName == "" || input.LastName == "" || input.Email == "" || input.Password == "" {
		return nil, httperr.Validationf("missing fields")
	}
	if !input.Type.Valid() {
		return nil, httperr.Validationf("invalid user type")
	}
	if len(input.Password) < 8 {
		return nil, httperr.Validationf("password must be at least 8 characters")
	}

	_, err := s.users.FindByEmail(ctx, input.Email)
	if err == nil {
		return nil, httperr.Validationf("email already in use")
	}
	if !notFound(err) {
		return nil, httperr.Storef(err, "error finding user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, httperr.Storef(err, "error hashing password")
	}

	now := time.Now()
	user := &models.User{
		Type:                  input.Type,
		FirstName:             input.FirstName,
		LastName:              input.LastName,
		Email:                 input.Email,
		PasswordHash:          string(hash),
		Verified:              false,
		EmailVerificationCode: uuid.NewString(),
		Courses:               []models.CourseRef{},
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// The unique email index catches a concurrent registration.
		return nil, httperr.Validationf("email already in use")
	}

	err = s.publisher.PublishUserRegistered(ctx, user.ID, user.FullName(), user.Email, user.EmailVerificationCode)
	if err != nil {
		return nil, httperr.Storef(err, "error publishing registration notification")
	}
	return user, nil
}

// Login checks credentials and returns the user for the session layer to
// mint a token from. Credential failures are indistinguishable on purpose.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, httperr.Validationf("missing fields")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if notFound(err) {
			return nil, httperr.Unauthorizedf("invalid email or password")
		}
		return nil, httperr.Storef(err, "error finding user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, httperr.Unauthorizedf("invalid email or password")
	}
	if !user.Verified {
		return nil, httperr.AccessDeniedf("account is not verified")
	}
	return user, nil
}

func (s *UserService) VerifyEmail(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || code == "" {
		return httperr.Validationf("missing fields")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if notFound(err) {
			return httperr.NotFoundf("invalid user")
		}
		return httperr.Storef(err, "error finding user")
	}
	if user.Verified {
		return nil
	}
	if user.EmailVerificationCode != code {
		return httperr.Validationf("invalid verification code")
	}

	err = s.users.Update(ctx, user.ID, bson.M{
		"verified":   true,
		"updated_at": time.Now(),
	})
	if err != nil {
		return httperr.Storef(err, "error verifying user")
	}
	return nil
}

// IssuePasswordResetCode generates a fresh code and mails it. An unknown
// email reports success to avoid leaking which addresses exist.
func (s *UserService) IssuePasswordResetCode(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return httperr.Validationf("missing fields")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if notFound(err) {
			return nil
		}
		return httperr.Storef(err, "error finding user")
	}

	code := uuid.NewString()
	err = s.users.Update(ctx, user.ID, bson.M{
		"password_reset_code": code,
		"updated_at":          time.Now(),
	})
	if err != nil {
		return httperr.Storef(err, "error storing password reset code")
	}

	return s.publisher.PublishPasswordReset(ctx, user.Email, user.FullName(), code)
}

func (s *UserService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || code == "" || newPassword == "" {
		return httperr.Validationf("missing fields")
	}
	if len(newPassword) < 8 {
		return httperr.Validationf("password must be at least 8 characters")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if notFound(err) {
			return httperr.NotFoundf("invalid user")
		}
		return httperr.Storef(err, "error finding user")
	}
	if user.PasswordResetCode == "" || user.PasswordResetCode != code {
		return httperr.Validationf("invalid password reset code")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return httperr.Storef(err, "error hashing password")
	}

	err = s.users.Update(ctx, user.ID, bson.M{
		"password_hash":       string(hash),
		"password_reset_code": "",
		"updated_at":          time.Now(),
	})
	if err != nil {
		return httperr.Storef(err, "error resetting password")
	}
	return nil
}

// GetUser is the profile fetch behind "who am I".
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if notFound(err) {
			return nil, httperr.NotFoundf("invalid user")
		}
		return nil, httperr.Storef(err, "error finding user")
	}
	return user, nil
}
