package users

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kungpiyaphon/note-app-api/internal/models"
)

var (
	ErrEmailTaken         = errors.New("email already in use")
	ErrUsernameTaken      = errors.New("username already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidID          = errors.New("invalid user id")
	ErrNotFound           = errors.New("user not found")
)

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// Register creates a local account. The plaintext is hashed exactly once
// here; the stored record never sees it.
func (s *Service) Register(ctx context.Context, fullName, email, password string) (*models.User, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		FullName:     fullName,
		Email:        email,
		Password:     hash,
		AuthProvider: models.ProviderLocal,
	}
	created, err := s.repo.Insert(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		// lost the race against a concurrent registration for the same email
		return nil, ErrEmailTaken
	}
	return created, err
}

// Authenticate verifies email+password. Unknown email, wrong password and
// OAuth-only accounts (no stored hash) are deliberately indistinguishable.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || u.Password == "" || !CheckPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetByID resolves a user id hex string to the stored record.
func (s *Service) GetByID(ctx context.Context, idHex string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, ErrInvalidID
	}
	u, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// PublicProfile returns the safe subset (name, email) for an id.
func (s *Service) PublicProfile(ctx context.Context, idHex string) (*models.PublicProfile, error) {
	u, err := s.GetByID(ctx, idHex)
	if err != nil {
		return nil, err
	}
	return &models.PublicProfile{ID: u.ID, FullName: u.FullName, Email: u.Email}, nil
}

// FindOrCreateMicrosoft links an externally authenticated Microsoft identity
// to a local record, creating one on first sign-in. Returns created=true
// when a new account was made.
func (s *Service) FindOrCreateMicrosoft(ctx context.Context, microsoftID, tenantID, email, displayName string) (*models.User, bool, error) {
	u, err := s.repo.FindByMicrosoftID(ctx, microsoftID)
	if err != nil {
		return nil, false, err
	}
	if u != nil {
		return u, false, nil
	}
	// an account registered locally with the same email adopts the link,
	// so the next sign-in resolves by microsoftId directly
	u, err = s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if u != nil {
		if err := s.repo.SetMicrosoftLink(ctx, u.ID, microsoftID, tenantID); err != nil {
			return nil, false, err
		}
		u.MicrosoftID = microsoftID
		u.TenantID = tenantID
		return u, false, nil
	}
	created, err := s.repo.Insert(ctx, &models.User{
		FullName:     displayName,
		Email:        email,
		AuthProvider: models.ProviderMicrosoft,
		MicrosoftID:  microsoftID,
		TenantID:     tenantID,
	})
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// AdminCreate validates email and username uniqueness independently before
// inserting, so the caller can tell which field collided.
func (s *Service) AdminCreate(ctx context.Context, fullName, username, email, password string) (*models.User, error) {
	if existing, err := s.repo.FindByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailTaken
	}
	if username != "" {
		if existing, err := s.repo.FindByUsername(ctx, username); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, ErrUsernameTaken
		}
	}
	hash := ""
	if password != "" {
		var err error
		hash, err = HashPassword(password)
		if err != nil {
			return nil, err
		}
	}
	created, err := s.repo.Insert(ctx, &models.User{
		FullName:     fullName,
		Username:     username,
		Email:        email,
		Password:     hash,
		AuthProvider: models.ProviderLocal,
	})
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrEmailTaken
	}
	return created, err
}

// ListAll returns every user record; password hashes stay out of JSON via
// the model's tags.
func (s *Service) ListAll(ctx context.Context) ([]models.User, error) {
	return s.repo.All(ctx)
}
