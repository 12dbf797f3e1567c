package notes

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kungpiyaphon/note-app-api/internal/models"
)

var (
	// ErrNotFound covers both a missing note and an ownership mismatch;
	// clients cannot tell the two apart.
	ErrNotFound  = errors.New("note not found")
	ErrInvalidID = errors.New("invalid id")
	ErrNoFields  = errors.New("no fields to update")
)

// EditPatch carries a partial note update; nil fields are left untouched.
type EditPatch struct {
	Title    *string
	Content  *string
	Tags     *[]string
	IsPinned *bool
}

func (p EditPatch) empty() bool {
	return p.Title == nil && p.Content == nil && p.Tags == nil && p.IsPinned == nil
}

// Service wraps the repository with ownership and validation logic. The
// owner id always comes from the authenticated identity, never from input.
type Service struct {
	repo NoteRepository
}

func NewService(r NoteRepository) *Service {
	return &Service{repo: r}
}

func (s *Service) Create(ctx context.Context, ownerID, title, content string, tags []string, isPinned bool) (*models.Note, error) {
	if tags == nil {
		tags = []string{}
	}
	return s.repo.Create(ctx, &models.Note{
		Title:    title,
		Content:  content,
		Tags:     tags,
		IsPinned: isPinned,
		UserID:   ownerID,
	})
}

func (s *Service) Get(ctx context.Context, ownerID, idHex string) (*models.Note, error) {
	oid, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, ErrNotFound
	}
	n, err := s.repo.FindByIDAndOwner(ctx, oid, ownerID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotFound
	}
	return n, nil
}

// ListMine returns the caller's notes pinned-first.
func (s *Service) ListMine(ctx context.Context, ownerID string) ([]models.Note, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// ListRecent returns the caller's notes newest-first.
func (s *Service) ListRecent(ctx context.Context, ownerID string) ([]models.Note, error) {
	return s.repo.ListRecentByOwner(ctx, ownerID)
}

// Edit applies a partial update. At least one field must be present.
func (s *Service) Edit(ctx context.Context, ownerID, idHex string, patch EditPatch) (*models.Note, error) {
	if patch.empty() {
		return nil, ErrNoFields
	}
	oid, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, ErrNotFound
	}
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.Tags != nil {
		set["tags"] = *patch.Tags
	}
	if patch.IsPinned != nil {
		set["isPinned"] = *patch.IsPinned
	}
	return s.update(ctx, oid, ownerID, set)
}

func (s *Service) SetPinned(ctx context.Context, ownerID, idHex string, pinned bool) (*models.Note, error) {
	oid, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.update(ctx, oid, ownerID, bson.M{"isPinned": pinned})
}

func (s *Service) SetVisibility(ctx context.Context, ownerID, idHex string, public bool) (*models.Note, error) {
	oid, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.update(ctx, oid, ownerID, bson.M{"isPublic": public})
}

// Delete removes the caller's note. Deleting a note that is already gone
// (or was never theirs) reports ErrNotFound, so repeat deletes surface 404.
func (s *Service) Delete(ctx context.Context, ownerID, idHex string) error {
	oid, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return ErrNotFound
	}
	deleted, err := s.repo.Delete(ctx, oid, ownerID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Search(ctx context.Context, ownerID, query string) ([]models.Note, error) {
	return s.repo.Search(ctx, ownerID, query)
}

// PublicNotes lists another user's public notes; no authentication needed.
func (s *Service) PublicNotes(ctx context.Context, userIDHex string) ([]models.Note, error) {
	if _, err := primitive.ObjectIDFromHex(userIDHex); err != nil {
		return nil, ErrInvalidID
	}
	return s.repo.PublicByOwner(ctx, userIDHex)
}

func (s *Service) update(ctx context.Context, id primitive.ObjectID, ownerID string, set bson.M) (*models.Note, error) {
	n, err := s.repo.Update(ctx, id, ownerID, set)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotFound
	}
	return n, nil
}
