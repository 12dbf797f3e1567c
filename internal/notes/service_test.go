package notes

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kungpiyaphon/note-app-api/internal/models"
)

// fakeNoteRepo reimplements the repository contract in memory, including the
// owner-scoped filters: any (id, owner) miss behaves as a missing document.
type fakeNoteRepo struct {
	store map[primitive.ObjectID]*models.Note
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{store: map[primitive.ObjectID]*models.Note{}}
}

func (f *fakeNoteRepo) Create(ctx context.Context, n *models.Note) (*models.Note, error) {
	now := time.Now().UTC()
	n.ID = primitive.NewObjectID()
	n.CreatedOn = now
	n.UpdatedOn = now
	if n.Tags == nil {
		n.Tags = []string{}
	}
	cp := *n
	f.store[n.ID] = &cp
	return n, nil
}

func (f *fakeNoteRepo) FindByIDAndOwner(ctx context.Context, id primitive.ObjectID, owner string) (*models.Note, error) {
	n, ok := f.store[id]
	if !ok || n.UserID != owner {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (f *fakeNoteRepo) ListByOwner(ctx context.Context, owner string) ([]models.Note, error) {
	out := f.byOwner(owner)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsPinned != out[j].IsPinned {
			return out[i].IsPinned
		}
		return out[i].CreatedOn.After(out[j].CreatedOn)
	})
	return out, nil
}

func (f *fakeNoteRepo) ListRecentByOwner(ctx context.Context, owner string) ([]models.Note, error) {
	out := f.byOwner(owner)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedOn.After(out[j].CreatedOn)
	})
	return out, nil
}

func (f *fakeNoteRepo) Update(ctx context.Context, id primitive.ObjectID, owner string, set bson.M) (*models.Note, error) {
	n, ok := f.store[id]
	if !ok || n.UserID != owner {
		return nil, nil
	}
	for k, v := range set {
		switch k {
		case "title":
			n.Title = v.(string)
		case "content":
			n.Content = v.(string)
		case "tags":
			n.Tags = v.([]string)
		case "isPinned":
			n.IsPinned = v.(bool)
		case "isPublic":
			n.IsPublic = v.(bool)
		case "updatedOn":
			n.UpdatedOn = v.(time.Time)
		}
	}
	cp := *n
	return &cp, nil
}

func (f *fakeNoteRepo) Delete(ctx context.Context, id primitive.ObjectID, owner string) (bool, error) {
	n, ok := f.store[id]
	if !ok || n.UserID != owner {
		return false, nil
	}
	delete(f.store, id)
	return true, nil
}

func (f *fakeNoteRepo) Search(ctx context.Context, owner, query string) ([]models.Note, error) {
	q := strings.ToLower(query)
	out := []models.Note{}
	for _, n := range f.byOwner(owner) {
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNoteRepo) PublicByOwner(ctx context.Context, owner string) ([]models.Note, error) {
	out := []models.Note{}
	for _, n := range f.byOwner(owner) {
		if n.IsPublic {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedOn.After(out[j].CreatedOn)
	})
	return out, nil
}

func (f *fakeNoteRepo) byOwner(owner string) []models.Note {
	out := []models.Note{}
	for _, n := range f.store {
		if n.UserID == owner {
			out = append(out, *n)
		}
	}
	return out
}

func strp(s string) *string  { return &s }
func boolp(b bool) *bool     { return &b }
func tagsp(t []string) *[]string { return &t }

func TestCreateAndGet_TagsRoundTrip(t *testing.T) {
	svc := NewService(newFakeNoteRepo())
	ctx := context.Background()

	n, err := svc.Create(ctx, "owner-1", "T", "C", []string{"a", "b"}, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := svc.Get(ctx, "owner-1", n.ID.Hex())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "a" || got.Tags[1] != "b" {
		t.Fatalf("tags did not round-trip in order: %v", got.Tags)
	}
}

func TestCreate_DefaultsTags(t *testing.T) {
	svc := NewService(newFakeNoteRepo())
	n, err := svc.Create(context.Background(), "owner-1", "T", "C", nil, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if n.Tags == nil || len(n.Tags) != 0 {
		t.Fatalf("expected empty tag slice, got %v", n.Tags)
	}
}

func TestGet_OwnershipConflation(t *testing.T) {
	svc := NewService(newFakeNoteRepo())
	ctx := context.Background()

	n, _ := svc.Create(ctx, "user-a", "secret", "body", nil, false)

	// another user's lookup is indistinguishable from a miss
	if _, err := svc.Get(ctx, "user-b", n.ID.Hex()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-owner, got %v", err)
	}
	if _, err := svc.Get(ctx, "user-a", primitive.NewObjectID().Hex()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
	if _, err := svc.Get(ctx, "user-a", "garbage"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("malformed id should read as not found, got %v", err)
	}
}

func TestEdit_RequiresFields(t *testing.T) {
	repo := newFakeNoteRepo()
	svc := NewService(repo)
	ctx := context.Background()

	n, _ := svc.Create(ctx, "u", "before", "body", nil, false)

	if _, err := svc.Edit(ctx, "u", n.ID.Hex(), EditPatch{}); !errors.Is(err, ErrNoFields) {
		t.Fatalf("expected ErrNoFields, got %v", err)
	}
	// stored note unchanged after the rejected edit
	got, _ := svc.Get(ctx, "u", n.ID.Hex())
	if got.Title != "before" {
		t.Fatalf("note mutated by empty edit: %q", got.Title)
	}
}

func TestEdit_PartialUpdate(t *testing.T) {
	svc := NewService(newFakeNoteRepo())
	ctx := context.Background()

	n, _ := svc.Create(ctx, "u", "title", "content", []string{"x"}, false)

	got, err := svc.Edit(ctx, "u", n.ID.Hex(), EditPatch{Content: strp("new content"), IsPinned: boolp(true)})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if got.Title != "title" || got.Content != "new content" || !got.IsPinned {
		t.Fatalf("partial update wrong: %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "x" {
		t.Fatalf("untouched tags changed: %v", got.Tags)
	}

	got, err = svc.Edit(ctx, "u", n.ID.Hex(), EditPatch{Tags: tagsp([]string{})})
	if err != nil {
		t.Fatalf("edit tags: %v", err)
	}
	if len(got.Tags) != 0 {
		t.Fatalf("expected cleared tags, got %v", got.Tags)
	}
}

func TestDelete_Idempotence(t *testing.T) {
	svc := NewService(newFakeNoteRepo())
	ctx := context.Background()

	n, _ := svc.Create(ctx, "u", "T", "C", nil, false)

	if err := svc.Delete(ctx, "u", n.ID.Hex()); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.Delete(ctx, "u", n.ID.Hex()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestDelete_NonOwner(t *testing.T) {
	svc := NewService(newFakeNoteRepo())
	ctx := context.Background()

	n, _ := svc.Create(ctx, "user-a", "T", "C", nil, false)
	if err := svc.Delete(ctx, "user-b", n.ID.Hex()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("non-owner delete must read as not found, got %v", err)
	}
	if _, err := svc.Get(ctx, "user-a", n.ID.Hex()); err != nil {
		t.Fatalf("note should still exist for its owner: %v", err)
	}
}

func TestSearch_CaseInsensitiveAndScoped(t *testing.T) {
	svc := NewService(newFakeNoteRepo())
	ctx := context.Background()

	svc.Create(ctx, "u", "Grocery List", "milk, eggs", nil, false)
	svc.Create(ctx, "u", "Work", "quarterly GOALS", nil, false)
	svc.Create(ctx, "other", "Grocery", "their list", nil, false)

	hits, err := svc.Search(ctx, "u", "grocery")
	if err != nil || len(hits) != 1 {
		t.Fatalf("title search: hits=%d err=%v", len(hits), err)
	}
	hits, err = svc.Search(ctx, "u", "goals")
	if err != nil || len(hits) != 1 {
		t.Fatalf("content search: hits=%d err=%v", len(hits), err)
	}
}

func TestVisibility_GatesPublicListing(t *testing.T) {
	svc := NewService(newFakeNoteRepo())
	ctx := context.Background()
	owner := primitive.NewObjectID().Hex()

	n, _ := svc.Create(ctx, owner, "shared", "body", nil, false)

	pub, err := svc.PublicNotes(ctx, owner)
	if err != nil || len(pub) != 0 {
		t.Fatalf("note should be absent before publishing: %d %v", len(pub), err)
	}

	if _, err := svc.SetVisibility(ctx, owner, n.ID.Hex(), true); err != nil {
		t.Fatalf("set visibility: %v", err)
	}
	pub, err = svc.PublicNotes(ctx, owner)
	if err != nil || len(pub) != 1 {
		t.Fatalf("note should be listed after publishing: %d %v", len(pub), err)
	}

	if _, err := svc.PublicNotes(ctx, "not-hex"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestSetPinned(t *testing.T) {
	svc := NewService(newFakeNoteRepo())
	ctx := context.Background()

	n, _ := svc.Create(ctx, "u", "T", "C", nil, false)
	got, err := svc.SetPinned(ctx, "u", n.ID.Hex(), true)
	if err != nil || !got.IsPinned {
		t.Fatalf("pin failed: %+v %v", got, err)
	}
	if _, err := svc.SetPinned(ctx, "someone-else", n.ID.Hex(), true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-owner pin, got %v", err)
	}
}
