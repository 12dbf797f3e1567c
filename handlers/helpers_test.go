package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kungpiyaphon/note-app-api/internal/config"
	"github.com/kungpiyaphon/note-app-api/internal/models"
	"github.com/kungpiyaphon/note-app-api/internal/msgraph"
	"github.com/kungpiyaphon/note-app-api/internal/notes"
	"github.com/kungpiyaphon/note-app-api/internal/sessions"
	"github.com/kungpiyaphon/note-app-api/internal/tokens"
	"github.com/kungpiyaphon/note-app-api/internal/users"
	"github.com/kungpiyaphon/note-app-api/pkg/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memUserRepo is an in-memory users.UserRepository.
type memUserRepo struct {
	byID map[primitive.ObjectID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[primitive.ObjectID]*models.User{}}
}

func (m *memUserRepo) Insert(ctx context.Context, u *models.User) (*models.User, error) {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedOn.IsZero() {
		u.CreatedOn = time.Now().UTC()
	}
	if u.AuthProvider == "" {
		u.AuthProvider = models.ProviderLocal
	}
	cp := *u
	m.byID[u.ID] = &cp
	return u, nil
}

func (m *memUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memUserRepo) FindByMicrosoftID(ctx context.Context, microsoftID string) (*models.User, error) {
	for _, u := range m.byID {
		if u.MicrosoftID == microsoftID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) SetMicrosoftLink(ctx context.Context, id primitive.ObjectID, microsoftID, tenantID string) error {
	u, ok := m.byID[id]
	if !ok {
		return errors.New("no such user")
	}
	u.MicrosoftID = microsoftID
	u.TenantID = tenantID
	return nil
}

func (m *memUserRepo) All(ctx context.Context) ([]models.User, error) {
	out := []models.User{}
	for _, u := range m.byID {
		out = append(out, *u)
	}
	return out, nil
}

// memNoteRepo is an in-memory notes.NoteRepository with owner-scoped lookups.
type memNoteRepo struct {
	byID map[primitive.ObjectID]*models.Note
}

func newMemNoteRepo() *memNoteRepo {
	return &memNoteRepo{byID: map[primitive.ObjectID]*models.Note{}}
}

func (m *memNoteRepo) Create(ctx context.Context, n *models.Note) (*models.Note, error) {
	now := time.Now().UTC()
	n.ID = primitive.NewObjectID()
	n.CreatedOn = now
	n.UpdatedOn = now
	if n.Tags == nil {
		n.Tags = []string{}
	}
	cp := *n
	m.byID[n.ID] = &cp
	return n, nil
}

func (m *memNoteRepo) FindByIDAndOwner(ctx context.Context, id primitive.ObjectID, owner string) (*models.Note, error) {
	n, ok := m.byID[id]
	if !ok || n.UserID != owner {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (m *memNoteRepo) ListByOwner(ctx context.Context, owner string) ([]models.Note, error) {
	out := m.owned(owner)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsPinned != out[j].IsPinned {
			return out[i].IsPinned
		}
		return out[i].CreatedOn.After(out[j].CreatedOn)
	})
	return out, nil
}

func (m *memNoteRepo) ListRecentByOwner(ctx context.Context, owner string) ([]models.Note, error) {
	out := m.owned(owner)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedOn.After(out[j].CreatedOn)
	})
	return out, nil
}

func (m *memNoteRepo) Update(ctx context.Context, id primitive.ObjectID, owner string, set bson.M) (*models.Note, error) {
	n, ok := m.byID[id]
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

func (m *memNoteRepo) Delete(ctx context.Context, id primitive.ObjectID, owner string) (bool, error) {
	n, ok := m.byID[id]
	if !ok || n.UserID != owner {
		return false, nil
	}
	delete(m.byID, id)
	return true, nil
}

func (m *memNoteRepo) Search(ctx context.Context, owner, query string) ([]models.Note, error) {
	q := strings.ToLower(query)
	out := []models.Note{}
	for _, n := range m.owned(owner) {
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memNoteRepo) PublicByOwner(ctx context.Context, owner string) ([]models.Note, error) {
	out := []models.Note{}
	for _, n := range m.owned(owner) {
		if n.IsPublic {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memNoteRepo) owned(owner string) []models.Note {
	out := []models.Note{}
	for _, n := range m.byID {
		if n.UserID == owner {
			out = append(out, *n)
		}
	}
	return out
}

// testApp bundles a fully wired router with direct service access for setup.
type testApp struct {
	cfg      *config.Config
	router   *gin.Engine
	userSvc  *users.Service
	noteSvc  *notes.Service
	userRepo *memUserRepo
	noteRepo *memNoteRepo
}

func newTestApp(t *testing.T, opts ...func(*config.Config)) *testApp {
	t.Helper()
	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "handler-test-secret", AccessTokenTTL: time.Hour},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	app := &testApp{
		cfg:      cfg,
		userRepo: newMemUserRepo(),
		noteRepo: newMemNoteRepo(),
	}
	app.userSvc = users.NewService(app.userRepo)
	app.noteSvc = notes.NewService(app.noteRepo)

	bl := sessions.NewBlacklist(nil)
	authn := middleware.RequireAuth(cfg, app.userSvc, bl)

	r := gin.New()
	root := r.Group("/")
	NewAuthHandler(cfg, app.userSvc, msgraph.NewClient(), bl).Register(root, authn)
	NewUsersHandler(app.userSvc).Register(root, authn)
	NewNotesHandler(app.noteSvc, app.userSvc).Register(root, authn)
	app.router = r
	return app
}

func (a *testApp) seedUser(t *testing.T, fullName, email, password string) *models.User {
	t.Helper()
	u, err := a.userSvc.Register(context.Background(), fullName, email, password)
	require.NoError(t, err)
	return u
}

func (a *testApp) tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := tokens.GenerateAccessToken(a.cfg, u.ID.Hex())
	require.NoError(t, err)
	return tok
}

func (a *testApp) do(t *testing.T, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
