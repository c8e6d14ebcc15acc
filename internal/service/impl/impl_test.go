package core

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"code.superseriousbusiness.org/activity/streams"
	"github.com/google/go-cmp/cmp"
	"github.com/sidereusnuntius/postdiaspora/internal/cache"
	"github.com/sidereusnuntius/postdiaspora/internal/client"
	"github.com/sidereusnuntius/postdiaspora/internal/config"
	"github.com/sidereusnuntius/postdiaspora/internal/db"
	"github.com/sidereusnuntius/postdiaspora/internal/diaspora"
	"github.com/sidereusnuntius/postdiaspora/internal/domain"
	mock_db "github.com/sidereusnuntius/postdiaspora/internal/mocks"
	"github.com/sidereusnuntius/postdiaspora/internal/options"
	"github.com/sidereusnuntius/postdiaspora/internal/service"
	"github.com/sidereusnuntius/postdiaspora/internal/state"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

var ctx = context.Background()

var published = domain.Post{
	ID:        7,
	Title:     "Hello",
	Content:   "Hello, world!",
	Status:    domain.StatusPublished,
	Published: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	Author:    domain.Author{ID: 1, Username: "admin", DisplayName: "Admin"},
}

func newService(t *testing.T, DB db.DB, poster *client.HttpClient) (*AppService, *cache.Memory) {
	t.Helper()
	u, _ := url.Parse("https://blog.example")
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	mem := cache.NewMemory()
	s, err := New(&state.State{
		Config: config.Configuration{
			Url:               u,
			OptionsName:       config.DefaultOptionsName,
			StatusPrefix:      config.DefaultStatusPrefix,
			StatusTTL:         time.Minute,
			AdminUsername:     "admin",
			AdminPasswordHash: string(hash),
		},
		DB:     DB,
		Cache:  mem,
		Client: poster,
	})
	if err != nil {
		t.Fatal(err)
	}
	return s.(*AppService), mem
}

func TestAuthenticateAdmin(t *testing.T) {
	s, _ := newService(t, nil, nil)

	cases := []struct {
		user          string
		password      string
		authenticated bool
		invalid       bool
	}{
		{"admin", "correct horse", true, false},
		{" Admin ", "correct horse", true, false},
		{"admin", "wrong horse", false, false},
		{"mallory", "correct horse", false, false},
		{"", "correct horse", false, true},
		{"admin", "short", false, true},
	}

	for _, c := range cases {
		t.Run(c.user+"/"+c.password, func(t *testing.T) {
			a, ok, err := s.AuthenticateAdmin(ctx, c.user, c.password)
			if c.invalid != errors.Is(err, service.ErrInvalidInput) {
				t.Errorf("unexpected error %v", err)
			}
			if ok != c.authenticated {
				t.Errorf("expected authenticated=%v", c.authenticated)
			}
			if ok && (a.Username != "admin" || !a.Admin) {
				t.Errorf("unexpected account %+v", a)
			}
		})
	}
}

func TestCreatePost(t *testing.T) {
	ctrl := gomock.NewController(t)
	DB := mock_db.NewMockDB(ctrl)
	s, _ := newService(t, DB, nil)

	DB.EXPECT().GetAuthorByUsername(gomock.Any(), "admin").Return(domain.Author{ID: 3}, nil)
	DB.EXPECT().InsertPost(gomock.Any(), int64(3), "Title", "Body", gomock.Any()).Return(int64(12), nil)

	id, err := s.CreatePost(ctx, "admin", "  Title ", "Body")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if id != 12 {
		t.Errorf("unexpected id %d", id)
	}

	if _, err = s.CreatePost(ctx, "admin", "", ""); !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdatePost(t *testing.T) {
	ctrl := gomock.NewController(t)
	DB := mock_db.NewMockDB(ctrl)
	s, _ := newService(t, DB, nil)

	draft := published
	draft.Status = domain.StatusDraft

	gomock.InOrder(
		DB.EXPECT().GetPost(gomock.Any(), int64(7)).Return(draft, nil),
		DB.EXPECT().UpdatePost(gomock.Any(), int64(7), "New", "Body").Return(nil),
		DB.EXPECT().GetPost(gomock.Any(), int64(7)).Return(published, nil),
		DB.EXPECT().UpdatePost(gomock.Any(), int64(7), "New", "Body").Return(nil),
	)

	code, err := s.UpdatePost(ctx, 7, "New", "Body")
	if err != nil || code != service.MessageDraftUpdated {
		t.Errorf("unexpected result %d, %v", code, err)
	}
	code, err = s.UpdatePost(ctx, 7, "New", "Body")
	if err != nil || code != service.MessagePublishedUpdate {
		t.Errorf("unexpected result %d, %v", code, err)
	}
}

// pod is a Diaspora pod double counting the notifications it receives.
func pod(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	received := new(atomic.Int32)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		if r.URL.Path != diaspora.NotesPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, received
}

func podSettings(t *testing.T, server *httptest.Server, notify []any) map[string]any {
	host, port, err := net.SplitHostPort(server.Listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	settings := map[string]any{
		service.FieldDiasporaID: "alice@" + host,
		service.FieldIdentifier: "id",
		service.FieldSecret:     "secret",
		service.FieldProtocol:   diaspora.HTTP,
		service.FieldPort:       port,
	}
	if notify != nil {
		settings[service.FieldNotify] = notify
	}
	return settings
}

func TestPublishPost(t *testing.T) {
	cases := []struct {
		name     string
		already  bool
		notify   []any
		status   int
		code     int
		requests int
		message  string
	}{
		{"first publication", false, []any{"post"}, http.StatusOK, service.MessagePublished, 1,
			"Post published. " + diaspora.StatusSent},
		{"update", true, []any{"post", "page"}, http.StatusOK, service.MessageUpdated, 1,
			"Post updated. " + diaspora.StatusSent},
		{"rejected", false, []any{"post"}, http.StatusForbidden, service.MessagePublished, 1,
			"Post published. " + diaspora.StatusRejected + "403"},
		{"disabled", false, []any{"page"}, http.StatusOK, service.MessagePublished, 0, "Post published"},
		{"none checked", false, []any{}, http.StatusOK, service.MessagePublished, 0, "Post published"},
		{"never saved", false, nil, http.StatusOK, service.MessagePublished, 1,
			"Post published. " + diaspora.StatusSent},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			server, received := pod(t, c.status)
			ctrl := gomock.NewController(t)
			DB := mock_db.NewMockDB(ctrl)
			s, _ := newService(t, DB, client.Wrap(server.Client()))

			DB.EXPECT().PublishPost(gomock.Any(), published.ID, gomock.Any()).Return(c.already, nil)
			DB.EXPECT().GetOption(gomock.Any(), config.DefaultOptionsName).Return(podSettings(t, server, c.notify), nil)
			if c.requests > 0 {
				DB.EXPECT().GetPost(gomock.Any(), published.ID).Return(published, nil)
			}

			code, err := s.PublishPost(ctx, published.ID)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if code != c.code {
				t.Errorf("expected code %d, got %d", c.code, code)
			}
			if n := int(received.Load()); n != c.requests {
				t.Errorf("expected %d requests, got %d", c.requests, n)
			}

			messages := s.PostMessages(ctx, published.ID, code)
			if messages[code] != c.message {
				t.Errorf("expected message %q, got %q", c.message, messages[code])
			}

			// The status is only shown once.
			messages = s.PostMessages(ctx, published.ID, code)
			if messages[code] != Messages[code] {
				t.Errorf("status shown twice: %q", messages[code])
			}
		})
	}
}

func TestPublishPostWithoutSettings(t *testing.T) {
	ctrl := gomock.NewController(t)
	DB := mock_db.NewMockDB(ctrl)
	s, mem := newService(t, DB, client.New(client.Options{ConnectTimeout: time.Second}))

	DB.EXPECT().PublishPost(gomock.Any(), int64(3), gomock.Any()).Return(false, nil)
	DB.EXPECT().GetOption(gomock.Any(), config.DefaultOptionsName).Return(nil, db.ErrNotFound)

	code, err := s.PublishPost(ctx, 3)
	if err != nil || code != service.MessagePublished {
		t.Fatalf("unexpected result %d, %v", code, err)
	}

	status, ok, _ := mem.Take(ctx, "wp_post_to_diaspora_diaspora_status_3")
	if !ok || status != diaspora.StatusMissingID {
		t.Errorf("unexpected status %q", status)
	}
}

func TestPublishMissingPost(t *testing.T) {
	ctrl := gomock.NewController(t)
	DB := mock_db.NewMockDB(ctrl)
	s, _ := newService(t, DB, nil)

	DB.EXPECT().PublishPost(gomock.Any(), int64(3), gomock.Any()).Return(false, db.ErrNotFound)
	if _, err := s.PublishPost(ctx, 3); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveSettings(t *testing.T) {
	ctrl := gomock.NewController(t)
	DB := mock_db.NewMockDB(ctrl)
	s, _ := newService(t, DB, nil)

	submitted := options.Values{
		service.FieldDiasporaID: "alice",
		service.FieldIdentifier: "id",
		service.FieldSecret:     "",
		service.FieldProtocol:   "https",
		service.FieldPort:       "44x",
		service.FieldNotify:     []string{"post"},
	}
	DB.EXPECT().PutOption(gomock.Any(), config.DefaultOptionsName, map[string]any(submitted)).Return(nil)

	var errs options.Errors
	valid, err := s.SaveSettings(ctx, submitted, &errs)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if valid {
		t.Error("expected invalid settings")
	}

	var codes []string
	for _, e := range errs {
		codes = append(codes, e.Code)
	}
	expected := []string{"diaspora_id_error", "oauth2_secret_error", "port_error"}
	if diff := cmp.Diff(expected, codes); diff != "" {
		t.Error(diff)
	}
}

func TestRenderSettings(t *testing.T) {
	ctrl := gomock.NewController(t)
	DB := mock_db.NewMockDB(ctrl)
	s, _ := newService(t, DB, nil)

	DB.EXPECT().GetOption(gomock.Any(), config.DefaultOptionsName).Return(map[string]any{
		service.FieldProtocol: "http",
	}, nil).AnyTimes()

	var b strings.Builder
	if err := s.Settings().Render(service.FieldProtocol).Render(ctx, &b); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), `<option value="http" selected>`) {
		t.Errorf("stored protocol is not selected: %s", b.String())
	}
	if !strings.Contains(b.String(), `name="post_to_diaspora[protocol]"`) {
		t.Errorf("input is not grouped: %s", b.String())
	}
}

func TestPublicNote(t *testing.T) {
	ctrl := gomock.NewController(t)
	DB := mock_db.NewMockDB(ctrl)
	s, _ := newService(t, DB, nil)

	draft := published
	draft.Status = domain.StatusDraft
	DB.EXPECT().GetPost(gomock.Any(), int64(7)).Return(draft, nil)
	if _, err := s.PublicNote(ctx, 7); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("expected ErrNotFound for a draft, got %v", err)
	}

	DB.EXPECT().GetPost(gomock.Any(), int64(7)).Return(published, nil)
	note, err := s.PublicNote(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	data, err := streams.Serialize(note)
	if err != nil {
		t.Fatal(err)
	}
	if data["id"] != "https://blog.example/p/7" {
		t.Errorf("unexpected id %v", data["id"])
	}
	if data["attributedTo"] != "https://blog.example/author/admin" {
		t.Errorf("unexpected author %v", data["attributedTo"])
	}
}
