package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"code.superseriousbusiness.org/activity/streams/vocab"
	"github.com/alexedwards/scs"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sidereusnuntius/postdiaspora/internal/config"
	"github.com/sidereusnuntius/postdiaspora/internal/conversions"
	"github.com/sidereusnuntius/postdiaspora/internal/db"
	"github.com/sidereusnuntius/postdiaspora/internal/domain"
	"github.com/sidereusnuntius/postdiaspora/internal/metrics"
	"github.com/sidereusnuntius/postdiaspora/internal/options"
	"github.com/sidereusnuntius/postdiaspora/internal/service"
)

var blog, _ = url.Parse("https://blog.example")

// fakeService keeps posts in memory and records the calls the handlers make.
type fakeService struct {
	posts     map[int64]domain.Post
	settings  *options.Registry
	saved     options.Values
	published []int64
}

func newFakeService() *fakeService {
	s := &fakeService{
		posts: map[int64]domain.Post{
			1: {ID: 1, Title: "Published", Content: "<p>Hello</p>", Status: domain.StatusPublished,
				Published: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Author: domain.Author{ID: 1, DisplayName: "Admin"}},
			2: {ID: 2, Title: "Draft", Status: domain.StatusDraft},
		},
		settings: options.New("post_to_diaspora", options.Values{}, nil),
	}
	_ = s.settings.Register("port", options.Field{Label: "Port", Name: "port"})
	return s
}

func (s *fakeService) AuthenticateAdmin(ctx context.Context, user, password string) (domain.Account, bool, error) {
	if user == "admin" && password == "correct horse" {
		return domain.Account{Username: "admin", Admin: true}, true, nil
	}
	return domain.Account{}, false, nil
}

func (s *fakeService) CreatePost(ctx context.Context, username, title, content string) (int64, error) {
	id := int64(len(s.posts) + 1)
	s.posts[id] = domain.Post{ID: id, Title: title, Content: content, Status: domain.StatusDraft}
	return id, nil
}

func (s *fakeService) UpdatePost(ctx context.Context, id int64, title, content string) (int, error) {
	return service.MessageDraftUpdated, nil
}

func (s *fakeService) GetPost(ctx context.Context, id int64) (domain.Post, error) {
	p, ok := s.posts[id]
	if !ok {
		return domain.Post{}, db.ErrNotFound
	}
	return p, nil
}

func (s *fakeService) GetAuthor(ctx context.Context, username string) (domain.Author, error) {
	if username != "admin" {
		return domain.Author{}, db.ErrNotFound
	}
	return domain.Author{ID: 1, Username: "admin", DisplayName: "Admin"}, nil
}

func (s *fakeService) ListPosts(ctx context.Context) ([]domain.Post, error) {
	return []domain.Post{s.posts[1], s.posts[2]}, nil
}

func (s *fakeService) PublishPost(ctx context.Context, id int64) (int, error) {
	if _, ok := s.posts[id]; !ok {
		return 0, db.ErrNotFound
	}
	s.published = append(s.published, id)
	return service.MessagePublished, nil
}

func (s *fakeService) PostMessages(ctx context.Context, id int64, code int) map[int]string {
	return map[int]string{service.MessagePublished: "Post published. Posted to Diaspora successfully."}
}

func (s *fakeService) PublicNote(ctx context.Context, id int64) (vocab.ActivityStreamsNote, error) {
	p, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsPublished() {
		return nil, db.ErrNotFound
	}
	return conversions.PostToNote(p, p.Permalink(blog), blog.JoinPath("author", "admin")), nil
}

func (s *fakeService) Settings() *options.Registry {
	return s.settings
}

func (s *fakeService) SaveSettings(ctx context.Context, submitted options.Values, sink options.ErrorSink) (bool, error) {
	s.saved = submitted
	return true, nil
}

func newRouter(t *testing.T) (http.Handler, *fakeService) {
	t.Helper()
	svc := newFakeService()
	reg := prometheus.NewRegistry()
	metrics.New(reg)

	cfg := config.Configuration{Name: "Test blog", Url: blog}
	h := New(&cfg, svc, scs.NewCookieManager("u46IpCV9y5Vlur8YvODJEhgOY8m9JVE4"), promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r := chi.NewRouter()
	h.Mount(r)
	return r, svc
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPublicPost(t *testing.T) {
	h, _ := newRouter(t)

	cases := []struct {
		path   string
		status int
		body   string
	}{
		{"/p/1", http.StatusOK, `<div class="content"><p>Hello</p></div>`},
		{"/p/2", http.StatusNotFound, "Not found."},
		{"/p/99", http.StatusNotFound, "Not found."},
		{"/p/abc", http.StatusNotFound, "Not found."},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			rec := do(t, h, httptest.NewRequest(http.MethodGet, c.path, nil))
			if rec.Code != c.status {
				t.Errorf("expected status %d, got %d", c.status, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), c.body) {
				t.Errorf("body does not contain %s: %s", c.body, rec.Body.String())
			}
		})
	}
}

func TestPublicPostActivity(t *testing.T) {
	h, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/p/1", nil)
	req.Header.Set("Accept", ActivityContentType)
	rec := do(t, h, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != ActivityContentType {
		t.Errorf("unexpected content type %s", ct)
	}
	var note map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&note); err != nil {
		t.Fatal(err)
	}
	if note["type"] != "Note" || note["id"] != "https://blog.example/p/1" {
		t.Errorf("unexpected note %v", note)
	}
}

func TestIndex(t *testing.T) {
	h, _ := newRouter(t)
	body := do(t, h, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()
	if !strings.Contains(body, `<a href="/p/1">Published</a>`) {
		t.Errorf("published post missing: %s", body)
	}
	if strings.Contains(body, "Draft") {
		t.Errorf("draft listed publicly: %s", body)
	}
}

func TestAuthorPage(t *testing.T) {
	h, _ := newRouter(t)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/author/admin", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `<a href="/p/1">Published</a>`) {
		t.Errorf("unexpected response %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/author/ghost", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unexpected status %d", rec.Code)
	}
}

func TestAdminRequiresSession(t *testing.T) {
	h, svc := newRouter(t)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/admin/posts", nil),
		httptest.NewRequest(http.MethodGet, "/admin/settings", nil),
		httptest.NewRequest(http.MethodPost, "/admin/posts/1/publish", nil),
	} {
		rec := do(t, h, req)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != LoginRoute {
			t.Errorf("%s %s: expected a redirect to the login page, got %d", req.Method, req.URL, rec.Code)
		}
	}
	if len(svc.published) != 0 {
		t.Error("post published without a session")
	}
}

func login(t *testing.T, h http.Handler) []*http.Cookie {
	t.Helper()
	form := url.Values{"user": {"admin"}, "password": {"correct horse"}}
	req := httptest.NewRequest(http.MethodPost, LoginRoute, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(t, h, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login failed with status %d", rec.Code)
	}
	return rec.Result().Cookies()
}

func withCookies(req *http.Request, cookies []*http.Cookie) *http.Request {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestLoginFailure(t *testing.T) {
	h, _ := newRouter(t)
	form := url.Values{"user": {"admin"}, "password": {"wrong horse"}}
	req := httptest.NewRequest(http.MethodPost, LoginRoute, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := do(t, h, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unexpected status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "wrong username or password") {
		t.Errorf("missing error: %s", rec.Body.String())
	}
}

func TestPublishAndShowStatus(t *testing.T) {
	h, svc := newRouter(t)
	cookies := login(t, h)

	rec := do(t, h, withCookies(httptest.NewRequest(http.MethodPost, "/admin/posts/1/publish", nil), cookies))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	location := rec.Header().Get("Location")
	if location != "/admin/posts/1?message=6" {
		t.Errorf("unexpected redirect %s", location)
	}
	if len(svc.published) != 1 || svc.published[0] != 1 {
		t.Errorf("unexpected publications %v", svc.published)
	}

	rec = do(t, h, withCookies(httptest.NewRequest(http.MethodGet, location, nil), cookies))
	if !strings.Contains(rec.Body.String(), "Post published. Posted to Diaspora successfully.") {
		t.Errorf("status not shown: %s", rec.Body.String())
	}
}

func TestSaveSettings(t *testing.T) {
	h, svc := newRouter(t)
	cookies := login(t, h)

	form := url.Values{"post_to_diaspora[port]": {"4000"}}
	req := httptest.NewRequest(http.MethodPost, SettingsPath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(t, h, withCookies(req, cookies))

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != SettingsPath {
		t.Errorf("unexpected response %d %s", rec.Code, rec.Header().Get("Location"))
	}
	if svc.saved["port"] != "4000" {
		t.Errorf("unexpected saved values %v", svc.saved)
	}
}

func TestMetrics(t *testing.T) {
	h, _ := newRouter(t)
	rec := do(t, h, httptest.NewRequest(http.MethodGet, MetricsRoute, nil))
	if rec.Code != http.StatusOK {
		t.Errorf("unexpected status %d", rec.Code)
	}
}
