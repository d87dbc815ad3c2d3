package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"bulletinboard/internal/gateway"
	"bulletinboard/internal/session"
)

// fakeAPI is a minimal forum API. It records the last comment form it
// received.
type fakeAPI struct {
	mu          sync.Mutex
	lastComment url.Values
	createCalls int
}

const apiComments = `[
	{"commentId":1,"userId":7,"nickname":"alice","commentContent":"first","parentCommentId":null,"depth":0,"isDeleted":0,"createdAt":"2024-03-01T10:00:00"},
	{"commentId":2,"userId":8,"nickname":"bob","commentContent":"@alice hi","parentCommentId":1,"parentNickname":"alice","depth":1,"isDeleted":0,"createdAt":"2024-03-01T10:05:00"},
	{"commentId":3,"userId":7,"parentCommentId":1,"depth":1,"isDeleted":1}
]`

func (f *fakeAPI) creates() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/post", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"postList":[{"postId":5,"userName":"alice","title":"Hello board","createdAt":"2024-03-01T09:00:00","commentCount":2}],"currentPage":1,"totalPages":3}`))
	})
	mux.HandleFunc("GET /api/post/5/detail", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"postId":5,"userId":8,"title":"Hello board","content":"line one\nline two","createdAt":"2024-03-01T09:00:00","files":[{"fileId":11,"fileUrl":"abc_notes.txt","fileSize":2048}]}`))
	})
	mux.HandleFunc("GET /api/post/404/detail", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"post not found"}}`))
	})
	mux.HandleFunc("GET /api/post/5/comment", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(apiComments))
	})
	mux.HandleFunc("POST /api/post/5/comment", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		f.mu.Lock()
		f.lastComment = r.PostForm
		f.createCalls++
		f.mu.Unlock()
		w.Write([]byte(apiComments))
	})
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Email, Password string }
		json.NewDecoder(r.Body).Decode(&body)
		if body.Email != "bob@example.com" || body.Password != "secret1!" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"code":"INVALID_CREDENTIALS","message":"bad credentials"}}`))
			return
		}
		w.Write([]byte(`{"success":true,"username":"8","nickname":"bob","accessToken":"tok-8","expiresIn":3600}`))
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-8" {
			w.Write([]byte(`{"authenticated":false}`))
			return
		}
		w.Write([]byte(`{"authenticated":true,"username":"8","nickname":"bob"}`))
	})
	mux.HandleFunc("GET /api/logout", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	})
	mux.HandleFunc("GET /api/nicknameCheck", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`true`))
	})
	return mux
}

type testEnv struct {
	api    *fakeAPI
	server *Server
	srv    *httptest.Server
	client *http.Client
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	api := &fakeAPI{}
	apiSrv := httptest.NewServer(api.handler())
	t.Cleanup(apiSrv.Close)

	s, err := NewServer(gateway.New(apiSrv.URL+"/api", 2*time.Second), session.NewMemoryStore(time.Hour), opts)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)

	jar, _ := cookiejar.New(nil)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testEnv{api: api, server: s, srv: srv, client: client}
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.Get(e.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := e.client.PostForm(e.srv.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	readBody(t, resp)
	return resp
}

func (e *testEnv) postJSON(t *testing.T, path string, body any, out any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(body)
	resp, err := e.client.Post(e.srv.URL+path, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	e.get(t, "/")
	resp := e.postForm(t, "/login", url.Values{"email": {"bob@example.com"}, "password": {"secret1!"}})
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Fatalf("login: status = %d, location = %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

// openPost opens post 5 and returns the view path.
func (e *testEnv) openPost(t *testing.T) string {
	t.Helper()
	resp, _ := e.get(t, "/post/5")
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("open post: status = %d", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "/view/") {
		t.Fatalf("open post: location = %q", loc)
	}
	return loc
}

// ============================================
// Board
// ============================================

func TestList(t *testing.T) {
	e := newTestEnv(t, Options{})

	resp, body := e.get(t, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "Hello board") || !strings.Contains(body, `href="/post/5"`) {
		t.Errorf("listing does not contain the post")
	}
	if !strings.Contains(body, `href="/?page=2"`) {
		t.Errorf("listing does not link to page 2")
	}
	if !strings.Contains(body, "guest") {
		t.Errorf("anonymous header should show guest")
	}

	var sid bool
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie && c.HttpOnly {
			sid = true
		}
	}
	if !sid {
		t.Errorf("session cookie not set")
	}
}

func TestView_Anonymous(t *testing.T) {
	e := newTestEnv(t, Options{})
	view := e.openPost(t)

	resp, body := e.get(t, view)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	for _, want := range []string{"line one", "line two", "notes.txt", "2.0 KB", "This comment has been deleted.", "margin-left: 30px"} {
		if !strings.Contains(body, want) {
			t.Errorf("detail page missing %q", want)
		}
	}
	if strings.Contains(body, "/comment/1/reply") {
		t.Errorf("anonymous viewer should not get reply controls")
	}
	if strings.Contains(body, `name="content"`) {
		t.Errorf("anonymous viewer should not get the composer")
	}
}

func TestOpenPost_Unavailable(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.get(t, "/")

	resp, _ := e.get(t, "/post/404")
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Fatalf("status = %d, location = %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	_, body := e.get(t, "/")
	if !strings.Contains(body, "Unable to load the post.") {
		t.Errorf("flash notice not shown")
	}
}

func TestView_Expired(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.get(t, "/")

	resp, _ := e.get(t, "/view/does-not-exist")
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	_, body := e.get(t, "/")
	if !strings.Contains(body, NoticePageExpired) {
		t.Errorf("expired notice not shown")
	}
	// The notice is shown once.
	_, body = e.get(t, "/")
	if strings.Contains(body, NoticePageExpired) {
		t.Errorf("notice shown twice")
	}
}

func TestFile_RedirectsToAPI(t *testing.T) {
	e := newTestEnv(t, Options{})
	resp, _ := e.get(t, "/files/11")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	if !strings.HasSuffix(resp.Header.Get("Location"), "/api/files/11/download") {
		t.Errorf("location = %q", resp.Header.Get("Location"))
	}
}

// ============================================
// Login
// ============================================

func TestLogin_Failure(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.get(t, "/")

	resp := e.postForm(t, "/login", url.Values{"email": {"bob@example.com"}, "password": {"wrong"}})
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/login" {
		t.Fatalf("status = %d, location = %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	_, body := e.get(t, "/login")
	if !strings.Contains(body, "Incorrect email or password.") {
		t.Errorf("login failure notice not shown")
	}
}

func TestLogin_RememberEmail(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.get(t, "/")

	resp := e.postForm(t, "/login", url.Values{
		"email":    {"bob@example.com"},
		"password": {"secret1!"},
		"remember": {"1"},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}

	_, body := e.get(t, "/")
	if !strings.Contains(body, "bob") || strings.Contains(body, ">guest<") {
		t.Errorf("header should show the nickname after login")
	}

	e.postForm(t, "/logout", nil)
	_, body = e.get(t, "/login")
	if !strings.Contains(body, `value="bob@example.com"`) {
		t.Errorf("remembered email not prefilled")
	}
}

func TestLogin_RateLimited(t *testing.T) {
	e := newTestEnv(t, Options{LoginRateLimit: 0.001, LoginRateBurst: 1})
	e.get(t, "/")

	bad := url.Values{"email": {"bob@example.com"}, "password": {"wrong"}}
	e.postForm(t, "/login", bad)
	e.postForm(t, "/login", bad)

	_, body := e.get(t, "/login")
	if !strings.Contains(body, NoticeTooManyLogins) {
		t.Errorf("rate limit notice not shown")
	}
}

// ============================================
// Comments and the editor
// ============================================

func TestView_LoggedIn(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.login(t)
	view := e.openPost(t)

	_, body := e.get(t, view)
	if !strings.Contains(body, "/comment/1/reply") {
		t.Errorf("reply control missing")
	}
	if !strings.Contains(body, "/comment/2/edit") || strings.Contains(body, "/comment/1/edit") {
		t.Errorf("edit control should only be on the viewer's comments")
	}
	if !strings.Contains(body, "/post/delete") {
		t.Errorf("owner should be able to delete the post")
	}
}

func TestSubmitComment_Empty(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.login(t)
	view := e.openPost(t)

	resp := e.postForm(t, view+"/comment", url.Values{"content": {"   "}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	_, body := e.get(t, view)
	if !strings.Contains(body, "Please enter a comment.") {
		t.Errorf("empty comment notice not shown")
	}
	if n := e.api.creates(); n != 0 {
		t.Errorf("API called %d times for an empty comment", n)
	}
}

func TestReplyFlow(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.login(t)
	view := e.openPost(t)

	resp := e.postForm(t, view+"/comment/1/reply", nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("open reply: status = %d", resp.StatusCode)
	}
	_, body := e.get(t, view)
	if !strings.Contains(body, `value="@alice "`) {
		t.Fatalf("reply field not prefilled with the mention")
	}

	var out fieldResponse
	e.postJSON(t, view+"/editor/key", map[string]any{
		"key": "Backspace", "selectionStart": 7, "selectionEnd": 7,
	}, &out)
	if !out.Intercepted || out.Field.Text != "@alice " {
		t.Errorf("backspace at the prefix boundary: %+v", out)
	}

	e.postJSON(t, view+"/editor/key", map[string]any{
		"key": "h", "selectionStart": 7, "selectionEnd": 7,
	}, &out)
	if out.Intercepted || out.Field.Text != "@alice h" || out.Field.Start != 8 {
		t.Errorf("typing after the prefix: %+v", out)
	}

	resp = e.postForm(t, view+"/editor/submit", url.Values{"content": {"@alice hello"}})
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != view {
		t.Fatalf("submit: status = %d, location = %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	e.api.mu.Lock()
	got := e.api.lastComment
	e.api.mu.Unlock()
	if got.Get("parentCommentId") != "1" || got.Get("depth") != "1" || got.Get("commentContent") != "@alice hello" {
		t.Errorf("reply sent as %v", got)
	}

	// The editor closes after a successful reply.
	r := e.postJSON(t, view+"/editor/key", map[string]any{"key": "a"}, nil)
	if r.StatusCode != http.StatusConflict {
		t.Errorf("key after submit: status = %d, want 409", r.StatusCode)
	}
}

func TestEditorKey_WithoutSelectionKeepsCaret(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.login(t)
	view := e.openPost(t)
	e.postForm(t, view+"/comment/1/reply", nil)

	e.postJSON(t, view+"/editor/key", map[string]any{"key": "a"}, nil)
	var out fieldResponse
	e.postJSON(t, view+"/editor/key", map[string]any{"key": "b"}, &out)
	if out.Field.Text != "@alice ab" || out.Field.Start != 9 {
		t.Errorf("two keys in a row: %+v", out.Field)
	}
}

func TestEditorKey_EmojiOffsets(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.login(t)
	view := e.openPost(t)
	e.postForm(t, view+"/comment/1/reply", nil)

	var out fieldResponse
	e.postJSON(t, view+"/editor/text", map[string]any{"text": "@alice 😀ab"}, &out)
	if out.Field.Start != 11 {
		t.Fatalf("caret after text = %d, want 11", out.Field.Start)
	}

	e.postJSON(t, view+"/editor/key", map[string]any{
		"key": "Backspace", "selectionStart": 10, "selectionEnd": 10,
	}, &out)
	if out.Field.Text != "@alice 😀b" || out.Field.Start != 9 || out.Field.End != 9 {
		t.Errorf("backspace after emoji: %+v", out.Field)
	}
}

func TestEditorSubmit_PrefixRemoved(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.login(t)
	view := e.openPost(t)

	e.postForm(t, view+"/comment/1/reply", nil)
	e.postForm(t, view+"/editor/submit", url.Values{"content": {"hello"}})

	_, body := e.get(t, view)
	if !strings.Contains(body, NoticePrefixModified) {
		t.Errorf("prefix notice not shown")
	}
	if e.api.creates() != 0 {
		t.Errorf("API called without the mention")
	}
}

func TestOpenReply_DeletedComment(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.login(t)
	view := e.openPost(t)

	e.postForm(t, view+"/comment/3/reply", nil)
	r := e.postJSON(t, view+"/editor/click", map[string]any{"selectionStart": 0}, nil)
	if r.StatusCode != http.StatusConflict {
		t.Errorf("editor should stay closed for a deleted comment, status = %d", r.StatusCode)
	}
}

func TestEditorJSON_ExpiredView(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.get(t, "/")

	r := e.postJSON(t, "/view/nope/editor/key", map[string]any{"key": "a"}, nil)
	if r.StatusCode != http.StatusGone {
		t.Errorf("status = %d, want 410", r.StatusCode)
	}
}

// ============================================
// Registration
// ============================================

func TestRegisterFields(t *testing.T) {
	e := newTestEnv(t, Options{})
	_, body := e.get(t, "/register")

	i := strings.Index(body, `data-form="`)
	if i < 0 {
		t.Fatalf("register page has no form id")
	}
	formID := body[i+len(`data-form="`):]
	formID = formID[:strings.Index(formID, `"`)]
	base := "/register/" + formID

	var res fieldResult
	e.postJSON(t, base+"/phone", fieldEvent{Event: "input", Value: "01012345678"}, &res)
	if res.Value != "010-1234-5678" {
		t.Errorf("phone = %q, want 010-1234-5678", res.Value)
	}

	e.postJSON(t, base+"/nickname", fieldEvent{Event: "input", Value: "bob"}, &res)
	e.postJSON(t, base+"/nickname", fieldEvent{Event: "blur"}, &res)
	if !res.Feedback.OK {
		t.Errorf("nickname should be available: %+v", res.Feedback)
	}

	resp := e.postForm(t, base+"/", url.Values{"nickname": {"bob"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("incomplete form: status = %d, want 200", resp.StatusCode)
	}

	r := e.postJSON(t, "/register/unknown/phone", fieldEvent{Event: "input"}, nil)
	if r.StatusCode != http.StatusGone {
		t.Errorf("unknown form: status = %d, want 410", r.StatusCode)
	}
}
