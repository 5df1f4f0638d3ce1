package services

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"sidequest_portal/internal/backend"
	"sidequest_portal/internal/models"
	"sidequest_portal/internal/notify"
	"sidequest_portal/internal/store"
)

type recordedCall struct {
	Method string
	Path   string
	Body   any
}

type stub struct {
	body string
	err  error
}

// fakeAPI отвечает заготовками по "METHOD path" и записывает вызовы
type fakeAPI struct {
	mu    sync.Mutex
	calls []recordedCall
	stubs map[string][]stub
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{stubs: make(map[string][]stub)}
}

// on добавляет ответ. Несколько ответов на один ключ отдаются по очереди,
// последний повторяется.
func (f *fakeAPI) on(method, path, body string) *fakeAPI {
	f.stubs[method+" "+path] = append(f.stubs[method+" "+path], stub{body: body})
	return f
}

func (f *fakeAPI) onErr(method, path string, err error) *fakeAPI {
	f.stubs[method+" "+path] = append(f.stubs[method+" "+path], stub{err: err})
	return f
}

func (f *fakeAPI) Do(_ context.Context, method, path string, body, out any, _ ...backend.RequestOption) error {
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{Method: method, Path: path, Body: body})
	key := method + " " + path
	queue := f.stubs[key]
	var s stub
	switch {
	case len(queue) == 0:
		f.mu.Unlock()
		return &backend.HTTPError{Status: http.StatusNotFound, Message: "not stubbed: " + key}
	case len(queue) == 1:
		s = queue[0]
	default:
		s = queue[0]
		f.stubs[key] = queue[1:]
	}
	f.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	if out != nil && s.body != "" {
		return json.Unmarshal([]byte(s.body), out)
	}
	return nil
}

func (f *fakeAPI) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func (f *fakeAPI) last(method, path string) (recordedCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].Method == method && f.calls[i].Path == path {
			return f.calls[i], true
		}
	}
	return recordedCall{}, false
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeSession struct {
	token     string
	role      string
	destroyed bool
}

func (s *fakeSession) SetToken(token string) { s.token = token }
func (s *fakeSession) SetRole(role string)   { s.role = role }
func (s *fakeSession) GetRole() string       { return s.role }
func (s *fakeSession) IsAuthenticated() bool { return s.token != "" }
func (s *fakeSession) HasAdminRole() bool {
	return s.token != "" && models.UserRole(s.role).IsAdmin()
}
func (s *fakeSession) Destroy() {
	s.token, s.role = "", ""
	s.destroyed = true
}

type testScope struct {
	*Scope
	api     *fakeAPI
	session *fakeSession
	queue   *notify.Queue
}

func newScope(token, role string) *testScope {
	api := newFakeAPI()
	sess := &fakeSession{token: token, role: role}
	q := notify.NewQueue()
	return &testScope{
		Scope: &Scope{
			API:     api,
			State:   store.NewContainer("sess-1", store.NewState()),
			Session: sess,
			Notify:  q,
		},
		api:     api,
		session: sess,
		queue:   q,
	}
}

// withSubscriptions кладет список подписок в кэш, как после загрузки
func (ts *testScope) withSubscriptions(subs ...models.UserSubscription) *testScope {
	ts.State.Update(func(st store.State) store.State {
		st.Subscriptions = store.ReduceSubscriptions(st.Subscriptions, subs)
		return st
	})
	return ts
}

func (ts *testScope) errors() []string {
	var out []string
	for _, n := range ts.queue.Items() {
		if n.Level == notify.LevelError {
			out = append(out, n.Message)
		}
	}
	return out
}
