package application_test

import (
	"context"
	"maps"
	"strconv"
	"sync"
	"time"

	"github.com/ericfisherdev/jobmatch/internal/application"
	"github.com/ericfisherdev/jobmatch/internal/domain/model"
	"github.com/ericfisherdev/jobmatch/internal/domain/port/driven"
)

// --- In-memory store ---

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore(seed map[string]string) *memStore {
	data := make(map[string]string, len(seed))
	maps.Copy(data, seed)
	return &memStore{data: data}
}

func (m *memStore) Get(_ context.Context, keys ...string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string)
	if len(keys) == 0 {
		maps.Copy(out, m.data)
		return out, nil
	}
	for _, k := range keys {
		if v, ok := m.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (m *memStore) Set(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	maps.Copy(m.data, values)
	return nil
}

func (m *memStore) Remove(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]string)
	return nil
}

func (m *memStore) value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *memStore) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

var (
	_ driven.CredentialStore = (*memStore)(nil)
	_ driven.CacheStore      = (*memStore)(nil)
)

// --- Scoring client mock ---

type mockScoringClient struct {
	mu sync.Mutex

	fetchResume   func(attempt int) (string, error)
	evaluate      func(attempt int) (model.EvaluationResult, error)
	fetchCredits  func(apiKey string) (model.CreditLookup, error)
	checkAuth     func(poll int) (model.IssuedCredential, error)
	resumeCalls   int
	evaluateCalls int
	creditsCalls  int
	authPolls     int
	evaluatedWith []string
	jobTexts      []string
}

func (m *mockScoringClient) FetchResume(_ context.Context, _ string) (string, error) {
	m.mu.Lock()
	m.resumeCalls++
	n := m.resumeCalls
	m.mu.Unlock()
	if m.fetchResume == nil {
		return "resume text", nil
	}
	return m.fetchResume(n)
}

func (m *mockScoringClient) Evaluate(_ context.Context, _ string, jobText string, resumeText string) (model.EvaluationResult, error) {
	m.mu.Lock()
	m.evaluateCalls++
	n := m.evaluateCalls
	m.evaluatedWith = append(m.evaluatedWith, resumeText)
	m.jobTexts = append(m.jobTexts, jobText)
	m.mu.Unlock()
	if m.evaluate == nil {
		return model.EvaluationResult{Score: 80, OverallRecommendation: model.RecommendationMoveForward}, nil
	}
	return m.evaluate(n)
}

func (m *mockScoringClient) FetchCredits(_ context.Context, apiKey string) (model.CreditLookup, error) {
	m.mu.Lock()
	m.creditsCalls++
	m.mu.Unlock()
	if m.fetchCredits == nil {
		return model.CreditLookup{Credits: 7}, nil
	}
	return m.fetchCredits(apiKey)
}

func (m *mockScoringClient) AuthPageURL(token string) string {
	return "https://example.test/auth/extension?token=" + token
}

func (m *mockScoringClient) CheckAuthStatus(_ context.Context, _ string) (model.IssuedCredential, error) {
	m.mu.Lock()
	m.authPolls++
	n := m.authPolls
	m.mu.Unlock()
	if m.checkAuth == nil {
		return model.IssuedCredential{}, driven.ErrUnauthorized
	}
	return m.checkAuth(n)
}

var _ driven.ScoringClient = (*mockScoringClient)(nil)

// --- Page opener mock ---

type mockOpener struct {
	opened []string
	closed []string
	err    error
}

func (m *mockOpener) Open(_ context.Context, url string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.opened = append(m.opened, url)
	return "page-1", nil
}

func (m *mockOpener) Close(_ context.Context, handle string) error {
	m.closed = append(m.closed, handle)
	return nil
}

var _ driven.PageOpener = (*mockOpener)(nil)

// --- Timing ---

// instantTimer satisfies backoff.Timer and fires immediately, recording waits.
type instantTimer struct {
	ch    chan time.Time
	waits []time.Duration
}

func (t *instantTimer) Start(d time.Duration) {
	t.waits = append(t.waits, d)
	t.ch = make(chan time.Time, 1)
	t.ch <- time.Time{}
}

func (t *instantTimer) Stop() {}

func (t *instantTimer) C() <-chan time.Time { return t.ch }

// recordingScheduler captures scheduled pre-cache jobs instead of running them.
type recordingScheduler struct {
	mu     sync.Mutex
	delays []time.Duration
	jobs   []func()
}

func (r *recordingScheduler) schedule(d time.Duration, f func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	r.jobs = append(r.jobs, f)
}

func (r *recordingScheduler) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// --- Wiring ---

var testNow = time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

type harness struct {
	creds  *memStore
	cache  *memStore
	client *mockScoringClient
	opener *mockOpener
	bus    *application.EventBus
	sched  *recordingScheduler
	timer  *instantTimer

	resumes     *application.ResumeService
	credits     *application.CreditsService
	evaluations *application.EvaluationService
	auth        *application.AuthService
	sessions    *application.SessionService
	dispatcher  *application.Dispatcher
}

func newHarness() *harness {
	h := &harness{
		creds:  newMemStore(nil),
		cache:  newMemStore(nil),
		client: &mockScoringClient{},
		opener: &mockOpener{},
		bus:    application.NewEventBus(),
		sched:  &recordingScheduler{},
		timer:  &instantTimer{},
	}
	clock := func() time.Time { return testNow }

	h.resumes = application.NewResumeService(h.creds, h.cache, h.client, application.DefaultPreCacheDelay)
	h.resumes.SetClock(clock)
	h.resumes.SetTimer(h.timer)
	h.resumes.SetScheduler(h.sched.schedule)

	h.credits = application.NewCreditsService(h.creds, h.cache, h.client, h.bus, h.resumes)

	h.evaluations = application.NewEvaluationService(h.creds, h.cache, h.client, h.resumes, h.credits)
	h.evaluations.SetClock(clock)
	h.evaluations.SetTimer(h.timer)

	h.auth = application.NewAuthService(h.creds, h.cache, h.client, h.opener, h.credits, h.resumes, h.bus,
		application.DefaultAuthPollInterval, application.DefaultAuthMaxPolls)
	h.auth.SetSleep(func(context.Context, time.Duration) error { return nil })
	h.auth.SetTokenSource(func() string { return "tok-123" })

	h.sessions = application.NewSessionService(h.creds, h.cache, h.bus)
	h.dispatcher = application.NewDispatcher(h.evaluations, h.credits, h.auth, h.sessions)
	return h
}

// login seeds a stored credential.
func (h *harness) login() {
	h.creds.data["apiKey"] = "key-abc"
	h.creds.data["userEmail"] = "jane@example.com"
}

// cacheResume seeds a cached résumé fetched at the given time.
func (h *harness) cacheResume(text string, at time.Time) {
	h.cache.data["cachedResume"] = text
	h.cache.data["resumeCacheTime"] = strconv.FormatInt(at.UnixMilli(), 10)
}
