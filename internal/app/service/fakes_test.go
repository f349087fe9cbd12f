package service

import (
	"context"
	"strconv"
	"sync"

	"codejudge/internal/common"
	"codejudge/internal/domain/model"
	"codejudge/internal/platform/judge"
)

// fakeProblemRepo is an in-memory ProblemRepository with per-method error
// injection and a call log shared with fakeJudge so tests can assert the
// relative ordering of remote and local mutations.
type fakeProblemRepo struct {
	mu        sync.Mutex
	problems  map[string]*model.Problem
	testCases map[string]*model.TestCase

	createErr   error
	updateErr   error
	deleteErr   error
	addTCErr    error
	deleteTCErr error
	calls       *callLog
}

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) index(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, c := range l.calls {
		if c == name {
			return i
		}
	}
	return -1
}

func newFakeProblemRepo() *fakeProblemRepo {
	return &fakeProblemRepo{
		problems:  make(map[string]*model.Problem),
		testCases: make(map[string]*model.TestCase),
	}
}

func (r *fakeProblemRepo) CreateProblem(_ context.Context, p *model.Problem) error {
	r.calls.add("repo.CreateProblem")
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.problems[p.ID] = &cp
	return nil
}

func (r *fakeProblemRepo) UpdateProblem(_ context.Context, p *model.Problem) error {
	r.calls.add("repo.UpdateProblem")
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.problems[p.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *p
	r.problems[p.ID] = &cp
	return nil
}

func (r *fakeProblemRepo) DeleteProblem(_ context.Context, id string) error {
	r.calls.add("repo.DeleteProblem")
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.problems[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.problems, id)
	return nil
}

func (r *fakeProblemRepo) FindProblemByID(_ context.Context, id string) (*model.Problem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.problems[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProblemRepo) ListProblems(_ context.Context) ([]model.Problem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Problem, 0, len(r.problems))
	for _, p := range r.problems {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProblemRepo) AddTestCase(_ context.Context, tc *model.TestCase) error {
	r.calls.add("repo.AddTestCase")
	if r.addTCErr != nil {
		return r.addTCErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *tc
	r.testCases[tc.ID] = &cp
	return nil
}

func (r *fakeProblemRepo) FindTestCase(_ context.Context, problemID, testCaseID string) (*model.TestCase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tc, ok := r.testCases[testCaseID]
	if !ok || tc.ProblemID != problemID {
		return nil, common.ErrNotFound
	}
	cp := *tc
	return &cp, nil
}

func (r *fakeProblemRepo) GetTestCasesByProblemID(_ context.Context, problemID string) ([]model.TestCase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.TestCase
	for _, tc := range r.testCases {
		if tc.ProblemID == problemID {
			out = append(out, *tc)
		}
	}
	return out, nil
}

func (r *fakeProblemRepo) DeleteTestCase(_ context.Context, problemID, testCaseID string) error {
	r.calls.add("repo.DeleteTestCase")
	if r.deleteTCErr != nil {
		return r.deleteTCErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tc, ok := r.testCases[testCaseID]
	if !ok || tc.ProblemID != problemID {
		return common.ErrNotFound
	}
	delete(r.testCases, testCaseID)
	return nil
}

// fakeJudge is an in-memory judge.Client. Submission statuses are served from
// the statuses slice, one element per FetchSubmission call, repeating the last
// element once exhausted.
type fakeJudge struct {
	mu sync.Mutex

	createProblemErr error
	updateProblemErr error
	deleteProblemErr error
	createTCErr      error
	setActiveErr     error
	listErr          error
	createSubErr     error
	fetchErr         error

	compilers []model.Compiler
	statuses  []judge.SubmissionStatus

	nextProblemID int
	nextTestID    int
	fetchCount    int
	listCount     int
	deactivated   []string

	calls *callLog
}

func newFakeJudge() *fakeJudge {
	return &fakeJudge{
		compilers: []model.Compiler{{ID: 116, Name: "Python"}, {ID: 11, Name: "C"}},
	}
}

func (j *fakeJudge) CreateProblem(_ context.Context, name, _ string) (*judge.CreatedProblem, error) {
	j.calls.add("judge.CreateProblem")
	if j.createProblemErr != nil {
		return nil, j.createProblemErr
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.nextProblemID++
	id := strconv.Itoa(j.nextProblemID)
	return &judge.CreatedProblem{ID: id, Code: "PROB" + id}, nil
}

func (j *fakeJudge) UpdateProblem(_ context.Context, _, _, _ string) error {
	j.calls.add("judge.UpdateProblem")
	return j.updateProblemErr
}

func (j *fakeJudge) DeleteProblem(_ context.Context, _ string) error {
	j.calls.add("judge.DeleteProblem")
	return j.deleteProblemErr
}

func (j *fakeJudge) CreateTestCase(_ context.Context, _, _, _ string, _ int) (string, error) {
	j.calls.add("judge.CreateTestCase")
	if j.createTCErr != nil {
		return "", j.createTCErr
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.nextTestID++
	return strconv.Itoa(j.nextTestID), nil
}

func (j *fakeJudge) SetTestCaseActive(_ context.Context, _, remoteTestID string, active bool) error {
	j.calls.add("judge.SetTestCaseActive")
	if j.setActiveErr != nil {
		return j.setActiveErr
	}
	if !active {
		j.mu.Lock()
		j.deactivated = append(j.deactivated, remoteTestID)
		j.mu.Unlock()
	}
	return nil
}

func (j *fakeJudge) ListCompilers(_ context.Context) ([]model.Compiler, error) {
	j.mu.Lock()
	j.listCount++
	j.mu.Unlock()
	if j.listErr != nil {
		return nil, j.listErr
	}
	return j.compilers, nil
}

func (j *fakeJudge) CreateSubmission(_ context.Context, _ string, _ int, _ string) (string, error) {
	j.calls.add("judge.CreateSubmission")
	if j.createSubErr != nil {
		return "", j.createSubErr
	}
	return "9001", nil
}

func (j *fakeJudge) FetchSubmission(_ context.Context, _ string) (*judge.SubmissionStatus, error) {
	if j.fetchErr != nil {
		return nil, j.fetchErr
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	idx := j.fetchCount
	if idx >= len(j.statuses) {
		idx = len(j.statuses) - 1
	}
	j.fetchCount++
	st := j.statuses[idx]
	return &st, nil
}

// fakeCompilerCache is a plain in-memory CompilerCache.
type fakeCompilerCache struct {
	mu        sync.Mutex
	compilers []model.Compiler
	loaded    bool
	puts      int
}

func (c *fakeCompilerCache) Get(_ context.Context) ([]model.Compiler, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compilers, c.loaded
}

func (c *fakeCompilerCache) Put(_ context.Context, compilers []model.Compiler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.compilers = compilers
	c.loaded = true
	c.puts++
}

// fakeNotifier records dispatched notifications and can fail on demand.
type fakeNotifier struct {
	mu     sync.Mutex
	err    error
	events []model.VerdictNotification
}

func (n *fakeNotifier) Dispatch(_ context.Context, event model.VerdictNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, event)
	return nil
}

// fakeUserRepo covers only what the orchestrator and auth tests need.
type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]*model.User
	byEmail map[string]*model.User

	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:   make(map[string]*model.User),
		byEmail: make(map[string]*model.User),
	}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return common.ErrConflict
	}
	cp := *u
	r.users[u.ID] = &cp
	r.byEmail[u.Email] = &cp
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	delete(r.byEmail, u.Email)
	delete(r.users, id)
	return nil
}
