package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codetrack-hub/codetrack-backend/internal/application/command"
	"github.com/codetrack-hub/codetrack-backend/internal/application/query"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/activity"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/platform"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/shared"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/student"
	"github.com/codetrack-hub/codetrack-backend/internal/infrastructure/external"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes wired through the real command and query handlers.
// ──────────────────────────────────────────────────────────────────────────────

type memStudentRepo struct {
	students map[string]*student.Student
}

func (r *memStudentRepo) Create(_ context.Context, s *student.Student) error {
	for _, existing := range r.students {
		if existing.Email == s.Email {
			return shared.NewDomainError("student", "Create", shared.ErrAlreadyExists, "email taken")
		}
	}
	r.students[s.ID] = s
	return nil
}

func (r *memStudentRepo) GetByID(_ context.Context, id string) (*student.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, shared.NewDomainError("student", "GetByID", shared.ErrNotFound, "student not found")
	}
	copied := *s
	return &copied, nil
}

func (r *memStudentRepo) GetByEmail(_ context.Context, email student.Email) (*student.Student, error) {
	for _, s := range r.students {
		if s.Email == email {
			copied := *s
			return &copied, nil
		}
	}
	return nil, shared.NewDomainError("student", "GetByEmail", shared.ErrNotFound, "student not found")
}

func (r *memStudentRepo) Update(_ context.Context, s *student.Student) error {
	if _, ok := r.students[s.ID]; !ok {
		return shared.NewDomainError("student", "Update", shared.ErrNotFound, "student not found")
	}
	r.students[s.ID] = s
	return nil
}

func (r *memStudentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.students[id]; !ok {
		return shared.NewDomainError("student", "Delete", shared.ErrNotFound, "student not found")
	}
	delete(r.students, id)
	return nil
}

func (r *memStudentRepo) GetAll(_ context.Context, _ student.ListOptions) ([]*student.Student, error) {
	out := make([]*student.Student, 0, len(r.students))
	for _, s := range r.students {
		out = append(out, s)
	}
	return out, nil
}

func (r *memStudentRepo) Count(_ context.Context) (int, error) { return len(r.students), nil }

type memPlatformRepo struct{ platforms []*platform.Platform }

func (r *memPlatformRepo) GetByName(_ context.Context, name platform.Name) (*platform.Platform, error) {
	for _, p := range r.platforms {
		if p.Name.Normalize() == name.Normalize() {
			return p, nil
		}
	}
	return nil, shared.NewDomainError("platform", "GetByName", shared.ErrNotFound, "platform not found")
}

func (r *memPlatformRepo) GetAll(_ context.Context) ([]*platform.Platform, error) {
	return r.platforms, nil
}

type memLinkRepo struct{ links map[string]*platform.Link }

func linkKey(studentID, platformID string) string { return studentID + "/" + platformID }

func (r *memLinkRepo) Create(_ context.Context, l *platform.Link) error {
	key := linkKey(l.StudentID, l.PlatformID)
	if _, ok := r.links[key]; ok {
		return shared.NewDomainError("platform", "CreateLink", shared.ErrAlreadyExists, "link exists")
	}
	r.links[key] = l
	return nil
}

func (r *memLinkRepo) GetByStudentAndPlatform(_ context.Context, studentID, platformID string) (*platform.Link, error) {
	l, ok := r.links[linkKey(studentID, platformID)]
	if !ok {
		return nil, shared.NewDomainError("platform", "GetLink", shared.ErrLinkNotFound, "no handle on file")
	}
	copied := *l
	return &copied, nil
}

func (r *memLinkRepo) GetByStudent(_ context.Context, studentID string) ([]*platform.Link, error) {
	var out []*platform.Link
	for _, l := range r.links {
		if l.StudentID == studentID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memLinkRepo) GetByPlatform(_ context.Context, platformID string) ([]*platform.Link, error) {
	var out []*platform.Link
	for _, l := range r.links {
		if l.PlatformID == platformID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memLinkRepo) UpdateSnapshot(_ context.Context, l *platform.Link) error {
	key := linkKey(l.StudentID, l.PlatformID)
	if _, ok := r.links[key]; !ok {
		return shared.NewDomainError("platform", "UpdateSnapshot", shared.ErrLinkNotFound, "no handle on file")
	}
	r.links[key] = l
	return nil
}

func (r *memLinkRepo) UpdateHandle(_ context.Context, linkID string, handle platform.Handle) error {
	for _, l := range r.links {
		if l.ID == linkID {
			l.Handle = handle
			return nil
		}
	}
	return shared.NewDomainError("platform", "UpdateHandle", shared.ErrLinkNotFound, "no handle on file")
}

func (r *memLinkRepo) Delete(_ context.Context, linkID string) error {
	for key, l := range r.links {
		if l.ID == linkID {
			delete(r.links, key)
			return nil
		}
	}
	return shared.NewDomainError("platform", "DeleteLink", shared.ErrLinkNotFound, "no handle on file")
}

type memScoreRepo struct{ scores map[string]*platform.Score }

func (r *memScoreRepo) Upsert(_ context.Context, s *platform.Score) error {
	r.scores[linkKey(s.StudentID, s.PlatformID)] = s
	return nil
}

func (r *memScoreRepo) GetByStudentAndPlatform(_ context.Context, studentID, platformID string) (*platform.Score, error) {
	s, ok := r.scores[linkKey(studentID, platformID)]
	if !ok {
		return nil, shared.NewDomainError("platform", "GetScore", shared.ErrNotFound, "no score")
	}
	copied := *s
	return &copied, nil
}

func (r *memScoreRepo) GetAll(_ context.Context) ([]*platform.Score, error) {
	out := make([]*platform.Score, 0, len(r.scores))
	for _, s := range r.scores {
		out = append(out, s)
	}
	return out, nil
}

type memActivityRepo struct {
	problems []activity.Problem
	contests []activity.Contest
}

func (r *memActivityRepo) SaveProblems(_ context.Context, p []activity.Problem) error {
	r.problems = append(r.problems, p...)
	return nil
}

func (r *memActivityRepo) SaveContests(_ context.Context, c []activity.Contest) error {
	r.contests = append(r.contests, c...)
	return nil
}

func (r *memActivityRepo) GetProblems(_ context.Context, studentID string, _ time.Time) ([]activity.Problem, error) {
	var out []activity.Problem
	for _, p := range r.problems {
		if p.StudentID == studentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memActivityRepo) GetContests(_ context.Context, studentID string, _ time.Time) ([]activity.Contest, error) {
	var out []activity.Contest
	for _, c := range r.contests {
		if c.StudentID == studentID {
			out = append(out, c)
		}
	}
	return out, nil
}

type stubAdapter struct {
	activity platform.RawActivity
	err      error
}

func (a *stubAdapter) Name() platform.Name { return platform.Codeforces }

func (a *stubAdapter) Fetch(_ context.Context, _ platform.Handle) (*platform.RawActivity, error) {
	if a.err != nil {
		return nil, a.err
	}
	copied := a.activity
	return &copied, nil
}

type stubHealth struct{ failures map[string]error }

func (h *stubHealth) Check(_ context.Context) map[string]error {
	out := map[string]error{"postgres": nil, "redis": nil}
	for k, v := range h.failures {
		out[k] = v
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Test server assembly
// ──────────────────────────────────────────────────────────────────────────────

type testEnv struct {
	server   *Server
	students *memStudentRepo
	links    *memLinkRepo
	scores   *memScoreRepo
	adapter  *stubAdapter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	students := &memStudentRepo{students: map[string]*student.Student{
		"stu-1": {ID: "stu-1", Name: "Aruzhan", Email: "aruzhan@example.com", IsActive: true},
	}}
	platforms := &memPlatformRepo{platforms: []*platform.Platform{
		{ID: "plat-cf", Name: platform.Codeforces},
		{ID: "plat-lc", Name: platform.LeetCode},
	}}
	links := &memLinkRepo{links: map[string]*platform.Link{
		"stu-1/plat-cf": {ID: "link-1", StudentID: "stu-1", PlatformID: "plat-cf", Handle: "tourist"},
	}}
	scores := &memScoreRepo{scores: map[string]*platform.Score{}}
	activities := &memActivityRepo{}

	adapter := &stubAdapter{activity: platform.RawActivity{
		Handle: "tourist", CurrentRating: 1500, MaxRating: 1600,
		ProblemsSolved: 100, ContestsParticipated: 10,
	}}
	registry := external.NewRegistry(adapter)

	syncHandler := command.NewSyncPlatformHandler(platforms, links, scores, registry, nil,
		command.WithActivityRepository(activities))
	studentHandler := command.NewStudentHandler(students, nil, nil)
	linkHandler := command.NewLinkHandler(students, platforms, links, nil, nil)

	deps := Dependencies{
		SyncHandler:       syncHandler,
		StudentHandler:    studentHandler,
		LinkHandler:       linkHandler,
		StudentsHandler:   query.NewListStudentsHandler(students),
		ProgressHandler:   query.NewGetStudentProgressHandler(students, platforms, links, scores, activities, nil, nil, nil),
		ScoreBoardHandler: query.NewGetScoreBoardHandler(students, platforms, links, scores, nil, nil, nil),
		PlatformsHandler:  query.NewGetPlatformsHandler(platforms, nil, nil),
		HealthChecker:     &stubHealth{},
	}

	return &testEnv{
		server:   NewServer(DefaultConfig(), deps),
		students: students,
		links:    links,
		scores:   scores,
		adapter:  adapter,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, JSONResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)

	var envelope JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestHandleSync(t *testing.T) {
	env := newTestEnv(t)

	rec, envelope := env.do(t, http.MethodPost, "/api/v1/sync",
		syncRequest{StudentID: "stu-1", Platform: "codeforces"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope.Success)

	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var resp syncResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, 400, resp.Score)
	assert.Equal(t, "tourist", resp.Handle)
}

func TestHandleSync_DefaultsToCodeforces(t *testing.T) {
	env := newTestEnv(t)

	rec, envelope := env.do(t, http.MethodPost, "/api/v1/sync",
		syncRequest{StudentID: "stu-1"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope.Success)

	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var resp syncResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, "codeforces", resp.Platform)
	assert.Equal(t, 400, resp.Score)
}

func TestHandleSync_UnsupportedPlatform(t *testing.T) {
	env := newTestEnv(t)
	env.links.links["stu-1/plat-lc"] = &platform.Link{
		ID: "link-2", StudentID: "stu-1", PlatformID: "plat-lc", Handle: "someone",
	}

	rec, envelope := env.do(t, http.MethodPost, "/api/v1/sync",
		syncRequest{StudentID: "stu-1", Platform: "leetcode"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "unsupported_platform", envelope.Error.Code)
}

func TestHandleSync_NoLink(t *testing.T) {
	env := newTestEnv(t)
	delete(env.links.links, "stu-1/plat-cf")

	rec, envelope := env.do(t, http.MethodPost, "/api/v1/sync",
		syncRequest{StudentID: "stu-1", Platform: "codeforces"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "link_not_found", envelope.Error.Code)
}

func TestHandleSync_RemoteFailureMapsToBadGateway(t *testing.T) {
	env := newTestEnv(t)
	env.adapter.err = shared.NewDomainError("platform", "Fetch", shared.ErrTransient, "remote down")

	rec, envelope := env.do(t, http.MethodPost, "/api/v1/sync",
		syncRequest{StudentID: "stu-1", Platform: "codeforces"})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "transient", envelope.Error.Code)
}

func TestHandleSync_MalformedBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	env.server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec, envelope := env.do(t, http.MethodPost, "/api/v1/students/",
		registerStudentRequest{Name: "Bekzat", Email: "bekzat@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code)

	data, _ := json.Marshal(envelope.Data)
	var created query.StudentDTO
	require.NoError(t, json.Unmarshal(data, &created))
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.IsActive)

	// Duplicate email conflicts.
	rec, _ = env.do(t, http.MethodPost, "/api/v1/students/",
		registerStudentRequest{Name: "Other", Email: "bekzat@example.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = env.do(t, http.MethodDelete, "/api/v1/students/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodDelete, "/api/v1/students/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLinkAndUnlink(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodPost, "/api/v1/students/stu-1/platforms/",
		linkRequest{Platform: "leetcode", Handle: "aruzhan_lc"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Linking the same platform twice conflicts.
	rec, _ = env.do(t, http.MethodPost, "/api/v1/students/stu-1/platforms/",
		linkRequest{Platform: "leetcode", Handle: "another"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = env.do(t, http.MethodPut, "/api/v1/students/stu-1/platforms/leetcode",
		linkRequest{Handle: "aruzhan_lc2"})
	require.Equal(t, http.StatusOK, rec.Code)
	link, err := env.links.GetByStudentAndPlatform(context.Background(), "stu-1", "plat-lc")
	require.NoError(t, err)
	assert.Equal(t, "aruzhan_lc2", link.Handle.String())

	rec, _ = env.do(t, http.MethodDelete, "/api/v1/students/stu-1/platforms/leetcode", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodDelete, "/api/v1/students/stu-1/platforms/leetcode", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProgressEndpoint(t *testing.T) {
	env := newTestEnv(t)

	// Sync first so the progress view has a snapshot and score.
	rec, _ := env.do(t, http.MethodPost, "/api/v1/sync",
		syncRequest{StudentID: "stu-1", Platform: "codeforces"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, envelope := env.do(t, http.MethodGet, "/api/v1/students/stu-1/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data, _ := json.Marshal(envelope.Data)
	var dto query.StudentProgressDTO
	require.NoError(t, json.Unmarshal(data, &dto))
	assert.Equal(t, "Aruzhan", dto.StudentName)
	require.Len(t, dto.Links, 1)
	assert.Equal(t, 400, dto.Links[0].Score)
	assert.Len(t, dto.Heatmap, 90)
}

func TestScoreBoardEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodPost, "/api/v1/sync",
		syncRequest{StudentID: "stu-1", Platform: "codeforces"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, envelope := env.do(t, http.MethodGet, "/api/v1/scores", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data, _ := json.Marshal(envelope.Data)
	var board query.ScoreBoardDTO
	require.NoError(t, json.Unmarshal(data, &board))
	require.Equal(t, 1, board.Total)
	assert.Equal(t, 1, board.Entries[0].Rank)
	assert.Equal(t, "Aruzhan", board.Entries[0].StudentName)
	assert.Equal(t, 400, board.Entries[0].Score)
}

func TestPlatformsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec, envelope := env.do(t, http.MethodGet, "/api/v1/platforms", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data, _ := json.Marshal(envelope.Data)
	var platforms []query.PlatformDTO
	require.NoError(t, json.Unmarshal(data, &platforms))
	assert.Len(t, platforms, 2)
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec, envelope := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope.Success)
}

func TestHealthEndpoint_Degraded(t *testing.T) {
	env := newTestEnv(t)
	env.server.deps.HealthChecker = &stubHealth{failures: map[string]error{
		"redis": errors.New("connection refused"),
	}}

	rec, _ := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
