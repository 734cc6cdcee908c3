package query

import (
	"context"
	"encoding/json"
	"time"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/activity"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/platform"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/shared"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/student"
)

// ──────────────────────────────────────────────────────────────────────────────
// In-memory fakes shared by the query handler tests.
// ──────────────────────────────────────────────────────────────────────────────

type fakeStudentRepo struct {
	students map[string]*student.Student
	getCalls int
}

func newFakeStudentRepo(students ...*student.Student) *fakeStudentRepo {
	r := &fakeStudentRepo{students: make(map[string]*student.Student)}
	for _, s := range students {
		r.students[s.ID] = s
	}
	return r
}

func (r *fakeStudentRepo) Create(_ context.Context, s *student.Student) error {
	r.students[s.ID] = s
	return nil
}

func (r *fakeStudentRepo) GetByID(_ context.Context, id string) (*student.Student, error) {
	r.getCalls++
	s, ok := r.students[id]
	if !ok {
		return nil, shared.NewDomainError("student", "GetByID", shared.ErrNotFound, "student not found")
	}
	copied := *s
	return &copied, nil
}

func (r *fakeStudentRepo) GetByEmail(_ context.Context, email student.Email) (*student.Student, error) {
	for _, s := range r.students {
		if s.Email == email {
			copied := *s
			return &copied, nil
		}
	}
	return nil, shared.NewDomainError("student", "GetByEmail", shared.ErrNotFound, "student not found")
}

func (r *fakeStudentRepo) Update(_ context.Context, s *student.Student) error {
	r.students[s.ID] = s
	return nil
}

func (r *fakeStudentRepo) Delete(_ context.Context, id string) error {
	delete(r.students, id)
	return nil
}

func (r *fakeStudentRepo) GetAll(_ context.Context, _ student.ListOptions) ([]*student.Student, error) {
	out := make([]*student.Student, 0, len(r.students))
	for _, s := range r.students {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeStudentRepo) Count(_ context.Context) (int, error) {
	return len(r.students), nil
}

type fakePlatformRepo struct {
	platforms []*platform.Platform
}

func newFakePlatformRepo() *fakePlatformRepo {
	return &fakePlatformRepo{platforms: []*platform.Platform{
		{ID: "plat-cc", Name: platform.CodeChef, Color: "#964b00"},
		{ID: "plat-cf", Name: platform.Codeforces, Color: "#1f8acb"},
		{ID: "plat-lc", Name: platform.LeetCode, Color: "#ffa116"},
	}}
}

func (r *fakePlatformRepo) GetByName(_ context.Context, name platform.Name) (*platform.Platform, error) {
	for _, p := range r.platforms {
		if p.Name.Normalize() == name.Normalize() {
			return p, nil
		}
	}
	return nil, shared.NewDomainError("platform", "GetByName", shared.ErrNotFound, "platform not found")
}

func (r *fakePlatformRepo) GetAll(_ context.Context) ([]*platform.Platform, error) {
	return r.platforms, nil
}

type fakeLinkRepo struct {
	links []*platform.Link
}

func (r *fakeLinkRepo) Create(_ context.Context, link *platform.Link) error {
	r.links = append(r.links, link)
	return nil
}

func (r *fakeLinkRepo) GetByStudentAndPlatform(_ context.Context, studentID, platformID string) (*platform.Link, error) {
	for _, l := range r.links {
		if l.StudentID == studentID && l.PlatformID == platformID {
			copied := *l
			return &copied, nil
		}
	}
	return nil, shared.NewDomainError("platform", "GetLink", shared.ErrLinkNotFound, "link not found")
}

func (r *fakeLinkRepo) GetByStudent(_ context.Context, studentID string) ([]*platform.Link, error) {
	var out []*platform.Link
	for _, l := range r.links {
		if l.StudentID == studentID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLinkRepo) GetByPlatform(_ context.Context, platformID string) ([]*platform.Link, error) {
	var out []*platform.Link
	for _, l := range r.links {
		if l.PlatformID == platformID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLinkRepo) UpdateSnapshot(_ context.Context, link *platform.Link) error { return nil }

func (r *fakeLinkRepo) UpdateHandle(_ context.Context, linkID string, handle platform.Handle) error {
	for _, l := range r.links {
		if l.ID == linkID {
			l.Handle = handle
			return nil
		}
	}
	return shared.NewDomainError("platform", "UpdateHandle", shared.ErrLinkNotFound, "no handle on file")
}

func (r *fakeLinkRepo) Delete(_ context.Context, linkID string) error {
	for i, l := range r.links {
		if l.ID == linkID {
			r.links = append(r.links[:i], r.links[i+1:]...)
			return nil
		}
	}
	return shared.NewDomainError("platform", "DeleteLink", shared.ErrLinkNotFound, "no handle on file")
}

type fakeScoreRepo struct {
	scores []*platform.Score
}

func (r *fakeScoreRepo) Upsert(_ context.Context, score *platform.Score) error {
	r.scores = append(r.scores, score)
	return nil
}

func (r *fakeScoreRepo) GetByStudentAndPlatform(_ context.Context, studentID, platformID string) (*platform.Score, error) {
	for _, s := range r.scores {
		if s.StudentID == studentID && s.PlatformID == platformID {
			copied := *s
			return &copied, nil
		}
	}
	return nil, shared.NewDomainError("platform", "GetScore", shared.ErrNotFound, "score not found")
}

// GetAll mirrors the real repository's ordering contract: score descending.
func (r *fakeScoreRepo) GetAll(_ context.Context) ([]*platform.Score, error) {
	out := make([]*platform.Score, len(r.scores))
	copy(out, r.scores)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Value > out[j-1].Value; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

type fakeActivityRepo struct {
	problems []activity.Problem
	contests []activity.Contest
}

func (r *fakeActivityRepo) SaveProblems(_ context.Context, problems []activity.Problem) error {
	r.problems = append(r.problems, problems...)
	return nil
}

func (r *fakeActivityRepo) SaveContests(_ context.Context, contests []activity.Contest) error {
	r.contests = append(r.contests, contests...)
	return nil
}

func (r *fakeActivityRepo) GetProblems(_ context.Context, studentID string, since time.Time) ([]activity.Problem, error) {
	var out []activity.Problem
	for _, p := range r.problems {
		if p.StudentID == studentID && (since.IsZero() || !p.SolvedAt.Before(since)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeActivityRepo) GetContests(_ context.Context, studentID string, since time.Time) ([]activity.Contest, error) {
	var out []activity.Contest
	for _, c := range r.contests {
		if c.StudentID == studentID && (since.IsZero() || !c.Date.Before(since)) {
			out = append(out, c)
		}
	}
	return out, nil
}

// fakeDashboardCache round-trips values through JSON, like the real cache.
type fakeDashboardCache struct {
	entries map[string][]byte
	hits    int
	writes  int
}

func newFakeDashboardCache() *fakeDashboardCache {
	return &fakeDashboardCache{entries: make(map[string][]byte)}
}

func (c *fakeDashboardCache) get(key string, dest interface{}) error {
	raw, ok := c.entries[key]
	if !ok {
		return shared.NewDomainError("cache", "Get", shared.ErrNotFound, "cache miss")
	}
	c.hits++
	return json.Unmarshal(raw, dest)
}

func (c *fakeDashboardCache) set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.writes++
	c.entries[key] = raw
	return nil
}

func (c *fakeDashboardCache) GetProgress(_ context.Context, studentID string, dest interface{}) error {
	return c.get("progress:"+studentID, dest)
}

func (c *fakeDashboardCache) SetProgress(_ context.Context, studentID string, value interface{}) error {
	return c.set("progress:"+studentID, value)
}

func (c *fakeDashboardCache) GetScoreBoard(_ context.Context, dest interface{}) error {
	return c.get("scoreboard", dest)
}

func (c *fakeDashboardCache) SetScoreBoard(_ context.Context, value interface{}) error {
	return c.set("scoreboard", value)
}

func (c *fakeDashboardCache) GetPlatforms(_ context.Context, dest interface{}) error {
	return c.get("platforms", dest)
}

func (c *fakeDashboardCache) SetPlatforms(_ context.Context, value interface{}) error {
	return c.set("platforms", value)
}
