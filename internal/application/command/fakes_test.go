package command

import (
	"context"
	"time"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/activity"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/platform"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/shared"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/student"
)

// In-memory fakes shared by the command handler tests.

type fakePlatformRepo struct {
	platforms map[platform.Name]*platform.Platform
}

func newFakePlatformRepo() *fakePlatformRepo {
	return &fakePlatformRepo{platforms: map[platform.Name]*platform.Platform{
		platform.Codeforces: {ID: "plat-cf", Name: platform.Codeforces},
		platform.LeetCode:   {ID: "plat-lc", Name: platform.LeetCode},
		platform.CodeChef:   {ID: "plat-cc", Name: platform.CodeChef},
	}}
}

func (f *fakePlatformRepo) GetByName(_ context.Context, name platform.Name) (*platform.Platform, error) {
	if p, ok := f.platforms[name.Normalize()]; ok {
		return p, nil
	}
	return nil, shared.NewDomainError("platform", "GetByName", shared.ErrNotFound,
		"platform "+string(name)+" not found")
}

func (f *fakePlatformRepo) GetAll(_ context.Context) ([]*platform.Platform, error) {
	var out []*platform.Platform
	for _, p := range f.platforms {
		out = append(out, p)
	}
	return out, nil
}

type fakeLinkRepo struct {
	links           map[string]*platform.Link // keyed by studentID+"/"+platformID
	snapshotUpdates int
	inserts         int
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: make(map[string]*platform.Link)}
}

func linkKey(studentID, platformID string) string { return studentID + "/" + platformID }

func (f *fakeLinkRepo) Create(_ context.Context, link *platform.Link) error {
	key := linkKey(link.StudentID, link.PlatformID)
	if _, ok := f.links[key]; ok {
		return shared.NewDomainError("platform", "CreateLink", shared.ErrAlreadyExists, "link exists")
	}
	f.inserts++
	cp := *link
	f.links[key] = &cp
	return nil
}

func (f *fakeLinkRepo) GetByStudentAndPlatform(_ context.Context, studentID, platformID string) (*platform.Link, error) {
	if link, ok := f.links[linkKey(studentID, platformID)]; ok {
		cp := *link
		return &cp, nil
	}
	return nil, shared.NewDomainError("platform", "GetLink", shared.ErrLinkNotFound, "no link")
}

func (f *fakeLinkRepo) GetByStudent(_ context.Context, studentID string) ([]*platform.Link, error) {
	var out []*platform.Link
	for _, link := range f.links {
		if link.StudentID == studentID {
			cp := *link
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeLinkRepo) GetByPlatform(_ context.Context, platformID string) ([]*platform.Link, error) {
	var out []*platform.Link
	for _, link := range f.links {
		if link.PlatformID == platformID {
			cp := *link
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeLinkRepo) UpdateSnapshot(_ context.Context, link *platform.Link) error {
	for key, existing := range f.links {
		if existing.ID == link.ID {
			f.snapshotUpdates++
			cp := *link
			f.links[key] = &cp
			return nil
		}
	}
	return shared.NewDomainError("platform", "UpdateSnapshot", shared.ErrLinkNotFound, "link not found")
}

func (f *fakeLinkRepo) UpdateHandle(_ context.Context, linkID string, handle platform.Handle) error {
	for _, link := range f.links {
		if link.ID == linkID {
			link.Handle = handle
			return nil
		}
	}
	return shared.NewDomainError("platform", "UpdateHandle", shared.ErrLinkNotFound, "link not found")
}

func (f *fakeLinkRepo) Delete(_ context.Context, linkID string) error {
	for key, link := range f.links {
		if link.ID == linkID {
			delete(f.links, key)
			return nil
		}
	}
	return shared.NewDomainError("platform", "DeleteLink", shared.ErrLinkNotFound, "link not found")
}

type fakeScoreRepo struct {
	scores  map[string]*platform.Score // keyed by studentID+"/"+platformID
	upserts int
	failOn  int // fail the n-th upsert (0 = never)
}

func newFakeScoreRepo() *fakeScoreRepo {
	return &fakeScoreRepo{scores: make(map[string]*platform.Score)}
}

func (f *fakeScoreRepo) Upsert(_ context.Context, score *platform.Score) error {
	f.upserts++
	if f.failOn != 0 && f.upserts == f.failOn {
		return shared.NewDomainError("platform", "UpsertScore", shared.ErrPersist, "boom")
	}
	cp := *score
	f.scores[linkKey(score.StudentID, score.PlatformID)] = &cp
	return nil
}

func (f *fakeScoreRepo) GetByStudentAndPlatform(_ context.Context, studentID, platformID string) (*platform.Score, error) {
	if s, ok := f.scores[linkKey(studentID, platformID)]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, shared.NewDomainError("platform", "GetScore", shared.ErrNotFound, "no score")
}

func (f *fakeScoreRepo) GetAll(_ context.Context) ([]*platform.Score, error) {
	var out []*platform.Score
	for _, s := range f.scores {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

type fakeActivityRepo struct {
	problems map[string][]activity.Problem
	contests map[string][]activity.Contest
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{
		problems: make(map[string][]activity.Problem),
		contests: make(map[string][]activity.Contest),
	}
}

func (f *fakeActivityRepo) SaveProblems(_ context.Context, problems []activity.Problem) error {
	for _, p := range problems {
		f.problems[p.StudentID] = append(f.problems[p.StudentID], p)
	}
	return nil
}

func (f *fakeActivityRepo) SaveContests(_ context.Context, contests []activity.Contest) error {
	for _, c := range contests {
		f.contests[c.StudentID] = append(f.contests[c.StudentID], c)
	}
	return nil
}

func (f *fakeActivityRepo) GetProblems(_ context.Context, studentID string, _ time.Time) ([]activity.Problem, error) {
	return f.problems[studentID], nil
}

func (f *fakeActivityRepo) GetContests(_ context.Context, studentID string, _ time.Time) ([]activity.Contest, error) {
	return f.contests[studentID], nil
}

type fakeStudentRepo struct {
	students map[string]*student.Student
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[string]*student.Student)}
}

func (f *fakeStudentRepo) Create(_ context.Context, s *student.Student) error {
	for _, existing := range f.students {
		if existing.Email == s.Email {
			return shared.NewDomainError("student", "Create", shared.ErrAlreadyExists, "email taken")
		}
	}
	cp := *s
	f.students[s.ID] = &cp
	return nil
}

func (f *fakeStudentRepo) GetByID(_ context.Context, id string) (*student.Student, error) {
	if s, ok := f.students[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, shared.NewDomainError("student", "GetByID", shared.ErrNotFound, "student not found")
}

func (f *fakeStudentRepo) GetByEmail(_ context.Context, email student.Email) (*student.Student, error) {
	for _, s := range f.students {
		if s.Email == email {
			cp := *s
			return &cp, nil
		}
	}
	return nil, shared.NewDomainError("student", "GetByEmail", shared.ErrNotFound, "student not found")
}

func (f *fakeStudentRepo) Update(_ context.Context, s *student.Student) error {
	if _, ok := f.students[s.ID]; !ok {
		return shared.NewDomainError("student", "Update", shared.ErrNotFound, "student not found")
	}
	cp := *s
	f.students[s.ID] = &cp
	return nil
}

func (f *fakeStudentRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.students[id]; !ok {
		return shared.NewDomainError("student", "Delete", shared.ErrNotFound, "student not found")
	}
	delete(f.students, id)
	return nil
}

func (f *fakeStudentRepo) GetAll(_ context.Context, opts student.ListOptions) ([]*student.Student, error) {
	var out []*student.Student
	for _, s := range f.students {
		if !opts.IncludeInactive && !s.IsActive {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	// crude pagination, enough for tests
	if opts.Offset >= len(out) {
		return nil, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (f *fakeStudentRepo) Count(_ context.Context) (int, error) {
	return len(f.students), nil
}

// fakeAdapter implements platform.Adapter and, optionally, the detail
// capability.
type fakeAdapter struct {
	name       platform.Name
	activity   platform.RawActivity
	detail     *platform.Detail
	err        error
	fetchCalls int
}

func (f *fakeAdapter) Name() platform.Name { return f.name }

func (f *fakeAdapter) Fetch(_ context.Context, _ platform.Handle) (*platform.RawActivity, error) {
	f.fetchCalls++
	if f.err != nil {
		return nil, f.err
	}
	cp := f.activity
	return &cp, nil
}

type fakeDetailAdapter struct {
	fakeAdapter
}

func (f *fakeDetailAdapter) FetchDetail(_ context.Context, _ platform.Handle) (*platform.Detail, error) {
	f.fetchCalls++
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.detail
	return &cp, nil
}

type fakeInvalidator struct {
	invalidated []string
}

func (f *fakeInvalidator) InvalidateStudent(_ context.Context, studentID string) error {
	f.invalidated = append(f.invalidated, studentID)
	return nil
}
