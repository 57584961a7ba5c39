package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/resumatch-api/internal/ai"
	"github.com/yourusername/resumatch-api/internal/model"
)

// ── Scripted AI backend ───────────────────────────────

type fakeReply struct {
	body string
	err  error
}

type fakeBackend struct {
	mu       sync.Mutex
	replies  map[string]fakeReply
	calls    map[string]int
	payloads map[string][]string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		replies:  map[string]fakeReply{},
		calls:    map[string]int{},
		payloads: map[string][]string{},
	}
}

func (f *fakeBackend) reply(spec, body string) *fakeBackend {
	f.replies[spec] = fakeReply{body: body}
	return f
}

func (f *fakeBackend) fail(spec string, err error) *fakeBackend {
	f.replies[spec] = fakeReply{err: err}
	return f
}

func (f *fakeBackend) Invoke(ctx context.Context, spec ai.Spec, payload string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[spec.Name]++
	f.payloads[spec.Name] = append(f.payloads[spec.Name], payload)

	r, ok := f.replies[spec.Name]
	if !ok {
		return nil, errors.New("no scripted reply for " + spec.Name)
	}
	if r.err != nil {
		return nil, r.err
	}
	return json.RawMessage(r.body), nil
}

func (f *fakeBackend) callCount(spec string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[spec]
}

// ── In-memory stores ──────────────────────────────────

type memProfiles struct {
	mu       sync.Mutex
	profiles map[string]model.UserProfile
	err      error
}

func newMemProfiles() *memProfiles {
	return &memProfiles{profiles: map[string]model.UserProfile{}}
}

func (m *memProfiles) FindByUserID(ctx context.Context, userID string) (*model.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memProfiles) Upsert(ctx context.Context, p *model.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.profiles[p.UserID] = *p
	return nil
}

type memAnalyses struct {
	mu       sync.Mutex
	rows     []model.Analysis
	countErr error
}

func newMemAnalyses() *memAnalyses {
	return &memAnalyses{}
}

func (m *memAnalyses) countSince(userID string, since time.Time) int {
	n := 0
	for _, a := range m.rows {
		if a.UserID == userID && !a.CreatedAt.Before(since) {
			n++
		}
	}
	return n
}

func (m *memAnalyses) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.countSince(userID, since), nil
}

func (m *memAnalyses) CreateIfUnderLimit(ctx context.Context, a *model.Analysis, since time.Time, limit int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countSince(a.UserID, since) >= limit {
		return false, nil
	}
	m.rows = append(m.rows, *a)
	return true, nil
}

func (m *memAnalyses) find(id uuid.UUID, userID string) *model.Analysis {
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].UserID == userID {
			return &m.rows[i]
		}
	}
	return nil
}

func (m *memAnalyses) FindByID(ctx context.Context, id uuid.UUID, userID string) (*model.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.find(id, userID)
	if a == nil {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *memAnalyses) ListByUser(ctx context.Context, userID string, f model.AnalysisFilter) ([]model.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Analysis
	for _, a := range m.rows {
		if a.UserID != userID {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(a.JobTitle), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Offset >= len(out) {
		return []model.Analysis{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memAnalyses) FillLearningPath(ctx context.Context, id uuid.UUID, userID string, path *model.LearningPath) (*model.LearningPath, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.find(id, userID)
	if a == nil {
		return nil, errors.New("analysis not found")
	}
	if a.LearningPath == nil {
		a.LearningPath = path
	}
	return a.LearningPath, nil
}

func (m *memAnalyses) FillTailoredResume(ctx context.Context, id uuid.UUID, userID string, resume *model.TailoredResume, sourceHash string) (*model.TailoredResume, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.find(id, userID)
	if a == nil {
		return nil, "", errors.New("analysis not found")
	}
	if a.TailoredResume == nil {
		a.TailoredResume = resume
		a.TailoredSourceHash = sourceHash
	}
	return a.TailoredResume, a.TailoredSourceHash, nil
}

type memJobCache struct {
	entries map[string]*model.JobRecord
}

func (c *memJobCache) Get(ctx context.Context, jobDescription string) (*model.JobRecord, bool) {
	rec, ok := c.entries[jobDescription]
	return rec, ok
}

func (c *memJobCache) Set(ctx context.Context, jobDescription string, rec *model.JobRecord) {
	c.entries[jobDescription] = rec
}

// ── Canned responses ──────────────────────────────────

const validResumeJSON = `{
  "isValid": true,
  "validationReason": null,
  "personal_details": {"name": "Jane Doe", "email": "jane@example.com", "phone": "555-0100", "github": "https://github.com/janedoe"},
  "data": {
    "summary": "Backend engineer",
    "experience_years": 3,
    "education_level": "Bachelor's",
    "recent_role": "Backend Engineer",
    "skills": {"languages": ["Go", "Python"], "frameworks": ["Gin"], "tools": ["Docker"], "other": []},
    "experience": [{"company": "Acme Corp", "role": "Backend Engineer", "dates": "2021-2024", "description": ["Built APIs"]}],
    "projects": [
      {"name": "Acme Corp", "description": "duplicate of employment", "tech_stack": [], "details": []},
      {"name": "Ledger", "description": "Personal finance tracker", "url": "https://github.com/janedoe/ledger", "tech_stack": ["Go"], "details": ["CLI"]}
    ],
    "education": [
      {"institution": "State University", "degree": "BSc Computer Science", "dates": "2017-2021"},
      {"institution": "Central High School", "degree": "Diploma", "dates": "2013-2017"}
    ]
  }
}`

const validJobJSON = `{
  "isValid": true,
  "validationReason": null,
  "data": {"must_have_skills": ["Go", "SQL"], "nice_to_have_skills": ["Kubernetes"], "min_years_experience": 2, "role_seniority": "Mid"}
}`

const matchJSON = `{
  "match_percentage": 72,
  "gap_analysis": {
    "critical_missing_skills": ["SQL", "Go"],
    "bonus_missing_skills": ["Kubernetes", "sql"],
    "experience_match": "Matches"
  },
  "detailed_feedback": "Strong Go background, needs SQL."
}`

const learningPathJSON = `{
  "missing_skills": [
    {
      "skill": "SQL",
      "description": "Every backend role queries data.",
      "resources": [
        {"title": "PostgreSQL Tutorial", "type": "Documentation", "platform": "PostgreSQL", "url": "https://www.postgresql.org/docs/current/tutorial.html"},
        {"title": "Search", "type": "article", "platform": "Google", "url": "https://www.google.com/search?q=sql"},
        {"title": "YouTube", "type": "video", "platform": "YouTube", "url": "https://youtube.com"},
        {"title": "SQL Course", "type": "video", "platform": "YouTube", "url": "https://www.youtube.com/watch?v=HXV3zeQKqGY"}
      ]
    }
  ],
  "project_suggestion": {
    "title": "Inventory API",
    "description": "A REST API backed by Postgres",
    "difficulty": "intermediate",
    "tech_stack": ["Go", "SQL", "Kubernetes"],
    "key_features": ["Auth", "Reports"],
    "real_world_use_case": "Shows data modelling"
  },
  "estimated_time_weeks": 6
}`

const tailoredJSON = `{
  "personal_details": {"name": "Jane Doe", "email": "jane@example.com", "phone": "555-0100"},
  "content": {
    "summary": "Go engineer ready for SQL-heavy work",
    "skills": {"languages": ["Go", "SQL"], "frameworks": [], "tools": ["Docker"], "other": []},
    "experience": [
      {"company": "Acme Corp.", "role": "Backend Engineer", "dates": "2021-2024", "description": ["Built APIs"]},
      {"company": "Globex", "role": "Staff Engineer", "dates": "2024-", "description": ["Invented"]}
    ],
    "projects": [{"name": "Ledger", "description": "Finance tracker", "tech_stack": ["Go", "SQL"], "details": []}],
    "education": [{"institution": "State University", "degree": "BSc Computer Science", "dates": "2017-2021"}]
  }
}`
