package model

import (
	"time"

	"github.com/google/uuid"
)

// Session identifies the caller of an action. It is built by the auth
// middleware from a verified ID token and passed explicitly to the service layer.
type Session struct {
	UserID string
	Email  string
	Token  string
}

// ── Resume record ──────────────────────────────────────

type PersonalDetails struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Location string `json:"location,omitempty"`
}

type SkillSet struct {
	Languages  []string `json:"languages"`
	Frameworks []string `json:"frameworks"`
	Tools      []string `json:"tools"`
	Other      []string `json:"other"`
}

// All returns every skill across categories, in category order.
func (s SkillSet) All() []string {
	out := make([]string, 0, len(s.Languages)+len(s.Frameworks)+len(s.Tools)+len(s.Other))
	out = append(out, s.Languages...)
	out = append(out, s.Frameworks...)
	out = append(out, s.Tools...)
	out = append(out, s.Other...)
	return out
}

// Experience is paid employment only. Personal and academic work goes in Project.
type Experience struct {
	Company     string   `json:"company"`
	Role        string   `json:"role"`
	Dates       string   `json:"dates"`
	Description []string `json:"description"`
}

type Project struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	URL         string   `json:"url,omitempty"`
	TechStack   []string `json:"tech_stack"`
	Details     []string `json:"details"`
}

type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Dates       string `json:"dates"`
	Details     string `json:"details,omitempty"`
}

type ResumeRecord struct {
	Summary         string       `json:"summary"`
	ExperienceYears float64      `json:"experience_years" validate:"gte=0"`
	EducationLevel  string       `json:"education_level"`
	RecentRole      string       `json:"recent_role"`
	Skills          SkillSet     `json:"skills"`
	Experience      []Experience `json:"experience" validate:"dive"`
	Projects        []Project    `json:"projects" validate:"dive"`
	Education       []Education  `json:"education" validate:"dive"`
}

// ── Job record ─────────────────────────────────────────

type JobRecord struct {
	MustHaveSkills     []string `json:"must_have_skills"`
	NiceToHaveSkills   []string `json:"nice_to_have_skills"`
	MinYearsExperience int      `json:"min_years_experience" validate:"gte=0"`
	RoleSeniority      string   `json:"role_seniority"`
}

// ── Parse / match results ──────────────────────────────

type ResumeParseResult struct {
	IsValid         bool             `json:"isValid"`
	Reason          string           `json:"reason,omitempty"`
	PersonalDetails *PersonalDetails `json:"personalDetails,omitempty"`
	Record          *ResumeRecord    `json:"record,omitempty"`
}

type JobParseResult struct {
	IsValid bool       `json:"isValid"`
	Reason  string     `json:"reason,omitempty"`
	Record  *JobRecord `json:"record,omitempty"`
}

type MatchResult struct {
	Percentage        int      `json:"percentage"`
	CriticalMissing   []string `json:"criticalMissing"`
	BonusMissing      []string `json:"bonusMissing"`
	ExperienceVerdict string   `json:"experienceVerdict"`
	Feedback          string   `json:"feedback"`
}

// ── Learning path ──────────────────────────────────────

// Resource types
const (
	ResourceVideo         = "video"
	ResourceCourse        = "course"
	ResourceDocumentation = "documentation"
	ResourceArticle       = "article"
)

// Project difficulties
const (
	DifficultyBeginner     = "Beginner"
	DifficultyIntermediate = "Intermediate"
	DifficultyAdvanced     = "Advanced"
)

type LearningResource struct {
	Title    string `json:"title" validate:"required"`
	Type     string `json:"type" validate:"oneof=video course documentation article"`
	Platform string `json:"platform"`
	Author   string `json:"author,omitempty"`
	URL      string `json:"url" validate:"required"`
}

type SkillPlan struct {
	Skill     string             `json:"skill" validate:"required"`
	Rationale string             `json:"description"`
	Resources []LearningResource `json:"resources" validate:"dive"`
}

type ProjectSuggestion struct {
	Title            string   `json:"title" validate:"required"`
	Description      string   `json:"description"`
	KeyFeatures      []string `json:"key_features"`
	Difficulty       string   `json:"difficulty" validate:"oneof=Beginner Intermediate Advanced"`
	TechStack        []string `json:"tech_stack"`
	RealWorldUseCase string   `json:"real_world_use_case"`
}

type LearningPath struct {
	MissingSkills      []SkillPlan       `json:"missing_skills" validate:"dive"`
	ProjectSuggestion  ProjectSuggestion `json:"project_suggestion"`
	EstimatedTimeWeeks int               `json:"estimated_time_weeks" validate:"gt=0"`
}

// ── Tailored resume ────────────────────────────────────

type TailoredResume struct {
	PersonalDetails PersonalDetails `json:"personal_details"`
	Content         ResumeRecord    `json:"content"`
}

// ── Persisted entities ─────────────────────────────────

// UserProfile is keyed by the identity provider's user id.
type UserProfile struct {
	UserID          string           `json:"userId"`
	Email           string           `json:"email"`
	ResumeText      string           `json:"resumeText"`
	PersonalDetails *PersonalDetails `json:"personalDetails,omitempty"`
	ResumeData      *ResumeRecord    `json:"resumeData,omitempty"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// Analysis is one completed resume/job match.
type Analysis struct {
	ID                 uuid.UUID       `json:"id"`
	UserID             string          `json:"userId"`
	JobTitle           string          `json:"jobTitle"`
	JobDescription     string          `json:"jobDescription"`
	MatchScore         int             `json:"matchScore"`
	CriticalMissing    []string        `json:"criticalMissing"`
	BonusMissing       []string        `json:"bonusMissing"`
	MissingKeywords    []string        `json:"missingKeywords"`
	ExperienceVerdict  string          `json:"experienceVerdict"`
	Summary            string          `json:"summary"`
	LearningPath       *LearningPath   `json:"learningPath,omitempty"`
	TailoredResume     *TailoredResume `json:"tailoredResume,omitempty"`
	TailoredSourceHash string          `json:"-"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// AnalysisFilter holds query parameters for listing analyses
type AnalysisFilter struct {
	Search string
	Limit  int
	Offset int
}

// QuotaStatus reports the caller's daily analysis allowance.
type QuotaStatus struct {
	Allowed  bool      `json:"allowed"`
	Used     int       `json:"used"`
	Limit    int       `json:"limit"`
	ResetsAt time.Time `json:"resetsAt"`
}
