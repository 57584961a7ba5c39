package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/resumatch-api/internal/ai"
	"github.com/yourusername/resumatch-api/internal/apperror"
	"github.com/yourusername/resumatch-api/internal/model"
)

const (
	maxResumeChars   = 30000
	maxJobChars      = 20000
	defaultPageSize  = 20
	maxPageSize      = 100
	untitledJobTitle = "Untitled position"
)

// Analyzer orchestrates every user action. Each call takes the caller's
// Session explicitly and runs its steps sequentially.
type Analyzer struct {
	profiles ProfileStore
	analyses AnalysisStore
	jobs     JobCache
	quota    *QuotaTracker
	parser   *Parser
	scorer   *Scorer
	paths    *PathGenerator
	tailor   *Tailor
	now      func() time.Time
}

func NewAnalyzer(backend ai.Backend, profiles ProfileStore, analyses AnalysisStore, jobs JobCache, dailyLimit int) *Analyzer {
	if jobs == nil {
		jobs = noopJobCache{}
	}
	return &Analyzer{
		profiles: profiles,
		analyses: analyses,
		jobs:     jobs,
		quota:    NewQuotaTracker(analyses, dailyLimit),
		parser:   NewParser(backend),
		scorer:   NewScorer(backend),
		paths:    NewPathGenerator(backend),
		tailor:   NewTailor(backend),
		now:      time.Now,
	}
}

type AnalyzeInput struct {
	JobTitle       string `json:"jobTitle"`
	JobDescription string `json:"jobDescription"`
}

// TailoredResult is a tailored resume plus whether it came from the cache and
// whether the profile changed since it was generated.
type TailoredResult struct {
	Resume *model.TailoredResume `json:"tailoredResume"`
	Cached bool                  `json:"cached"`
	Stale  bool                  `json:"stale"`
}

// ── Analyze ───────────────────────────────────────────

// Analyze runs quota → profile → job parse → score → persist. Nothing is
// stored unless every step succeeds.
func (a *Analyzer) Analyze(ctx context.Context, sess model.Session, in AnalyzeInput) (*model.Analysis, error) {
	if sess.UserID == "" {
		return nil, apperror.NewUnauthorized("analyze without session")
	}

	jobDesc := strings.TrimSpace(in.JobDescription)
	if jobDesc == "" {
		return nil, apperror.NewInvalidInput("Please paste a job description.")
	}
	if utf8.RuneCountInString(jobDesc) > maxJobChars {
		return nil, apperror.NewInvalidInput(fmt.Sprintf("This job description is too long. Please keep it under %d characters.", maxJobChars))
	}
	jobTitle := strings.TrimSpace(in.JobTitle)
	if jobTitle == "" {
		jobTitle = untitledJobTitle
	}

	now := a.now()
	status, err := a.quota.Check(ctx, sess.UserID, now)
	if err != nil {
		return nil, stepFailed("analyze", "quota", sess.UserID, apperror.NewQuotaUnverified(err))
	}
	if !status.Allowed {
		return nil, apperror.NewQuotaExceeded(status.Used, status.Limit)
	}

	profile, err := a.profiles.FindByUserID(ctx, sess.UserID)
	if err != nil {
		return nil, stepFailed("analyze", "load_profile", sess.UserID, apperror.NewInternal("loading profile", err))
	}
	if profile == nil || profile.ResumeData == nil {
		return nil, apperror.NewResumeMissing()
	}

	job, err := a.jobRecord(ctx, jobDesc)
	if err != nil {
		return nil, stepFailed("analyze", "parse_job", sess.UserID, err)
	}

	match, err := a.scorer.Score(ctx, profile.ResumeData, job)
	if err != nil {
		return nil, stepFailed("analyze", "score", sess.UserID, err)
	}

	missing := make([]string, 0, len(match.CriticalMissing)+len(match.BonusMissing))
	missing = append(missing, match.CriticalMissing...)
	missing = append(missing, match.BonusMissing...)

	analysis := &model.Analysis{
		ID:                uuid.New(),
		UserID:            sess.UserID,
		JobTitle:          jobTitle,
		JobDescription:    jobDesc,
		MatchScore:        match.Percentage,
		CriticalMissing:   match.CriticalMissing,
		BonusMissing:      match.BonusMissing,
		MissingKeywords:   missing,
		ExperienceVerdict: match.ExperienceVerdict,
		Summary:           match.Feedback,
		CreatedAt:         now.UTC(),
	}

	ok, err := a.analyses.CreateIfUnderLimit(ctx, analysis, DayStart(now), a.quota.Limit())
	if err != nil {
		return nil, stepFailed("analyze", "persist", sess.UserID, apperror.NewInternal("saving analysis", err))
	}
	if !ok {
		return nil, apperror.NewQuotaExceeded(a.quota.Limit(), a.quota.Limit())
	}

	log.Info().
		Str("action", "analyze").
		Str("userId", sess.UserID).
		Str("analysisId", analysis.ID.String()).
		Int("matchScore", analysis.MatchScore).
		Msg("Analysis created")

	return analysis, nil
}

// jobRecord parses a job description, consulting the cache first. Rejected
// descriptions become InvalidInput carrying the backend's reason.
func (a *Analyzer) jobRecord(ctx context.Context, jobDesc string) (*model.JobRecord, error) {
	if rec, ok := a.jobs.Get(ctx, jobDesc); ok {
		return rec, nil
	}

	res, err := a.parser.ParseJob(ctx, jobDesc)
	if err != nil {
		return nil, err
	}
	if !res.IsValid {
		return nil, apperror.NewInvalidInput(res.Reason)
	}

	a.jobs.Set(ctx, jobDesc, res.Record)
	return res.Record, nil
}

// ── Profile ───────────────────────────────────────────

// SaveResume parses the text and overwrites the caller's profile. A rejected
// resume leaves the stored profile untouched.
func (a *Analyzer) SaveResume(ctx context.Context, sess model.Session, text string) (*model.UserProfile, error) {
	if sess.UserID == "" {
		return nil, apperror.NewUnauthorized("save resume without session")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.NewInvalidInput("Please paste your resume text.")
	}
	if utf8.RuneCountInString(text) > maxResumeChars {
		return nil, apperror.NewInvalidInput(fmt.Sprintf("This resume is too long. Please keep it under %d characters.", maxResumeChars))
	}

	res, err := a.parser.ParseResume(ctx, text)
	if err != nil {
		return nil, stepFailed("save_resume", "parse_resume", sess.UserID, err)
	}
	if !res.IsValid {
		return nil, apperror.NewInvalidInput(res.Reason)
	}

	profile := &model.UserProfile{
		UserID:          sess.UserID,
		Email:           sess.Email,
		ResumeText:      text,
		PersonalDetails: res.PersonalDetails,
		ResumeData:      res.Record,
		UpdatedAt:       a.now().UTC(),
	}
	if err := a.profiles.Upsert(ctx, profile); err != nil {
		return nil, stepFailed("save_resume", "persist", sess.UserID, apperror.NewInternal("saving profile", err))
	}

	log.Info().Str("action", "save_resume").Str("userId", sess.UserID).Msg("Profile saved")
	return profile, nil
}

func (a *Analyzer) Profile(ctx context.Context, sess model.Session) (*model.UserProfile, error) {
	if sess.UserID == "" {
		return nil, apperror.NewUnauthorized("profile without session")
	}
	profile, err := a.profiles.FindByUserID(ctx, sess.UserID)
	if err != nil {
		return nil, apperror.NewInternal("loading profile", err)
	}
	if profile == nil {
		return nil, apperror.NewNotFound("Profile", sess.UserID)
	}
	return profile, nil
}

// ── Quota & history ───────────────────────────────────

func (a *Analyzer) Quota(ctx context.Context, sess model.Session) (model.QuotaStatus, error) {
	if sess.UserID == "" {
		return model.QuotaStatus{}, apperror.NewUnauthorized("quota without session")
	}
	status, err := a.quota.Check(ctx, sess.UserID, a.now())
	if err != nil {
		return status, apperror.NewQuotaUnverified(err)
	}
	return status, nil
}

// History lists the caller's analyses, newest first.
func (a *Analyzer) History(ctx context.Context, sess model.Session, f model.AnalysisFilter) ([]model.Analysis, error) {
	if sess.UserID == "" {
		return nil, apperror.NewUnauthorized("history without session")
	}
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Search = strings.TrimSpace(f.Search)

	list, err := a.analyses.ListByUser(ctx, sess.UserID, f)
	if err != nil {
		return nil, apperror.NewInternal("listing analyses", err)
	}
	return list, nil
}

func (a *Analyzer) Analysis(ctx context.Context, sess model.Session, id uuid.UUID) (*model.Analysis, error) {
	if sess.UserID == "" {
		return nil, apperror.NewUnauthorized("analysis without session")
	}
	analysis, err := a.analyses.FindByID(ctx, id, sess.UserID)
	if err != nil {
		return nil, apperror.NewInternal("loading analysis", err)
	}
	if analysis == nil {
		return nil, apperror.NewNotFound("Analysis", id.String())
	}
	return analysis, nil
}

// ── Learning path & tailoring ─────────────────────────

// LearningPath returns the stored path for an analysis, generating and
// storing it on first request.
func (a *Analyzer) LearningPath(ctx context.Context, sess model.Session, id uuid.UUID) (*model.LearningPath, error) {
	analysis, err := a.Analysis(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if analysis.LearningPath != nil {
		return analysis.LearningPath, nil
	}

	path, err := a.paths.Generate(ctx, analysis.MissingKeywords, analysis.JobTitle, analysis.JobDescription)
	if err != nil {
		return nil, stepFailed("learning_path", "generate", sess.UserID, err)
	}

	stored, err := a.analyses.FillLearningPath(ctx, id, sess.UserID, &path)
	if err != nil {
		return nil, stepFailed("learning_path", "persist", sess.UserID, apperror.NewInternal("saving learning path", err))
	}
	return stored, nil
}

// TailoredResume returns the stored tailored resume for an analysis,
// generating it once. Stale reports whether the profile's resume text has
// changed since generation.
func (a *Analyzer) TailoredResume(ctx context.Context, sess model.Session, id uuid.UUID) (*TailoredResult, error) {
	analysis, err := a.Analysis(ctx, sess, id)
	if err != nil {
		return nil, err
	}

	profile, err := a.profiles.FindByUserID(ctx, sess.UserID)
	if err != nil && analysis.TailoredResume == nil {
		return nil, apperror.NewInternal("loading profile", err)
	}

	if analysis.TailoredResume != nil {
		// the stale flag needs the profile; the cached resume does not
		if err != nil {
			log.Warn().Err(err).Str("userId", sess.UserID).Str("analysisId", id.String()).Msg("Profile unavailable, returning cached tailored resume")
		}
		stale := false
		if profile != nil {
			stale = tailorSourceHash(profile.ResumeText, analysis.JobDescription, analysis.MissingKeywords) != analysis.TailoredSourceHash
		}
		return &TailoredResult{Resume: analysis.TailoredResume, Cached: true, Stale: stale}, nil
	}

	if profile == nil || strings.TrimSpace(profile.ResumeText) == "" {
		return nil, apperror.NewResumeMissing()
	}

	hash := tailorSourceHash(profile.ResumeText, analysis.JobDescription, analysis.MissingKeywords)
	tailored, err := a.tailor.Tailor(ctx, profile.ResumeText, analysis.JobDescription, analysis.MissingKeywords, profile.ResumeData)
	if err != nil {
		return nil, stepFailed("tailored_resume", "generate", sess.UserID, err)
	}

	stored, storedHash, err := a.analyses.FillTailoredResume(ctx, id, sess.UserID, &tailored, hash)
	if err != nil {
		return nil, stepFailed("tailored_resume", "persist", sess.UserID, apperror.NewInternal("saving tailored resume", err))
	}
	return &TailoredResult{Resume: stored, Stale: storedHash != hash}, nil
}

// stepFailed logs which step of an action failed and passes err through.
func stepFailed(action, step, userID string, err error) error {
	log.Warn().
		Err(err).
		Str("action", action).
		Str("userId", userID).
		Str("step", step).
		Msg("Action step failed")
	return err
}
