package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/resumatch-api/internal/ai"
	"github.com/yourusername/resumatch-api/internal/apperror"
	"github.com/yourusername/resumatch-api/internal/model"
)

// Scorer compares a resume record against a job record.
type Scorer struct {
	backend ai.Backend
}

func NewScorer(backend ai.Backend) *Scorer {
	return &Scorer{backend: backend}
}

type matchResponse struct {
	MatchPercentage *float64 `json:"match_percentage"`
	GapAnalysis     struct {
		CriticalMissingSkills []string `json:"critical_missing_skills"`
		BonusMissingSkills    []string `json:"bonus_missing_skills"`
		ExperienceMatch       string   `json:"experience_match"`
	} `json:"gap_analysis"`
	DetailedFeedback string `json:"detailed_feedback"`
}

type matchPayload struct {
	Resume *model.ResumeRecord `json:"resume"`
	Job    *model.JobRecord    `json:"job"`
}

// Score returns a percentage in [0,100] and the missing-skill sets. A
// percentage outside the range is rejected, not clamped.
func (s *Scorer) Score(ctx context.Context, resume *model.ResumeRecord, job *model.JobRecord) (model.MatchResult, error) {
	payload, err := json.Marshal(matchPayload{Resume: resume, Job: job})
	if err != nil {
		return model.MatchResult{}, apperror.NewInternal("marshaling match payload", err)
	}

	raw, err := s.backend.Invoke(ctx, matchSpec, string(payload))
	if err != nil {
		return model.MatchResult{}, err
	}

	var resp matchResponse
	if err := ai.Decode(matchSpec, raw, &resp); err != nil {
		return model.MatchResult{}, err
	}

	if resp.MatchPercentage == nil {
		return model.MatchResult{}, apperror.NewSchema("score_match: missing match_percentage", nil)
	}
	pct := *resp.MatchPercentage
	if math.IsNaN(pct) || pct < 0 || pct > 100 {
		log.Warn().Float64("matchPercentage", pct).Msg("Match score out of range")
		return model.MatchResult{}, apperror.NewSchema(fmt.Sprintf("score_match: match_percentage %v out of range", pct), nil)
	}

	have := skillIndex(resumeSkills(resume))
	critical := dedupeSkills(resp.GapAnalysis.CriticalMissingSkills, have)
	exclude := skillIndex(critical)
	for k := range have {
		exclude[k] = struct{}{}
	}
	bonus := dedupeSkills(resp.GapAnalysis.BonusMissingSkills, exclude)

	return model.MatchResult{
		Percentage:        int(math.Round(pct)),
		CriticalMissing:   critical,
		BonusMissing:      bonus,
		ExperienceVerdict: resp.GapAnalysis.ExperienceMatch,
		Feedback:          resp.DetailedFeedback,
	}, nil
}

// resumeSkills lists every skill the resume claims, including project stacks.
func resumeSkills(rec *model.ResumeRecord) []string {
	skills := rec.Skills.All()
	for _, p := range rec.Projects {
		skills = append(skills, p.TechStack...)
	}
	return skills
}
