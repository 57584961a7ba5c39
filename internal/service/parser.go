package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/resumatch-api/internal/ai"
	"github.com/yourusername/resumatch-api/internal/apperror"
	"github.com/yourusername/resumatch-api/internal/model"
)

const (
	defaultResumeRejection = "This doesn't look like a professional resume."
	defaultJobRejection    = "This doesn't look like a job description."
)

// Parser turns free text into structured resume and job records.
type Parser struct {
	backend ai.Backend
}

func NewParser(backend ai.Backend) *Parser {
	return &Parser{backend: backend}
}

type resumeResponse struct {
	IsValid          *bool                  `json:"isValid"`
	ValidationReason *string                `json:"validationReason"`
	PersonalDetails  *model.PersonalDetails `json:"personal_details"`
	Data             *model.ResumeRecord    `json:"data"`
}

type jobResponse struct {
	IsValid          *bool            `json:"isValid"`
	ValidationReason *string          `json:"validationReason"`
	Data             *model.JobRecord `json:"data"`
}

// ParseResume validates and extracts a resume. A rejection is a normal
// result, not an error.
func (p *Parser) ParseResume(ctx context.Context, text string) (model.ResumeParseResult, error) {
	raw, err := p.backend.Invoke(ctx, resumeParseSpec, text)
	if err != nil {
		return model.ResumeParseResult{}, err
	}

	var resp resumeResponse
	if err := ai.Decode(resumeParseSpec, raw, &resp); err != nil {
		return model.ResumeParseResult{}, err
	}
	if resp.IsValid == nil {
		return model.ResumeParseResult{}, apperror.NewSchema("parse_resume: missing isValid", nil)
	}

	if !*resp.IsValid {
		return model.ResumeParseResult{IsValid: false, Reason: rejectionReason(resp.ValidationReason, defaultResumeRejection)}, nil
	}
	if resp.Data == nil {
		return model.ResumeParseResult{}, apperror.NewSchema("parse_resume: valid verdict without data", nil)
	}

	rec := resp.Data
	normalizeResume(rec)
	separateProjects(rec)

	details := model.PersonalDetails{}
	if resp.PersonalDetails != nil {
		details = *resp.PersonalDetails
	}

	return model.ResumeParseResult{IsValid: true, PersonalDetails: &details, Record: rec}, nil
}

// ParseJob validates and extracts a job description.
func (p *Parser) ParseJob(ctx context.Context, text string) (model.JobParseResult, error) {
	raw, err := p.backend.Invoke(ctx, jobParseSpec, text)
	if err != nil {
		return model.JobParseResult{}, err
	}

	var resp jobResponse
	if err := ai.Decode(jobParseSpec, raw, &resp); err != nil {
		return model.JobParseResult{}, err
	}
	if resp.IsValid == nil {
		return model.JobParseResult{}, apperror.NewSchema("parse_job: missing isValid", nil)
	}

	if !*resp.IsValid {
		return model.JobParseResult{IsValid: false, Reason: rejectionReason(resp.ValidationReason, defaultJobRejection)}, nil
	}
	if resp.Data == nil {
		return model.JobParseResult{}, apperror.NewSchema("parse_job: valid verdict without data", nil)
	}

	rec := resp.Data
	rec.MustHaveSkills = dedupeSkills(rec.MustHaveSkills, nil)
	rec.NiceToHaveSkills = dedupeSkills(rec.NiceToHaveSkills, skillIndex(rec.MustHaveSkills))

	return model.JobParseResult{IsValid: true, Record: rec}, nil
}

func rejectionReason(reason *string, fallback string) string {
	if reason == nil || strings.TrimSpace(*reason) == "" {
		return fallback
	}
	return strings.TrimSpace(*reason)
}

// normalizeResume replaces nil slices so stored records serialize as [].
func normalizeResume(rec *model.ResumeRecord) {
	if rec.Experience == nil {
		rec.Experience = []model.Experience{}
	}
	if rec.Projects == nil {
		rec.Projects = []model.Project{}
	}
	if rec.Education == nil {
		rec.Education = []model.Education{}
	}
	rec.Skills.Languages = dedupeSkills(rec.Skills.Languages, nil)
	rec.Skills.Frameworks = dedupeSkills(rec.Skills.Frameworks, nil)
	rec.Skills.Tools = dedupeSkills(rec.Skills.Tools, nil)
	rec.Skills.Other = dedupeSkills(rec.Skills.Other, nil)
}

// separateProjects drops projects that duplicate an employment entry.
// Employment wins.
func separateProjects(rec *model.ResumeRecord) {
	companies := make(map[string]struct{}, len(rec.Experience))
	for _, exp := range rec.Experience {
		if key := normalizeSkill(exp.Company); key != "" {
			companies[key] = struct{}{}
		}
	}

	kept := rec.Projects[:0]
	for _, proj := range rec.Projects {
		if _, dup := companies[normalizeSkill(proj.Name)]; dup {
			log.Debug().Str("project", proj.Name).Msg("Dropping project that duplicates an experience entry")
			continue
		}
		kept = append(kept, proj)
	}
	rec.Projects = kept
}
