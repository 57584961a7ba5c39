package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/resumatch-api/internal/ai"
	"github.com/yourusername/resumatch-api/internal/apperror"
	"github.com/yourusername/resumatch-api/internal/model"
)

const jobSnippetRunes = 500

// search engines never count as a learning resource, whatever the path
var searchHosts = map[string]bool{
	"google.com":       true,
	"bing.com":         true,
	"duckduckgo.com":   true,
	"search.yahoo.com": true,
}

// video sites are fine for a specific video, not for their home or search pages
var videoHosts = map[string]bool{
	"youtube.com":   true,
	"m.youtube.com": true,
	"vimeo.com":     true,
}

// PathGenerator builds a study plan and capstone project for missing skills.
type PathGenerator struct {
	backend ai.Backend
}

func NewPathGenerator(backend ai.Backend) *PathGenerator {
	return &PathGenerator{backend: backend}
}

func (g *PathGenerator) Generate(ctx context.Context, missing []string, jobTitle, jobDescription string) (model.LearningPath, error) {
	skills, err := json.Marshal(missing)
	if err != nil {
		return model.LearningPath{}, apperror.NewInternal("marshaling missing skills", err)
	}

	payload := fmt.Sprintf("Target job: %s\nJob description excerpt: %s...\nMissing skills to learn: %s",
		jobTitle, truncateRunes(jobDescription, jobSnippetRunes), skills)

	raw, err := g.backend.Invoke(ctx, learningPathSpec, payload)
	if err != nil {
		return model.LearningPath{}, err
	}

	var path model.LearningPath
	if err := ai.Unmarshal(learningPathSpec, raw, &path); err != nil {
		return model.LearningPath{}, err
	}

	cleanLearningPath(&path)

	if err := ai.Validate(learningPathSpec, &path); err != nil {
		return model.LearningPath{}, err
	}
	return path, nil
}

// cleanLearningPath normalizes enum casing and drops resources that do not
// point at specific content.
func cleanLearningPath(path *model.LearningPath) {
	if path.MissingSkills == nil {
		path.MissingSkills = []model.SkillPlan{}
	}
	for i := range path.MissingSkills {
		plan := &path.MissingSkills[i]
		kept := make([]model.LearningResource, 0, len(plan.Resources))
		for _, r := range plan.Resources {
			r.Type = strings.ToLower(strings.TrimSpace(r.Type))
			r.URL = strings.TrimSpace(r.URL)
			if !specificResourceURL(r.URL) {
				log.Debug().Str("skill", plan.Skill).Str("url", r.URL).Msg("Dropping generic learning resource")
				continue
			}
			kept = append(kept, r)
		}
		plan.Resources = kept
	}

	d := strings.TrimSpace(path.ProjectSuggestion.Difficulty)
	for _, known := range []string{model.DifficultyBeginner, model.DifficultyIntermediate, model.DifficultyAdvanced} {
		if strings.EqualFold(d, known) {
			d = known
		}
	}
	path.ProjectSuggestion.Difficulty = d
}

func specificResourceURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if searchHosts[host] {
		return false
	}
	if videoHosts[host] {
		p := strings.TrimSuffix(u.Path, "/")
		return p != "" && p != "/results"
	}
	return true
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
