package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/resumatch-api/internal/ai"
	"github.com/yourusername/resumatch-api/internal/apperror"
	"github.com/yourusername/resumatch-api/internal/model"
)

// Tailor rewrites a resume toward a target job.
type Tailor struct {
	backend ai.Backend
}

func NewTailor(backend ai.Backend) *Tailor {
	return &Tailor{backend: backend}
}

// Tailor calls the backend and then checks the result against the parsed
// original record (see guardIntegrity). original may be nil, in which case
// the response is returned as validated.
func (t *Tailor) Tailor(ctx context.Context, originalText, jobDescription string, missing []string, original *model.ResumeRecord) (model.TailoredResume, error) {
	skills, err := json.Marshal(missing)
	if err != nil {
		return model.TailoredResume{}, apperror.NewInternal("marshaling missing skills", err)
	}

	payload := fmt.Sprintf("Original resume:\n%s\n\nTarget job:\n%s\n\nMissing skills to add: %s",
		originalText, jobDescription, skills)

	raw, err := t.backend.Invoke(ctx, tailorSpec, payload)
	if err != nil {
		return model.TailoredResume{}, err
	}

	var out model.TailoredResume
	if err := ai.Unmarshal(tailorSpec, raw, &out); err != nil {
		return model.TailoredResume{}, err
	}

	normalizeResume(&out.Content)
	if original != nil {
		guardIntegrity(&out.Content, original)
	}
	separateProjects(&out.Content)

	if err := ai.Validate(tailorSpec, &out); err != nil {
		return model.TailoredResume{}, err
	}
	return out, nil
}

func guardIntegrity(tailored, original *model.ResumeRecord) {
	// employers must come from the original
	kept := tailored.Experience[:0]
	for _, exp := range tailored.Experience {
		if !knownEmployer(exp, original.Experience) {
			log.Warn().Str("company", exp.Company).Msg("Dropping tailored experience with unknown employer")
			continue
		}
		kept = append(kept, exp)
	}
	tailored.Experience = kept

	tailored.Education = restoreEducation(tailored.Education, original.Education)

	// project links survive
	urls := make(map[string]string, len(original.Projects))
	for _, p := range original.Projects {
		if p.URL != "" {
			urls[normalizeSkill(p.Name)] = p.URL
		}
	}
	for i := range tailored.Projects {
		p := &tailored.Projects[i]
		if strings.TrimSpace(p.URL) == "" {
			p.URL = urls[normalizeSkill(p.Name)]
		}
	}
}

// knownEmployer matches loosely so "Acme" and "Acme Inc." are the same
// employer. An entry without a company matches an original entry without one
// in the same role.
func knownEmployer(exp model.Experience, experience []model.Experience) bool {
	c := normalizeSkill(exp.Company)
	if c == "" {
		role := normalizeSkill(exp.Role)
		for _, o := range experience {
			if normalizeSkill(o.Company) == "" && normalizeSkill(o.Role) == role {
				return true
			}
		}
		return false
	}
	for _, o := range experience {
		oc := normalizeSkill(o.Company)
		if oc == "" {
			continue
		}
		if oc == c || strings.Contains(oc, c) || strings.Contains(c, oc) {
			return true
		}
	}
	return false
}

// restoreEducation appends every original entry that has no counterpart in
// tailored. Each tailored entry accounts for at most one original: an exact
// institution+degree match first, then any leftover entry at the same
// institution, so two degrees from one school need two entries.
func restoreEducation(tailored, original []model.Education) []model.Education {
	used := make([]bool, len(tailored))
	matched := make([]bool, len(original))

	claim := func(i int, same func(model.Education) bool) {
		for j, t := range tailored {
			if !used[j] && same(t) {
				used[j], matched[i] = true, true
				return
			}
		}
	}

	for i, o := range original {
		claim(i, func(t model.Education) bool { return educationKey(t) == educationKey(o) })
	}
	for i, o := range original {
		inst := normalizeSkill(o.Institution)
		if matched[i] || inst == "" {
			continue
		}
		claim(i, func(t model.Education) bool { return normalizeSkill(t.Institution) == inst })
	}

	for i, o := range original {
		if matched[i] {
			continue
		}
		log.Debug().Str("institution", o.Institution).Str("degree", o.Degree).Msg("Restoring education entry dropped by tailoring")
		tailored = append(tailored, o)
	}
	return tailored
}

func educationKey(e model.Education) string {
	return normalizeSkill(e.Institution) + "|" + normalizeSkill(e.Degree)
}

// tailorSourceHash fingerprints the inputs a tailored resume was built from.
func tailorSourceHash(resumeText, jobDescription string, missing []string) string {
	h := sha256.New()
	h.Write([]byte(resumeText))
	h.Write([]byte{0})
	h.Write([]byte(jobDescription))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(missing, "\x1f")))
	return hex.EncodeToString(h.Sum(nil))
}
