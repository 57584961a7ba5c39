package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/resumatch-api/internal/apperror"
	"github.com/yourusername/resumatch-api/internal/model"
)

func originalRecord() *model.ResumeRecord {
	return &model.ResumeRecord{
		Skills:     model.SkillSet{Languages: []string{"Go"}},
		Experience: []model.Experience{{Company: "Acme Corp", Role: "Backend Engineer", Dates: "2021-2024"}},
		Projects: []model.Project{
			{Name: "Ledger", URL: "https://github.com/janedoe/ledger"},
		},
		Education: []model.Education{
			{Institution: "State University", Degree: "BSc Computer Science", Dates: "2017-2021"},
			{Institution: "Central High School", Degree: "Diploma", Dates: "2013-2017"},
		},
	}
}

func TestTailor_IntegrityGuards(t *testing.T) {
	backend := newFakeBackend().reply("tailor_resume", tailoredJSON)
	original := originalRecord()

	out, err := NewTailor(backend).Tailor(context.Background(), "resume text", "job text", []string{"SQL"}, original)
	require.NoError(t, err)

	// invented employer dropped, loosely matching one kept
	require.Len(t, out.Content.Experience, 1)
	assert.Equal(t, "Acme Corp.", out.Content.Experience[0].Company)

	// dropped education restored
	assert.GreaterOrEqual(t, len(out.Content.Education), len(original.Education))
	institutions := []string{}
	for _, e := range out.Content.Education {
		institutions = append(institutions, e.Institution)
	}
	assert.Contains(t, institutions, "Central High School")

	// lost project URL restored
	require.Len(t, out.Content.Projects, 1)
	assert.Equal(t, "https://github.com/janedoe/ledger", out.Content.Projects[0].URL)

	assert.Equal(t, "Jane Doe", out.PersonalDetails.Name)
}

func TestTailor_RestoresSecondDegreeFromSameInstitution(t *testing.T) {
	original := &model.ResumeRecord{
		Education: []model.Education{
			{Institution: "State University", Degree: "BSc Computer Science", Dates: "2014-2018"},
			{Institution: "State University", Degree: "MSc Computer Science", Dates: "2018-2020"},
			{Institution: "", Degree: "High school diploma (incomplete)"},
		},
	}
	reply := `{"content": {"education": [{"institution": "State University", "degree": "MSc Computer Science", "dates": "2018-2020"}]}}`
	backend := newFakeBackend().reply("tailor_resume", reply)

	out, err := NewTailor(backend).Tailor(context.Background(), "resume text", "job text", nil, original)
	require.NoError(t, err)

	require.Len(t, out.Content.Education, 3)
	degrees := []string{}
	for _, e := range out.Content.Education {
		degrees = append(degrees, e.Degree)
	}
	assert.ElementsMatch(t, []string{"MSc Computer Science", "BSc Computer Science", "High school diploma (incomplete)"}, degrees)
}

func TestTailor_RewordedDegreeIsNotDuplicated(t *testing.T) {
	original := &model.ResumeRecord{
		Education: []model.Education{
			{Institution: "State University", Degree: "BSc Computer Science"},
		},
	}
	reply := `{"content": {"education": [{"institution": "State University", "degree": "B.Sc. in Computer Science"}]}}`
	backend := newFakeBackend().reply("tailor_resume", reply)

	out, err := NewTailor(backend).Tailor(context.Background(), "resume text", "job text", nil, original)
	require.NoError(t, err)

	require.Len(t, out.Content.Education, 1)
	assert.Equal(t, "B.Sc. in Computer Science", out.Content.Education[0].Degree)
}

func TestTailor_KeepsExperienceWithoutCompany(t *testing.T) {
	original := &model.ResumeRecord{
		Experience: []model.Experience{{Company: "", Role: "Freelance Developer"}},
	}
	reply := `{"content": {"experience": [{"company": "", "role": "Freelance Developer"}, {"company": "", "role": "CTO"}]}}`
	backend := newFakeBackend().reply("tailor_resume", reply)

	out, err := NewTailor(backend).Tailor(context.Background(), "resume text", "job text", nil, original)
	require.NoError(t, err)

	require.Len(t, out.Content.Experience, 1)
	assert.Equal(t, "Freelance Developer", out.Content.Experience[0].Role)
}

func TestTailor_PayloadIncludesInputs(t *testing.T) {
	backend := newFakeBackend().reply("tailor_resume", tailoredJSON)

	_, err := NewTailor(backend).Tailor(context.Background(), "MY RESUME", "MY JOB", []string{"SQL", "Kubernetes"}, nil)
	require.NoError(t, err)

	payload := backend.payloads["tailor_resume"][0]
	assert.Contains(t, payload, "MY RESUME")
	assert.Contains(t, payload, "MY JOB")
	assert.Contains(t, payload, `["SQL","Kubernetes"]`)
}

func TestTailor_SchemaError(t *testing.T) {
	backend := newFakeBackend().reply("tailor_resume", `{"content": {"experience_years": -1}}`)

	_, err := NewTailor(backend).Tailor(context.Background(), "r", "j", nil, nil)
	assert.ErrorIs(t, err, apperror.ErrSchema)
}

func TestTailorSourceHash(t *testing.T) {
	a := tailorSourceHash("resume", "job", []string{"SQL"})
	assert.Equal(t, a, tailorSourceHash("resume", "job", []string{"SQL"}))
	assert.NotEqual(t, a, tailorSourceHash("resume v2", "job", []string{"SQL"}))
	assert.NotEqual(t, a, tailorSourceHash("resume", "job", []string{"SQL", "Go"}))
}
