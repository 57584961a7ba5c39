package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/resumatch-api/internal/apperror"
)

func TestParseResume_Valid(t *testing.T) {
	backend := newFakeBackend().reply("parse_resume", validResumeJSON)
	p := NewParser(backend)

	res, err := p.ParseResume(context.Background(), "Jane Doe resume text")
	require.NoError(t, err)
	require.True(t, res.IsValid)
	require.NotNil(t, res.Record)
	require.NotNil(t, res.PersonalDetails)

	assert.Equal(t, "Jane Doe", res.PersonalDetails.Name)
	assert.Equal(t, 3.0, res.Record.ExperienceYears)
	assert.Len(t, res.Record.Education, 2)
	assert.Equal(t, []string{"Go", "Python"}, res.Record.Skills.Languages)
}

func TestParseResume_ExperienceAndProjectsDisjoint(t *testing.T) {
	backend := newFakeBackend().reply("parse_resume", validResumeJSON)

	res, err := NewParser(backend).ParseResume(context.Background(), "resume")
	require.NoError(t, err)

	companies := map[string]bool{}
	for _, e := range res.Record.Experience {
		companies[normalizeSkill(e.Company)] = true
	}
	for _, p := range res.Record.Projects {
		assert.False(t, companies[normalizeSkill(p.Name)], "project %q duplicates an experience entry", p.Name)
	}
	require.Len(t, res.Record.Projects, 1)
	assert.Equal(t, "Ledger", res.Record.Projects[0].Name)
	assert.Equal(t, "https://github.com/janedoe/ledger", res.Record.Projects[0].URL)
}

func TestParseResume_Rejected(t *testing.T) {
	backend := newFakeBackend().reply("parse_resume",
		`{"isValid": false, "validationReason": "This is a cooking recipe.", "personal_details": null, "data": null}`)

	res, err := NewParser(backend).ParseResume(context.Background(), "Preheat oven to 350°F...")
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Equal(t, "This is a cooking recipe.", res.Reason)
	assert.Nil(t, res.Record)
}

func TestParseResume_BlankReasonGetsDefault(t *testing.T) {
	backend := newFakeBackend().reply("parse_resume", `{"isValid": false, "validationReason": "  "}`)

	res, err := NewParser(backend).ParseResume(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.NotEmpty(t, res.Reason)
}

func TestParseResume_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing verdict", body: `{"data": {}}`},
		{name: "valid without data", body: `{"isValid": true}`},
		{name: "wrong type", body: `{"isValid": "yes"}`},
		{name: "negative years", body: `{"isValid": true, "data": {"experience_years": -2}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend().reply("parse_resume", tt.body)
			_, err := NewParser(backend).ParseResume(context.Background(), "x")
			assert.ErrorIs(t, err, apperror.ErrSchema)
		})
	}
}

func TestParseResume_KeepsPartialEntries(t *testing.T) {
	body := `{"isValid": true, "data": {
		"experience": [{"company": "", "role": "Freelance Developer"}],
		"education": [{"institution": "", "degree": "High school diploma (incomplete)"}]}}`
	backend := newFakeBackend().reply("parse_resume", body)

	res, err := NewParser(backend).ParseResume(context.Background(), "x")
	require.NoError(t, err)
	require.True(t, res.IsValid)
	require.Len(t, res.Record.Education, 1)
	assert.Equal(t, "High school diploma (incomplete)", res.Record.Education[0].Degree)
	require.Len(t, res.Record.Experience, 1)
	assert.Equal(t, "Freelance Developer", res.Record.Experience[0].Role)
}

func TestParseResume_UpstreamPassesThrough(t *testing.T) {
	backend := newFakeBackend().fail("parse_resume", apperror.NewUpstream("down", nil))

	_, err := NewParser(backend).ParseResume(context.Background(), "x")
	assert.ErrorIs(t, err, apperror.ErrUpstream)
	assert.Equal(t, 1, backend.callCount("parse_resume"))
}

func TestParseJob(t *testing.T) {
	backend := newFakeBackend().reply("parse_job", `{
		"isValid": true,
		"data": {"must_have_skills": ["Go", "go", "SQL"], "nice_to_have_skills": ["SQL", "Kubernetes"], "min_years_experience": 2, "role_seniority": "Mid"}
	}`)

	res, err := NewParser(backend).ParseJob(context.Background(), "We are hiring a Go developer")
	require.NoError(t, err)
	require.True(t, res.IsValid)
	assert.Equal(t, []string{"Go", "SQL"}, res.Record.MustHaveSkills)
	assert.Equal(t, []string{"Kubernetes"}, res.Record.NiceToHaveSkills)
	assert.Equal(t, 2, res.Record.MinYearsExperience)
}

func TestParseJob_Rejected(t *testing.T) {
	backend := newFakeBackend().reply("parse_job",
		`{"isValid": false, "validationReason": "This text describes how to bake a cake.", "data": null}`)

	res, err := NewParser(backend).ParseJob(context.Background(), "Preheat oven to 350°F...")
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Equal(t, "This text describes how to bake a cake.", res.Reason)
}

func TestNormalizeSkill(t *testing.T) {
	assert.Equal(t, "node js", normalizeSkill(" Node.js "))
	assert.Equal(t, "c++", normalizeSkill("C++"))
	assert.Equal(t, "c#", normalizeSkill("C#"))
	assert.NotEqual(t, normalizeSkill("C"), normalizeSkill("C++"))
	assert.Equal(t, "acme corp", normalizeSkill("ACME  Corp."))
}
