package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/yourusername/resumatch-api/internal/model"
)

type RepositoryIntegrationTestSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	pool        *pgxpool.Pool
	profiles    *ProfileRepo
	analyses    *AnalysisRepo
}

func TestRepositoryIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("set INTEGRATION_TESTS=1 to run against a postgres container")
	}
	suite.Run(t, new(RepositoryIntegrationTestSuite))
}

func (s *RepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	if err := Migrate(dsn); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("Failed to create pgxpool: %s", err)
	}
	s.pool = pool
	s.profiles = NewProfileRepo(pool)
	s.analyses = NewAnalysisRepo(pool)
}

func (s *RepositoryIntegrationTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(context.Background()); err != nil {
			s.T().Logf("Failed to terminate container: %s", err)
		}
	}
}

func (s *RepositoryIntegrationTestSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), `TRUNCATE job_analyses, profiles`)
	s.Require().NoError(err)
}

func newAnalysis(userID string, at time.Time) *model.Analysis {
	return &model.Analysis{
		ID:              uuid.New(),
		UserID:          userID,
		JobTitle:        "Go Developer",
		JobDescription:  "We need Go and SQL",
		MatchScore:      72,
		CriticalMissing: []string{"SQL"},
		BonusMissing:    []string{"Kubernetes"},
		MissingKeywords: []string{"SQL", "Kubernetes"},
		Summary:         "Good fit",
		CreatedAt:       at,
	}
}

func (s *RepositoryIntegrationTestSuite) TestProfileUpsertRoundTrip() {
	ctx := context.Background()

	missing, err := s.profiles.FindByUserID(ctx, "user-1")
	s.Require().NoError(err)
	s.Nil(missing)

	p := &model.UserProfile{
		UserID:          "user-1",
		Email:           "jane@example.com",
		ResumeText:      "first",
		PersonalDetails: &model.PersonalDetails{Name: "Jane"},
		ResumeData:      &model.ResumeRecord{RecentRole: "Engineer", Education: []model.Education{{Institution: "State U"}}},
		UpdatedAt:       time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.profiles.Upsert(ctx, p))

	p.ResumeText = "second"
	s.Require().NoError(s.profiles.Upsert(ctx, p))

	got, err := s.profiles.FindByUserID(ctx, "user-1")
	s.Require().NoError(err)
	s.Equal("second", got.ResumeText)
	s.Equal("Jane", got.PersonalDetails.Name)
	s.Equal("State U", got.ResumeData.Education[0].Institution)
}

func (s *RepositoryIntegrationTestSuite) TestCreateIfUnderLimit_Concurrent() {
	ctx := context.Background()
	now := time.Now().UTC()
	since := now.Add(-time.Hour)

	var wg sync.WaitGroup
	results := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.analyses.CreateIfUnderLimit(ctx, newAnalysis("user-1", now), since, 3)
			s.NoError(err)
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	created := 0
	for ok := range results {
		if ok {
			created++
		}
	}
	s.Equal(3, created)

	n, err := s.analyses.CountSince(ctx, "user-1", since)
	s.Require().NoError(err)
	s.Equal(3, n)
}

func (s *RepositoryIntegrationTestSuite) TestListByUser() {
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	older := newAnalysis("user-1", base)
	older.JobTitle = "Data Engineer"
	newer := newAnalysis("user-1", base.Add(time.Minute))
	other := newAnalysis("user-2", base)
	for _, a := range []*model.Analysis{older, newer, other} {
		ok, err := s.analyses.CreateIfUnderLimit(ctx, a, base.Add(-time.Hour), 10)
		s.Require().NoError(err)
		s.Require().True(ok)
	}

	list, err := s.analyses.ListByUser(ctx, "user-1", model.AnalysisFilter{Limit: 10})
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(newer.ID, list[0].ID)
	s.Equal([]string{"SQL", "Kubernetes"}, list[0].MissingKeywords)

	list, err = s.analyses.ListByUser(ctx, "user-1", model.AnalysisFilter{Search: "data", Limit: 10})
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(older.ID, list[0].ID)

	// wildcard characters in the search text match literally
	for _, search := range []string{"%", "_", "Data%Engineer"} {
		list, err = s.analyses.ListByUser(ctx, "user-1", model.AnalysisFilter{Search: search, Limit: 10})
		s.Require().NoError(err)
		s.Empty(list, search)
	}
}

func (s *RepositoryIntegrationTestSuite) TestFillOnce() {
	ctx := context.Background()
	a := newAnalysis("user-1", time.Now().UTC())
	_, err := s.analyses.CreateIfUnderLimit(ctx, a, time.Now().Add(-time.Hour), 3)
	s.Require().NoError(err)

	first := &model.LearningPath{EstimatedTimeWeeks: 4}
	stored, err := s.analyses.FillLearningPath(ctx, a.ID, "user-1", first)
	s.Require().NoError(err)
	s.Equal(4, stored.EstimatedTimeWeeks)

	stored, err = s.analyses.FillLearningPath(ctx, a.ID, "user-1", &model.LearningPath{EstimatedTimeWeeks: 9})
	s.Require().NoError(err)
	s.Equal(4, stored.EstimatedTimeWeeks)

	resume, hash, err := s.analyses.FillTailoredResume(ctx, a.ID, "user-1", &model.TailoredResume{PersonalDetails: model.PersonalDetails{Name: "Jane"}}, "h1")
	s.Require().NoError(err)
	s.Equal("Jane", resume.PersonalDetails.Name)
	s.Equal("h1", hash)

	resume, hash, err = s.analyses.FillTailoredResume(ctx, a.ID, "user-1", &model.TailoredResume{PersonalDetails: model.PersonalDetails{Name: "Other"}}, "h2")
	s.Require().NoError(err)
	s.Equal("Jane", resume.PersonalDetails.Name)
	s.Equal("h1", hash)

	_, err = s.analyses.FillLearningPath(ctx, a.ID, "intruder", first)
	s.ErrorIs(err, ErrAnalysisNotFound)

	got, err := s.analyses.FindByID(ctx, a.ID, "user-1")
	s.Require().NoError(err)
	s.NotNil(got.LearningPath)
	s.NotNil(got.TailoredResume)

	none, err := s.analyses.FindByID(ctx, a.ID, "intruder")
	s.Require().NoError(err)
	s.Nil(none)
}
