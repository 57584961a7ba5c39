package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/resumatch-api/internal/model"
)

// ProfileStore persists one profile per user.
type ProfileStore interface {
	FindByUserID(ctx context.Context, userID string) (*model.UserProfile, error)
	Upsert(ctx context.Context, p *model.UserProfile) error
}

// AnalysisStore persists analyses. Fill methods write only when the column
// is still empty and return whatever is stored afterwards.
type AnalysisStore interface {
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)
	CreateIfUnderLimit(ctx context.Context, a *model.Analysis, since time.Time, limit int) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID, userID string) (*model.Analysis, error)
	ListByUser(ctx context.Context, userID string, f model.AnalysisFilter) ([]model.Analysis, error)
	FillLearningPath(ctx context.Context, id uuid.UUID, userID string, path *model.LearningPath) (*model.LearningPath, error)
	FillTailoredResume(ctx context.Context, id uuid.UUID, userID string, resume *model.TailoredResume, sourceHash string) (*model.TailoredResume, string, error)
}

// JobCache memoizes parsed job records by description text. Implementations
// are best effort; a miss and an error look the same to callers.
type JobCache interface {
	Get(ctx context.Context, jobDescription string) (*model.JobRecord, bool)
	Set(ctx context.Context, jobDescription string, rec *model.JobRecord)
}

type noopJobCache struct{}

func (noopJobCache) Get(context.Context, string) (*model.JobRecord, bool) { return nil, false }
func (noopJobCache) Set(context.Context, string, *model.JobRecord)        {}
