package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yourusername/resumatch-api/internal/model"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var analysisColumns = []string{
	"id", "user_id", "job_title", "job_description", "match_score",
	"critical_missing", "bonus_missing", "missing_keywords", "experience_verdict", "summary",
	"learning_path", "tailored_resume", "tailored_source_hash", "created_at",
}

// ErrAnalysisNotFound is returned by the fill methods when the analysis does
// not exist or belongs to someone else.
var ErrAnalysisNotFound = errors.New("analysis not found")

type AnalysisRepo struct {
	pool *pgxpool.Pool
}

func NewAnalysisRepo(pool *pgxpool.Pool) *AnalysisRepo {
	return &AnalysisRepo{pool: pool}
}

// CountSince counts a user's analyses created at or after since
func (r *AnalysisRepo) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM job_analyses WHERE user_id = $1 AND created_at >= $2
	`, userID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting analyses: %w", err)
	}
	return n, nil
}

// CreateIfUnderLimit inserts a only if the user has fewer than limit analyses
// since the given time. A per-user advisory lock serializes concurrent
// inserts so the limit cannot be overshot.
func (r *AnalysisRepo) CreateIfUnderLimit(ctx context.Context, a *model.Analysis, since time.Time, limit int) (bool, error) {
	created := false
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, a.UserID); err != nil {
			return fmt.Errorf("locking user quota: %w", err)
		}

		var n int
		if err := tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM job_analyses WHERE user_id = $1 AND created_at >= $2
		`, a.UserID, since).Scan(&n); err != nil {
			return fmt.Errorf("counting analyses: %w", err)
		}
		if n >= limit {
			return nil
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO job_analyses (id, user_id, job_title, job_description, match_score,
				critical_missing, bonus_missing, missing_keywords, experience_verdict, summary, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, a.ID, a.UserID, a.JobTitle, a.JobDescription, a.MatchScore,
			nonNil(a.CriticalMissing), nonNil(a.BonusMissing), nonNil(a.MissingKeywords),
			a.ExperienceVerdict, a.Summary, a.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting analysis: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// FindByID returns nil, nil when the analysis does not exist or is not owned by userID
func (r *AnalysisRepo) FindByID(ctx context.Context, id uuid.UUID, userID string) (*model.Analysis, error) {
	query, args, err := psql.Select(analysisColumns...).
		From("job_analyses").
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building analysis query: %w", err)
	}

	a, err := scanAnalysis(r.pool.QueryRow(ctx, query, args...))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding analysis: %w", err)
	}
	return a, nil
}

// likeEscaper makes user text match literally inside a LIKE pattern.
// Backslash is the default LIKE escape character in Postgres.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ListByUser returns a user's analyses newest first, optionally filtered by job title
func (r *AnalysisRepo) ListByUser(ctx context.Context, userID string, f model.AnalysisFilter) ([]model.Analysis, error) {
	builder := psql.Select(analysisColumns...).
		From("job_analyses").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id")

	if f.Search != "" {
		builder = builder.Where(sq.ILike{"job_title": "%" + escapeLike(f.Search) + "%"})
	}
	if f.Limit > 0 {
		builder = builder.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		builder = builder.Offset(uint64(f.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building history query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	defer rows.Close()

	list := []model.Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning analysis: %w", err)
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

// FillLearningPath stores path only if none is stored yet, and returns the
// stored value either way.
func (r *AnalysisRepo) FillLearningPath(ctx context.Context, id uuid.UUID, userID string, path *model.LearningPath) (*model.LearningPath, error) {
	raw, err := marshalNullable(path)
	if err != nil {
		return nil, fmt.Errorf("encoding learning path: %w", err)
	}

	var stored []byte
	err = r.pool.QueryRow(ctx, `
		UPDATE job_analyses SET learning_path = $3
		WHERE id = $1 AND user_id = $2 AND learning_path IS NULL
		RETURNING learning_path
	`, id, userID, raw).Scan(&stored)
	if err == pgx.ErrNoRows {
		// already filled by an earlier request, or not ours
		err = r.pool.QueryRow(ctx, `
			SELECT learning_path FROM job_analyses WHERE id = $1 AND user_id = $2
		`, id, userID).Scan(&stored)
		if err == pgx.ErrNoRows {
			return nil, ErrAnalysisNotFound
		}
	}
	if err != nil {
		return nil, fmt.Errorf("filling learning path: %w", err)
	}

	var out *model.LearningPath
	if err := unmarshalNullable(stored, &out); err != nil {
		return nil, fmt.Errorf("decoding learning path: %w", err)
	}
	return out, nil
}

// FillTailoredResume stores resume and its source hash only if none is
// stored yet, and returns the stored pair.
func (r *AnalysisRepo) FillTailoredResume(ctx context.Context, id uuid.UUID, userID string, resume *model.TailoredResume, sourceHash string) (*model.TailoredResume, string, error) {
	raw, err := marshalNullable(resume)
	if err != nil {
		return nil, "", fmt.Errorf("encoding tailored resume: %w", err)
	}

	var stored []byte
	var storedHash string
	err = r.pool.QueryRow(ctx, `
		UPDATE job_analyses SET tailored_resume = $3, tailored_source_hash = $4
		WHERE id = $1 AND user_id = $2 AND tailored_resume IS NULL
		RETURNING tailored_resume, tailored_source_hash
	`, id, userID, raw, sourceHash).Scan(&stored, &storedHash)
	if err == pgx.ErrNoRows {
		err = r.pool.QueryRow(ctx, `
			SELECT tailored_resume, tailored_source_hash FROM job_analyses WHERE id = $1 AND user_id = $2
		`, id, userID).Scan(&stored, &storedHash)
		if err == pgx.ErrNoRows {
			return nil, "", ErrAnalysisNotFound
		}
	}
	if err != nil {
		return nil, "", fmt.Errorf("filling tailored resume: %w", err)
	}

	var out *model.TailoredResume
	if err := unmarshalNullable(stored, &out); err != nil {
		return nil, "", fmt.Errorf("decoding tailored resume: %w", err)
	}
	return out, storedHash, nil
}

// ── Helpers ──────────────────────────────────────────

func scanAnalysis(row pgx.Row) (*model.Analysis, error) {
	var a model.Analysis
	var path, tailored []byte
	err := row.Scan(
		&a.ID, &a.UserID, &a.JobTitle, &a.JobDescription, &a.MatchScore,
		&a.CriticalMissing, &a.BonusMissing, &a.MissingKeywords, &a.ExperienceVerdict, &a.Summary,
		&path, &tailored, &a.TailoredSourceHash, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalNullable(path, &a.LearningPath); err != nil {
		return nil, fmt.Errorf("decoding learning path: %w", err)
	}
	if err := unmarshalNullable(tailored, &a.TailoredResume); err != nil {
		return nil, fmt.Errorf("decoding tailored resume: %w", err)
	}
	return &a, nil
}

// nonNil keeps TEXT[] columns from receiving NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
