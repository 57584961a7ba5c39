package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yourusername/resumatch-api/internal/model"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// FindByUserID returns nil, nil when the user has never saved a resume
func (r *ProfileRepo) FindByUserID(ctx context.Context, userID string) (*model.UserProfile, error) {
	var p model.UserProfile
	var details, data []byte
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, email, resume_text, personal_details, resume_data, updated_at
		FROM profiles
		WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.Email, &p.ResumeText, &details, &data, &p.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding profile: %w", err)
	}

	if err := unmarshalNullable(details, &p.PersonalDetails); err != nil {
		return nil, fmt.Errorf("decoding personal details: %w", err)
	}
	if err := unmarshalNullable(data, &p.ResumeData); err != nil {
		return nil, fmt.Errorf("decoding resume data: %w", err)
	}
	return &p, nil
}

// Upsert overwrites the whole profile. Concurrent saves: last writer wins.
func (r *ProfileRepo) Upsert(ctx context.Context, p *model.UserProfile) error {
	details, err := marshalNullable(p.PersonalDetails)
	if err != nil {
		return fmt.Errorf("encoding personal details: %w", err)
	}
	data, err := marshalNullable(p.ResumeData)
	if err != nil {
		return fmt.Errorf("encoding resume data: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO profiles (user_id, email, resume_text, personal_details, resume_data, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			email = EXCLUDED.email,
			resume_text = EXCLUDED.resume_text,
			personal_details = EXCLUDED.personal_details,
			resume_data = EXCLUDED.resume_data,
			updated_at = EXCLUDED.updated_at
	`, p.UserID, p.Email, p.ResumeText, details, data, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}

// ── JSONB helpers ─────────────────────────────────────

// marshalNullable encodes v as JSON, or SQL NULL when v is a nil pointer.
func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// unmarshalNullable leaves *dst nil for SQL NULL.
func unmarshalNullable[T any](raw []byte, dst **T) error {
	if len(raw) == 0 {
		*dst = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}
