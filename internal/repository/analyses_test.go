package repository

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"data", "data"},
		{"100%", `100\%`},
		{"snake_case", `snake\_case`},
		{`C:\jobs`, `C:\\jobs`},
		{`%_\`, `\%\_\\`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeLike(tt.in), tt.in)
	}
}

func TestSearchPatternIsBoundAsArgument(t *testing.T) {
	query, args, err := psql.Select("id").
		From("job_analyses").
		Where(sq.ILike{"job_title": "%" + escapeLike("50%_off") + "%"}).
		ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "job_title ILIKE $1")
	assert.Equal(t, []interface{}{`%50\%\_off%`}, args)
}
