package storage

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	a := &ResumeArchive{bucket: "b", now: func() time.Time {
		return time.Date(2026, 3, 10, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600))
	}}

	key := a.ObjectKey("user-1")
	assert.Regexp(t, regexp.MustCompile(`^resumes/user-1/2026-03-11/[0-9a-f-]{36}\.pdf$`), key)
	assert.NotEqual(t, key, a.ObjectKey("user-1"))
}
