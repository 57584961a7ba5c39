package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/resumatch-api/internal/apperror"
	"github.com/yourusername/resumatch-api/internal/document"
)

// Archiver keeps a copy of uploaded files. Optional.
type Archiver interface {
	Archive(ctx context.Context, userID string, data []byte, contentType string) (string, error)
}

type ResumeHandler struct {
	archive Archiver
}

func NewResumeHandler(archive Archiver) *ResumeHandler {
	return &ResumeHandler{archive: archive}
}

// Extract handles POST /resume/extract
// Accepts a PDF via multipart form and returns its text with page markers and links
func (h *ResumeHandler) Extract(c *gin.Context) {
	sess, ok := session(c, "extract_resume")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, "extract_resume", apperror.NewInvalidInput("No file uploaded"))
		return
	}
	defer file.Close()

	// Limit to 10MB
	if header.Size > document.MaxUploadSize {
		respondError(c, "extract_resume", apperror.NewInvalidInput("File too large. Maximum size is 10MB."))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, document.MaxUploadSize+1))
	if err != nil {
		respondError(c, "extract_resume", apperror.NewInternal("reading upload", err))
		return
	}
	if len(data) > document.MaxUploadSize {
		respondError(c, "extract_resume", apperror.NewInvalidInput("File too large. Maximum size is 10MB."))
		return
	}

	// Sniff content; the filename and declared type are not trusted
	mtype := mimetype.Detect(data)
	if !mtype.Is("application/pdf") {
		respondError(c, "extract_resume", apperror.NewUnsupportedFormat(mtype.String()))
		return
	}

	ext, err := document.Extract(data)
	if err != nil {
		respondError(c, "extract_resume", err)
		return
	}

	resp := gin.H{
		"text":      ext.Text,
		"pageCount": ext.PageCount,
		"filename":  header.Filename,
	}

	if h.archive != nil {
		key, err := h.archive.Archive(c.Request.Context(), sess.UserID, data, mtype.String())
		if err != nil {
			log.Warn().Err(err).Str("userId", sess.UserID).Msg("Failed to archive uploaded resume")
		} else {
			resp["archiveKey"] = key
		}
	}

	log.Info().
		Str("userId", sess.UserID).
		Str("filename", header.Filename).
		Int("bytes", len(data)).
		Int("pages", ext.PageCount).
		Int("textLen", len(ext.Text)).
		Msg("Resume PDF text extracted")

	c.JSON(http.StatusOK, resp)
}
