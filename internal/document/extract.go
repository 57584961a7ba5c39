package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/resumatch-api/internal/apperror"
)

// MaxUploadSize caps resume uploads.
const MaxUploadSize = 10 << 20

type Extraction struct {
	Text      string `json:"text"`
	PageCount int    `json:"pageCount"`
}

// Extract returns the plain text of a PDF with page markers, followed on each
// page by the URIs of its link annotations. Link targets are usually
// invisible in the rendered text (a "GitHub" label pointing at a profile),
// so they are listed separately for the parser.
func Extract(data []byte) (ext Extraction, err error) {
	// ledongthuc/pdf panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			ext = Extraction{}
			err = apperror.NewDocumentParse(fmt.Errorf("pdf reader panic: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Extraction{}, apperror.NewDocumentParse(err)
	}

	var sb strings.Builder
	numPages := reader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)

		text := ""
		if !page.V.IsNull() {
			text, err = page.GetPlainText(nil)
			if err != nil {
				log.Warn().Int("page", i).Err(err).Msg("Failed to extract text from PDF page")
				text = ""
			}
		}

		fmt.Fprintf(&sb, "--- PAGE %d ---\n\n%s\n\n", i, text)

		links := pageLinks(page)
		if len(links) > 0 {
			fmt.Fprintf(&sb, "[LINKS FOUND ON PAGE %d]:\n", i)
			for _, link := range links {
				sb.WriteString("- " + link + "\n")
			}
			sb.WriteString("\n")
		}
	}

	return Extraction{Text: sb.String(), PageCount: numPages}, nil
}

// pageLinks collects URI actions from the page's /Link annotations, in order.
func pageLinks(page pdf.Page) []string {
	if page.V.IsNull() {
		return nil
	}
	annots := page.V.Key("Annots")
	var links []string
	for j := 0; j < annots.Len(); j++ {
		annot := annots.Index(j)
		if annot.Key("Subtype").Name() != "Link" {
			continue
		}
		action := annot.Key("A")
		if action.Key("S").Name() != "URI" {
			continue
		}
		uri := strings.TrimSpace(action.Key("URI").RawString())
		if uri != "" {
			links = append(links, uri)
		}
	}
	return links
}
