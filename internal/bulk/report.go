package bulk

import (
	"bytes"
	"encoding/csv"

	"TalentDesk/server/internal/models"
)

// RenderErrorReport produces the downloadable CSV of failed files. With no
// failures the report is just the header row.
func RenderErrorReport(failed []models.BulkUploadFile) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	_ = w.Write([]string{"original_filename", "error_message", "extracted_name", "extracted_email", "extracted_phone"})
	for _, f := range failed {
		_ = w.Write([]string{
			f.OriginalName,
			deref(f.ErrorMessage),
			deref(f.ExtractedName),
			deref(f.ExtractedEmail),
			deref(f.ExtractedPhone),
		})
	}
	w.Flush()
	return buf.Bytes()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
