package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Fields are the candidate contact details pulled out of one resume.
type Fields struct {
	Name  string
	Email string
	Phone string
}

// Extractor turns raw resume bytes into candidate fields. An error means the
// document is unreadable or carries no usable contact details; the caller
// records it as a per-file failure.
type Extractor interface {
	Extract(ctx context.Context, fileName, mimeType string, data []byte) (*Fields, error)
}

var (
	ErrNoText  = errors.New("no readable text in document")
	ErrNoEmail = errors.New("no email address found in document")

	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?[0-9][0-9()\-. ]{7,18}[0-9]`)
	nameRe  = regexp.MustCompile(`^[A-Z][a-zA-Z'.\-]+(?: [A-Z][a-zA-Z'.\-]+){1,3}$`)
)

// FieldsFromText applies the shared contact-detail heuristics to plain text.
// Both extractors funnel through here once they have text in hand.
func FieldsFromText(fileName, text string) (*Fields, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}

	email := emailRe.FindString(text)
	if email == "" {
		return nil, ErrNoEmail
	}

	f := &Fields{Email: strings.ToLower(email)}

	if phone := phoneRe.FindString(text); phone != "" {
		f.Phone = strings.TrimSpace(phone)
	}

	// A resume usually opens with the candidate's name. Take the first line
	// that looks like one; fall back to the email local part.
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if nameRe.MatchString(line) {
			f.Name = line
			break
		}
	}
	if f.Name == "" {
		f.Name = nameFromEmail(f.Email)
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(fileName, pathExt(fileName))
	}
	return f, nil
}

func nameFromEmail(email string) string {
	local, _, ok := strings.Cut(email, "@")
	if !ok {
		return ""
	}
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	var words []string
	for _, p := range parts {
		if p == "" || strings.IndexFunc(p, isLetter) == -1 {
			continue
		}
		words = append(words, capitalize(p))
	}
	return strings.Join(words, " ")
}

func capitalize(s string) string {
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func pathExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}
