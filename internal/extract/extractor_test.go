package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsFromText(t *testing.T) {
	t.Run("full resume header", func(t *testing.T) {
		text := "Jane Doe\nSenior Backend Engineer\njane.doe@example.com\n+1 (555) 123-4567\n"

		f, err := FieldsFromText("jane_doe.pdf", text)
		require.NoError(t, err)
		assert.Equal(t, "jane.doe@example.com", f.Email)
		assert.Equal(t, "Jane Doe", f.Name)
		assert.NotEmpty(t, f.Phone)
	})

	t.Run("email is lowercased", func(t *testing.T) {
		f, err := FieldsFromText("r.pdf", "Contact: John.SMITH@Example.COM")
		require.NoError(t, err)
		assert.Equal(t, "john.smith@example.com", f.Email)
	})

	t.Run("name falls back to email local part", func(t *testing.T) {
		f, err := FieldsFromText("r.pdf", "reach me at maria.garcia@example.com thanks")
		require.NoError(t, err)
		assert.Equal(t, "Maria Garcia", f.Name)
	})

	t.Run("no email fails", func(t *testing.T) {
		_, err := FieldsFromText("r.pdf", "years of experience with databases")
		require.ErrorIs(t, err, ErrNoEmail)
	})

	t.Run("empty text fails", func(t *testing.T) {
		_, err := FieldsFromText("r.pdf", "   \n  ")
		require.ErrorIs(t, err, ErrNoText)
	})

	t.Run("phone is optional", func(t *testing.T) {
		f, err := FieldsFromText("r.pdf", "Bob Stone\nbob@example.com")
		require.NoError(t, err)
		assert.Equal(t, "Bob Stone", f.Name)
		assert.Empty(t, f.Phone)
	})
}

func TestHeuristicExtractor(t *testing.T) {
	e := NewHeuristicExtractor()

	t.Run("text embedded in binary noise", func(t *testing.T) {
		data := append([]byte{0x25, 0x50, 0x44, 0x46, 0x00, 0x01, 0x02}, []byte("Alex Chen")...)
		data = append(data, 0x00, 0xff)
		data = append(data, []byte("alex.chen@example.com")...)
		data = append(data, 0x03, 0x04)

		f, err := e.Extract(context.Background(), "alex.pdf", "application/pdf", data)
		require.NoError(t, err)
		assert.Equal(t, "alex.chen@example.com", f.Email)
		assert.Equal(t, "Alex Chen", f.Name)
	})

	t.Run("pure binary fails", func(t *testing.T) {
		_, err := e.Extract(context.Background(), "noise.pdf", "application/pdf", []byte{0x00, 0x01, 0x02, 0x03, 0xff})
		require.Error(t, err)
	})
}

func TestPrintableRuns(t *testing.T) {
	// Short runs are dropped as binary noise; long runs survive on their own lines.
	got := printableRuns([]byte("ab\x00candidate resume\x00xy"))
	assert.Equal(t, "candidate resume\n", got)
}
