package splitter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handbook = `TechDocs Employee Handbook

Chapter 1: Remote Work Policy

Our company embraces flexible work arrangements to support work-life balance.
Employees are permitted to work remotely up to 3 days per week, provided they
maintain regular communication with their team and meet all performance expectations.
Remote work requires manager approval and must not impact team collaboration or
customer service quality.

To work remotely, employees must have a suitable home office setup with reliable
internet connection, appropriate workspace, and necessary equipment. The company
provides a one-time stipend of $500 for home office setup. VPN access is mandatory
for accessing company systems remotely.

Chapter 2: Communication Guidelines

Effective communication is essential for remote work success. All employees must
be available during core hours (10 AM - 3 PM in their local timezone) for meetings
and collaboration.`

func TestRecursive(t *testing.T) {
	chunks, err := NewRecursive().SplitText(handbook)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), DefaultChunkSize)
		assert.NotEmpty(t, strings.TrimSpace(c))
	}

	small, err := NewRecursive(WithChunkSize(80), WithChunkOverlap(0), WithSeparators([]string{" "})).SplitText(handbook)
	require.NoError(t, err)
	assert.Greater(t, len(small), len(chunks))
	for _, c := range small {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 80)
	}
}

func TestParagraph(t *testing.T) {
	text := "aaaaaaaaaa\n\nbbbbb\n\ncc"
	chunks, err := NewParagraph().SplitText(text)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"aaaaaaaaaa bbbbb",
		"aa bbbbb cc",
		"b cc",
	}, chunks)

	noOverlap, err := (&Paragraph{}).SplitText(text)
	require.NoError(t, err)
	assert.Equal(t, "bbbbb cc", noOverlap[1])

	single, err := NewParagraph().SplitText("only one")
	require.NoError(t, err)
	assert.Equal(t, []string{"only one"}, single)
}

func TestParagraphCountsRunes(t *testing.T) {
	chunks, err := NewParagraph().SplitText("ééééé\n\nx")
	require.NoError(t, err)
	assert.Equal(t, "é x", chunks[1])
}
