package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/buildergen/internal/errors"
	"github.com/toyz/buildergen/internal/models"
)

func TestTokenize_Positions(t *testing.T) {
	base := errors.SourceLocation{File: "model.go", Line: 4, Column: 9, Offset: 100}

	tokens, err := Tokenize("//builder(required, )", base)
	require.NoError(t, err)

	texts := make([]string, len(tokens))
	for i, tok := range tokens {
		texts[i] = tok.Text
	}
	assert.Equal(t, []string{"//", "builder", "(", "required", ",", ")"}, texts)

	required := tokens[3]
	assert.Equal(t, models.TokenIdent, required.Kind)
	assert.Equal(t, "model.go", required.Span.Start.File)
	assert.Equal(t, 4, required.Span.Start.Line)
	assert.Equal(t, 19, required.Span.Start.Column)
	assert.Equal(t, 110, required.Span.Start.Offset)
	assert.Equal(t, 27, required.Span.End.Column)
	assert.Equal(t, 118, required.Span.End.Offset)

	closing := tokens[5]
	assert.Equal(t, models.TokenPunct, closing.Kind)
	assert.Equal(t, 29, closing.Span.Start.Column)
}

func TestTokenize_Kinds(t *testing.T) {
	base := errors.SourceLocation{File: "model.go", Line: 1, Column: 1}

	tests := []struct {
		name     string
		input    string
		expected []models.TokenKind
	}{
		{"identifier", "required", []models.TokenKind{models.TokenIdent}},
		{"string", `"a b"`, []models.TokenKind{models.TokenString}},
		{"number", "42", []models.TokenKind{models.TokenNumber}},
		{"punctuation", "(,)", []models.TokenKind{models.TokenPunct, models.TokenPunct, models.TokenPunct}},
		{"other", "@", []models.TokenKind{models.TokenOther}},
		{"tabs are dropped", "\trequired\t", []models.TokenKind{models.TokenIdent}},
		{"unterminated quote", `"abc`, []models.TokenKind{models.TokenOther, models.TokenIdent}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input, base)
			require.NoError(t, err)

			kinds := make([]models.TokenKind, len(tokens))
			for i, tok := range tokens {
				kinds[i] = tok.Kind
			}
			assert.Equal(t, tt.expected, kinds)
		})
	}
}

func TestParseEntry(t *testing.T) {
	loc := errors.SourceLocation{File: "model.go", Line: 7, Column: 2}

	tests := []struct {
		name      string
		comment   string
		ok        bool
		namespace string
		body      int
	}{
		{"builder entry", "//builder(required)", true, "builder", 3},
		{"trailing comma", "//builder(required,)", true, "builder", 4},
		{"empty body", "//builder()", true, "builder", 2},
		{"unclosed body", "//builder(", true, "builder", 1},
		{"foreign namespace", "//json(omit)", true, "json", 3},
		{"space before body", "//builder (required)", true, "builder", 3},
		{"missing parentheses", "//builder required", true, "builder", 1},
		{"colon instead of parentheses", "//builder:required", true, "builder", 2},
		{"equals instead of parentheses", "//builder=required", true, "builder", 2},
		{"bare namespace", "//builder", true, "builder", 0},
		{"misspelled marker", "//builder:derived", true, "builder", 2},
		{"prose comment", "// Name is the display name", false, "", 0},
		{"space after slashes", "// builder(required)", false, "", 0},
		{"foreign namespace without body", "//json omit", false, "", 0},
		{"derive marker", "//builder:derive", false, "", 0},
		{"go directive", "//go:generate buildergen", false, "", 0},
		{"block comment", "/* builder(required) */", false, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok, err := ParseEntry(tt.comment, loc)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.namespace, entry.Namespace)
			assert.Len(t, entry.Body, tt.body)
			assert.Equal(t, 7, entry.Span.Start.Line)
			assert.Equal(t, 2, entry.Span.Start.Column)
			assert.Equal(t, 4, entry.NamespaceSpan.Start.Column)
		})
	}
}

func TestIsDeriveMarker(t *testing.T) {
	assert.True(t, IsDeriveMarker("//builder:derive"))
	assert.True(t, IsDeriveMarker("//builder:derive  "))
	assert.False(t, IsDeriveMarker("// builder:derive"))
	assert.False(t, IsDeriveMarker("//builder:derived"))
	assert.False(t, IsDeriveMarker("//builder(required)"))
}
