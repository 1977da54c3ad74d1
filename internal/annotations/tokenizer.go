package annotations

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/buildergen/internal/errors"
	"github.com/toyz/buildergen/internal/models"
)

// DeriveMarker is the doc comment line that marks a struct for generation
const DeriveMarker = "//" + models.BuilderNamespace + ":derive"

var directiveLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//`},
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[(),:=]`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
	{Name: "Other", Pattern: `.`},
})

var (
	symbols        = directiveLexer.Symbols()
	commentType    = symbols["Comment"]
	stringType     = symbols["String"]
	identType      = symbols["Ident"]
	numberType     = symbols["Number"]
	punctType      = symbols["Punct"]
	whitespaceType = symbols["Whitespace"]
)

// Tokenize lexes annotation text into span-carrying tokens.
// base is the location of the first byte of text; whitespace is dropped.
func Tokenize(text string, base errors.SourceLocation) ([]models.Token, error) {
	lex, err := directiveLexer.LexString(base.File, text)
	if err != nil {
		return nil, err
	}

	var tokens []models.Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF() {
			break
		}
		if tok.Type == whitespaceType {
			continue
		}

		start := translate(base, tok.Pos)
		end := start
		end.Column += len(tok.Value)
		end.Offset += len(tok.Value)

		tokens = append(tokens, models.Token{
			Kind: tokenKind(tok.Type),
			Text: tok.Value,
			Span: errors.NewSpan(start, end),
		})
	}

	return tokens, nil
}

// ParseEntry splits a directive comment of the form `//ns(body)` into an
// annotation entry. ok is false for ordinary prose, for the derive marker, and
// for other namespaces not followed directly by `(`. A comment starting with
// `//builder` is always an entry, so a malformed body such as
// `//builder required` reaches the grammar and is reported.
func ParseEntry(comment string, loc errors.SourceLocation) (entry models.AnnotationEntry, ok bool, err error) {
	if !strings.HasPrefix(comment, "//") || IsDeriveMarker(comment) {
		return models.AnnotationEntry{}, false, nil
	}

	tokens, err := Tokenize(comment, loc)
	if err != nil {
		return models.AnnotationEntry{}, false, fmt.Errorf("failed to tokenize %q: %w", comment, err)
	}
	if len(tokens) < 2 {
		return models.AnnotationEntry{}, false, nil
	}

	slashes, ns := tokens[0], tokens[1]
	if ns.Kind != models.TokenIdent || !adjacent(slashes, ns) {
		return models.AnnotationEntry{}, false, nil
	}

	body := tokens[2:]
	if ns.Text != models.BuilderNamespace {
		if len(body) == 0 || !body[0].Is("(") || !adjacent(ns, body[0]) {
			return models.AnnotationEntry{}, false, nil
		}
	}

	span := errors.NewSpan(slashes.Span.Start, ns.Span.End)
	if len(body) > 0 {
		span.End = body[len(body)-1].Span.End
	}
	return models.AnnotationEntry{
		Namespace:     ns.Text,
		NamespaceSpan: ns.Span,
		Body:          body,
		Span:          span,
	}, true, nil
}

// IsDeriveMarker reports whether a comment line marks its struct for generation
func IsDeriveMarker(comment string) bool {
	return strings.TrimRight(comment, " \t\r") == DeriveMarker
}

// adjacent reports whether b starts exactly where a ends
func adjacent(a, b models.Token) bool {
	return a.Span.End.Offset == b.Span.Start.Offset && a.Span.End.Line == b.Span.Start.Line
}

func translate(base errors.SourceLocation, pos lexer.Position) errors.SourceLocation {
	loc := errors.SourceLocation{
		File:   base.File,
		Line:   base.Line + pos.Line - 1,
		Column: pos.Column,
		Offset: base.Offset + pos.Offset,
	}
	if pos.Line == 1 {
		loc.Column = base.Column + pos.Column - 1
	}
	return loc
}

func tokenKind(t lexer.TokenType) models.TokenKind {
	switch t {
	case identType:
		return models.TokenIdent
	case stringType:
		return models.TokenString
	case numberType:
		return models.TokenNumber
	case punctType, commentType:
		return models.TokenPunct
	default:
		return models.TokenOther
	}
}
