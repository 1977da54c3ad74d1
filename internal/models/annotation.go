package models

import (
	"strings"

	"github.com/toyz/buildergen/internal/errors"
)

// BuilderNamespace is the annotation namespace read by buildergen
const BuilderNamespace = "builder"

// TokenKind classifies a lexed annotation token
type TokenKind int

const (
	TokenIdent TokenKind = iota
	TokenString
	TokenNumber
	TokenPunct
	TokenOther
)

// String returns the string representation of the token kind
func (k TokenKind) String() string {
	switch k {
	case TokenIdent:
		return "identifier"
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	case TokenPunct:
		return "punctuation"
	default:
		return "token"
	}
}

// Token is one lexed piece of annotation text
type Token struct {
	Kind TokenKind   // lexical class
	Text string      // exact source text
	Span errors.Span // where the token appears
}

// Is reports whether the token is the punctuation or identifier text
func (t Token) Is(text string) bool {
	return t.Text == text
}

// AnnotationEntry is one `//ns(body)` directive comment attached to a declaration
type AnnotationEntry struct {
	Namespace     string      // namespace identifier before the body
	NamespaceSpan errors.Span // span of the namespace identifier
	Body          []Token     // tokens of the body, parentheses included
	Span          errors.Span // span of the whole entry
}

// BodyText returns the body tokens joined with single spaces
func (e AnnotationEntry) BodyText() string {
	parts := make([]string, len(e.Body))
	for i, tok := range e.Body {
		parts[i] = tok.Text
	}
	return strings.Join(parts, " ")
}
