package annotations

import (
	"fmt"
	"sort"
	"strings"

	"github.com/toyz/buildergen/internal/errors"
	"github.com/toyz/buildergen/internal/models"
)

// keywords maps each directive keyword to its kind. Adding a directive is one
// entry here plus one models.DirectiveKind.
var keywords = map[string]models.DirectiveKind{
	"required": models.DirectiveRequired,
}

var directiveHint = fmt.Sprintf("directives are written in parentheses, e.g. `//%s(required)`", models.BuilderNamespace)

// expectedKeywords renders the keyword table for error messages, e.g. "`required`"
func expectedKeywords() string {
	names := make([]string, 0, len(keywords))
	for name := range keywords {
		names = append(names, "`"+name+"`")
	}
	sort.Strings(names)
	if len(names) == 1 {
		return names[0]
	}
	return "one of " + strings.Join(names, ", ")
}

// ParseDirectiveBody parses the body of one builder entry:
//
//	body := "(" [ item { "," item } [ "," ] ] ")"
//	item := keyword
//
// anchor locates errors when the body is empty.
func ParseDirectiveBody(body []models.Token, anchor errors.Span) ([]models.Directive, error) {
	c := &cursor{tokens: body, anchor: anchor}
	return c.parseBody()
}

type cursor struct {
	tokens []models.Token
	pos    int
	anchor errors.Span
}

func (c *cursor) peek() (models.Token, bool) {
	if c.pos >= len(c.tokens) {
		return models.Token{}, false
	}
	return c.tokens[c.pos], true
}

func (c *cursor) next() (models.Token, bool) {
	tok, ok := c.peek()
	if ok {
		c.pos++
	}
	return tok, ok
}

// endSpan is a zero-width span just past the last token
func (c *cursor) endSpan() errors.Span {
	if len(c.tokens) == 0 {
		return c.anchor
	}
	end := c.tokens[len(c.tokens)-1].Span.End
	return errors.NewSpan(end, end)
}

func (c *cursor) parseBody() ([]models.Directive, error) {
	open, ok := c.next()
	if !ok {
		return nil, syntaxError(c.anchor, "expected `(` to open the builder directive list").
			WithHint(directiveHint)
	}
	if !open.Is("(") {
		return nil, syntaxErrorf(open.Span, "unexpected `%s`, expected `(`", open.Text).
			WithHint(directiveHint)
	}

	directives := make([]models.Directive, 0)
	for {
		tok, ok := c.peek()
		if !ok {
			return nil, c.unclosed()
		}
		if tok.Is(")") {
			c.next()
			break
		}

		directive, err := c.parseDirective()
		if err != nil {
			return nil, err
		}
		directives = append(directives, directive)

		sep, ok := c.next()
		if !ok {
			return nil, c.unclosed()
		}
		if sep.Is(")") {
			break
		}
		if !sep.Is(",") {
			return nil, syntaxErrorf(sep.Span, "unexpected `%s`, expected `,` or `)`", sep.Text)
		}
	}

	if extra, ok := c.peek(); ok {
		return nil, syntaxErrorf(extra.Span, "unexpected `%s` after the builder directive list", extra.Text)
	}

	return directives, nil
}

func (c *cursor) parseDirective() (models.Directive, error) {
	tok, _ := c.next()
	if tok.Kind != models.TokenIdent {
		return models.Directive{}, syntaxErrorf(tok.Span, "unexpected `%s`, expected %s", tok.Text, expectedKeywords())
	}

	kind, known := keywords[tok.Text]
	if !known {
		diag := syntaxErrorf(tok.Span, "unknown builder directive `%s`, expected %s", tok.Text, expectedKeywords())
		for name := range keywords {
			if strings.EqualFold(name, tok.Text) {
				diag.WithHint(fmt.Sprintf("directive keywords are case-sensitive, did you mean `%s`?", name))
			}
		}
		return models.Directive{}, diag
	}

	return models.Directive{Kind: kind, Span: tok.Span}, nil
}

func (c *cursor) unclosed() *errors.Diagnostic {
	return syntaxError(c.endSpan(), "unclosed builder directive list, expected `)`")
}

func syntaxError(span errors.Span, message string) *errors.Diagnostic {
	return errors.NewDiagnostic(span, errors.DirectiveSyntaxErrorCode, message)
}

func syntaxErrorf(span errors.Span, format string, args ...interface{}) *errors.Diagnostic {
	return errors.Diagnosticf(span, errors.DirectiveSyntaxErrorCode, format, args...)
}
