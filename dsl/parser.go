package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/panes/layout"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `(?:\d+\.\d+|\d+)(?:pt|mm|cm|in|x)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[][;:,{}]`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
		participle.Unquote("String"),
	)
)

// Document is the root AST node for a pane layout file.
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'doc' @Ident"`
	Version  string         `parser:"@( Ident | Number )"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section represents a top-level section (meta/fonts/pane).
type Section struct {
	Meta  *MetaSection  `parser:"  @@"`
	Fonts *FontsSection `parser:"| @@"`
	Pane  *PaneNode     `parser:"| @@"`
}

// Kind returns the human-readable section type.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Meta != nil:
		return "meta"
	case s.Fonts != nil:
		return "fonts"
	case s.Pane != nil:
		return "pane"
	default:
		return "unknown"
	}
}

// MetaSection holds document info entries such as `title: "Report"`.
type MetaSection struct {
	Entries []*MetaEntry `parser:"'meta' '{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// MetaEntry is a single key with one value or a bracketed list of strings.
type MetaEntry struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Key    string         `parser:"@Ident ':' Newline*"`
	Values []string       `parser:"( @( String | Number | Ident ) | '[' Newline* ( @String ( ( ',' | ';' | Newline ) Newline* @String )* )? Newline* ']' )"`
}

// FontsSection maps font names to sources (`Body: "embed:goregular"`).
type FontsSection struct {
	Entries []*FontEntry `parser:"'fonts' '{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// FontEntry binds a document font name to a source.
type FontEntry struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Name   string         `parser:"@Ident ':'"`
	Source string         `parser:"@String"`
}

// PaneNode is a `pane` with its arguments and an optional body.
type PaneNode struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Args  []*PaneArg     `parser:"'pane' @@*"`
	Items []*PaneItem    `parser:"( '{' Newline* ( @@ ( ';' | Newline )* )* '}' )?"`
}

// PaneItem is one entry of a pane body: a nested pane, a text node or a bare string.
type PaneItem struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Pane    *PaneNode      `parser:"  @@"`
	Text    *TextNode      `parser:"| @@"`
	Literal *string        `parser:"| @String"`
}

// TextNode is a `text` with formatting arguments and its string lines.
type TextNode struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Args  []*TextArg     `parser:"'text' @@*"`
	Lines []string       `parser:"( '{' Newline* ( @String ( ';' | Newline )* )* '}' )?"`
}

// PaneArg is a single pane argument; exactly one field is set.
type PaneArg struct {
	Pos         lexer.Position `parser:"" json:"-"`
	Orientation string         `parser:"  @( 'horizontal' | 'vertical' )"`
	Margin      *Length        `parser:"| 'margin' @Number"`
	Color       *Color         `parser:"| 'color' @( Color | Ident )"`
	Weight      *float64       `parser:"| 'weight' @Number"`
	Name        *string        `parser:"| 'name' @( Ident | String )"`
	Size        *SizeArg       `parser:"| 'size' @@"`
}

// SizeArg is the `size <w> <h>` pair.
type SizeArg struct {
	Width  Length `parser:"@Number"`
	Height Length `parser:"@Number"`
}

// TextArg is a single text argument; exactly one field is set.
type TextArg struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Justify string         `parser:"  @( 'left' | 'center' | 'right' )"`
	Align   string         `parser:"| @( 'top' | 'middle' | 'bottom' )"`
	Font    *string        `parser:"| 'font' @( Ident | String )"`
	Size    *Length        `parser:"| 'size' @Number"`
	Color   *Color         `parser:"| 'color' @( Color | Ident )"`
	Spacing *Factor        `parser:"| 'spacing' @Number"`
	Indent  *Length        `parser:"| 'indent' @Number"`
	Hang    *Length        `parser:"| 'hang' @Number"`
}

// Length is a number with an optional unit (`5mm`, `18pt`, `2`).
type Length struct {
	layout.Length
}

// Capture implements participle.Capture.
func (l *Length) Capture(values []string) error {
	v, err := layout.ParseLength(strings.Join(values, ""))
	if err != nil {
		return err
	}
	l.Length = v
	return nil
}

// Color is a `#hex` literal or a colour name.
type Color struct {
	layout.Color
}

// Capture implements participle.Capture.
func (c *Color) Capture(values []string) error {
	v, err := ParseColor(strings.Join(values, ""))
	if err != nil {
		return err
	}
	c.Color = v
	return nil
}

// Factor is a multiplier written as `1.5` or `1.5x`.
type Factor float64

// Capture implements participle.Capture.
func (f *Factor) Capture(values []string) error {
	raw := strings.Join(values, "")
	v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "x"), 64)
	if err != nil {
		return fmt.Errorf("无法解析倍数 %q", raw)
	}
	*f = Factor(v)
	return nil
}

// Parse parses DSL content from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses DSL content from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}
