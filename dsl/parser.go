package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:px|pt|mm|cm|in|deg)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),.=:;]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document is the root AST node for a job file.
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'job' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section represents a top-level section (dataset/page/output/text).
type Section struct {
	Pos     lexer.Position  `parser:"" json:"-"`
	Dataset *DatasetSection `parser:"  @@"`
	Page    *PageSection    `parser:"| @@"`
	Output  *OutputSection  `parser:"| @@"`
	Text    *TextSection    `parser:"| @@"`
}

// Kind returns the human-readable section type.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Dataset != nil:
		return "dataset"
	case s.Page != nil:
		return "page"
	case s.Output != nil:
		return "output"
	case s.Text != nil:
		return "text"
	default:
		return "unknown"
	}
}

// Block returns the statement block of whichever section is set.
func (s *Section) Block() *Block {
	switch {
	case s == nil:
		return nil
	case s.Dataset != nil:
		return s.Dataset.Block
	case s.Page != nil:
		return s.Page.Block
	case s.Output != nil:
		return s.Output.Block
	case s.Text != nil:
		return s.Text.Block
	default:
		return nil
	}
}

// DatasetSection locates the glyph dataset.
type DatasetSection struct {
	Block *Block `parser:"'dataset' @@"`
}

// PageSection holds layout parameters.
type PageSection struct {
	Block *Block `parser:"'page' @@"`
}

// OutputSection controls naming, format and batch execution.
type OutputSection struct {
	Block *Block `parser:"'output' @@"`
}

// TextSection configures warm-up text and inline documents.
type TextSection struct {
	Block *Block `parser:"'text' @@"`
}

// Block is a delimited list of statements.
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Statement inside a block (assignment or text literal).
type Statement struct {
	Assignment *Assignment  `parser:"  @@"`
	Text       *TextLiteral `parser:"| @@"`
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident"`
	Value *Value         `parser:"':' @@"`
}

// TextLiteral encapsulates raw string statements within blocks.
type TextLiteral struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Value StringLiteral  `parser:"@String"`
}

// Value represents generic property values. A run of numbers such as
// `1000px 800px` is captured as a single value.
type Value struct {
	String  *StringLiteral `parser:"  @String"`
	Numbers []string       `parser:"| @Number+"`
	Array   *ArrayValue    `parser:"| @@"`
	Ident   *string        `parser:"| @Ident"`
}

// ArrayValue captures `[ ... ]` expressions.
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | ';' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
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

// Raw returns the source text of a value for error messages.
func (v *Value) Raw() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return strconv.Quote(string(*v.String))
	case len(v.Numbers) > 0:
		out := v.Numbers[0]
		for _, n := range v.Numbers[1:] {
			out += " " + n
		}
		return out
	case v.Ident != nil:
		return *v.Ident
	case v.Array != nil:
		out := "["
		for i, e := range v.Array.Values {
			if i > 0 {
				out += ", "
			}
			out += e.Raw()
		}
		return out + "]"
	default:
		return ""
	}
}
