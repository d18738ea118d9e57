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
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\.\d+|\d+)(?:px|rem|vw|vh)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),;:]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
		participle.UseLookahead(2),
	)
)

// Document is the root AST node for a .card file.
type Document struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Name string         `parser:"Newline* 'card' @Ident"`
	Body *Block         `parser:"@@ Newline*"`
}

// Block is a delimited list of statements.
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Statement inside a block.
type Statement struct {
	Text       *TextStatement `parser:"  @@"`
	List       *ListStatement `parser:"| @@"`
	Item       *ItemStatement `parser:"| @@"`
	Assignment *Assignment    `parser:"| @@"`
}

// TextStatement 是自由文本块：text "内容" { position: [x, y] ... }
type TextStatement struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Content StringLiteral  `parser:"'text' @String"`
	Block   *Block         `parser:"@@?"`
}

// ListStatement 是列表块，条目用 item 声明。
type ListStatement struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Block *Block         `parser:"'list' @@"`
}

// ItemStatement 是列表中的一个条目。
type ItemStatement struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Content StringLiteral  `parser:"'item' @String"`
	Block   *Block         `parser:"@@?"`
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident"`
	Value *Value         `parser:"':' Newline* @@"`
}

// Value represents generic property values.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Bool   *Boolean       `parser:"| @('true' | 'false')"`
	Array  *ArrayValue    `parser:"| @@"`
	Ident  *string        `parser:"| @Ident"`
}

// ArrayValue captures `[ ... ]` and `( ... )` expressions.
type ArrayValue struct {
	Values []*Value `parser:"( '[' Newline* ( @@ ( ',' Newline* @@ )* ','? )? Newline* ']' )"`
	Tuple  []*Value `parser:"| ( '(' Newline* ( @@ ( ',' Newline* @@ )* ','? )? Newline* ')' )"`
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

// Boolean captures true/false.
type Boolean bool

// Capture implements participle.Capture.
func (b *Boolean) Capture(values []string) error {
	*b = values[0] == "true"
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
