package keyword

import (
	"bufio"
	"io"
	"strings"
	"unicode"
)

type itemKind int

const (
	itemDirective itemKind = iota
	itemOpen
	itemClose
)

type item struct {
	kind   itemKind
	tokens []string
	line   int
}

// token is one word of a line. Quoted tokens are never block braces.
type token struct {
	text   string
	quoted bool
}

// maxLineLength bounds a single configuration line.
const maxLineLength = 1 << 20

type lexer struct {
	scanner *bufio.Scanner
	line    int
	queue   []item
}

func newLexer(r io.Reader) *lexer {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), maxLineLength)
	return &lexer{scanner: s}
}

// next returns the next item. ok is false at end of input; err reports a
// read failure.
func (l *lexer) next() (item, bool, error) {
	for len(l.queue) == 0 {
		if !l.scanner.Scan() {
			return item{}, false, l.scanner.Err()
		}
		l.line++
		l.queue = splitItems(tokenize(l.scanner.Text()), l.line)
	}
	it := l.queue[0]
	l.queue = l.queue[1:]
	return it, true, nil
}

// splitItems cuts a line's tokens into directives at block braces.
func splitItems(tokens []token, line int) []item {
	var (
		items []item
		words []string
	)
	flush := func() {
		if len(words) > 0 {
			items = append(items, item{kind: itemDirective, tokens: words, line: line})
			words = nil
		}
	}

	for _, tok := range tokens {
		switch {
		case tok.quoted:
			words = append(words, tok.text)
		case tok.text == "{":
			flush()
			items = append(items, item{kind: itemOpen, line: line})
		case tok.text == "}":
			flush()
			items = append(items, item{kind: itemClose, line: line})
		default:
			words = append(words, tok.text)
		}
	}
	flush()

	return items
}

// tokenize splits a line on whitespace. Double quotes group words into one
// token, a token starting with # or ! ends the line, and braces glued to a
// word are split off.
func tokenize(line string) []token {
	var (
		tokens  []token
		current strings.Builder
		quoted  bool
		inToken bool
	)
	emit := func() {
		if inToken {
			tokens = append(tokens, splitBraces(current.String(), quoted)...)
		}
		current.Reset()
		inToken = false
		quoted = false
	}

	inQuotes := false
	for _, r := range line {
		switch {
		case inQuotes:
			if r == '"' {
				inQuotes = false
				continue
			}
			current.WriteRune(r)
		case r == '"':
			inQuotes = true
			inToken = true
			quoted = true
		case unicode.IsSpace(r):
			emit()
		case (r == '#' || r == '!') && !inToken:
			emit()
			return tokens
		default:
			current.WriteRune(r)
			inToken = true
		}
	}
	emit()

	return tokens
}

func splitBraces(tok string, quoted bool) []token {
	if quoted {
		return []token{{text: tok, quoted: true}}
	}

	var parts []token
	start := 0
	for i, r := range tok {
		if r != '{' && r != '}' {
			continue
		}
		if i > start {
			parts = append(parts, token{text: tok[start:i]})
		}
		parts = append(parts, token{text: string(r)})
		start = i + 1
	}
	if start < len(tok) {
		parts = append(parts, token{text: tok[start:]})
	}
	return parts
}
