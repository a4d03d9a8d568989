package minify

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokenClass is what the scanner remembers about the previous emitted
// token when deciding whether the next one needs a separator.
type tokenClass uint8

const (
	classNone tokenClass = iota
	classWord
	classReturn // return, throw, break
	classPlus
	classMinus
)

// regexContext lists the single characters after which a slash opens a
// regular expression literal rather than a division.
const regexContext = "-+([{}=,:;!%^&*|?~"

// regexKeywords may also precede a regex literal.
var regexKeywords = [][]byte{[]byte("return"), []byte("throw")}

// JS compacts JavaScript source without parsing it. Whitespace and comments
// are removed; a newline is kept between two words and between two
// operator runs that would otherwise fuse, and a space is kept after
// return, throw and break.
func JS(src []byte) []byte {
	buf := make([]byte, 0, len(src)+1)
	buf = append(buf, src...)
	// Terminates a trailing line comment.
	buf = append(buf, '\n')

	s := &jsScanner{src: buf}
	s.out.Grow(len(src))
	s.run()
	return s.out.Bytes()
}

// jsScanner walks the source once, left to right.
type jsScanner struct {
	src  []byte
	pos  int
	last tokenClass
	out  bytes.Buffer
}

func (s *jsScanner) run() {
	s.pos = s.skipInsignificant(s.pos)
	atStart := true
	for s.pos < len(s.src) {
		s.step(atStart)
		atStart = false
		s.pos = s.skipInsignificant(s.pos)
	}
}

// step consumes exactly one token. Recognizers are tried in order and the
// first that matches wins.
func (s *jsScanner) step(atStart bool) {
	if ctxEnd, litStart, litEnd, ok := s.regexAt(atStart); ok {
		s.emitRegex(s.src[s.pos:ctxEnd], s.src[litStart:litEnd])
		s.pos = litEnd
		return
	}
	if n := s.stringAt(s.pos); n > 0 {
		s.emitOther(s.src[s.pos : s.pos+n])
		s.pos += n
		return
	}
	if n := s.wordAt(s.pos); n > 0 {
		s.emitWord(s.src[s.pos : s.pos+n])
		s.pos += n
		return
	}
	if n := s.operatorRunAt(s.pos); n > 0 {
		s.emitOperatorRun(s.src[s.pos : s.pos+n])
		s.pos += n
		return
	}
	_, size := utf8.DecodeRune(s.src[s.pos:])
	s.emitOther(s.src[s.pos : s.pos+size])
	s.pos += size
}

func (s *jsScanner) emitWord(w []byte) {
	s.separateWord()
	s.out.Write(w)
	if isReturnLike(w) {
		s.last = classReturn
	} else {
		s.last = classWord
	}
}

func (s *jsScanner) separateWord() {
	switch s.last {
	case classWord:
		s.out.WriteByte('\n')
	case classReturn:
		s.out.WriteByte(' ')
	}
}

func (s *jsScanner) emitOperatorRun(run []byte) {
	c := operatorClass(run[0])
	if s.last == c {
		s.out.WriteByte('\n')
	}
	s.out.Write(run)
	s.last = c
}

func (s *jsScanner) emitOther(tok []byte) {
	s.out.Write(tok)
	s.last = classNone
}

// emitRegex writes the context that made the literal a regex, then the
// literal itself. A keyword context is separated like any word and a +/-
// context like any operator run.
func (s *jsScanner) emitRegex(ctx, lit []byte) {
	switch {
	case len(ctx) == 0:
	case isWordByte(ctx[0]):
		s.separateWord()
		s.out.Write(ctx)
	case ctx[0] == '/':
		s.out.WriteByte('/')
		s.out.WriteByte('\n')
	default:
		if c := operatorClass(ctx[0]); c != classNone && s.last == c {
			s.out.WriteByte('\n')
		}
		s.out.Write(ctx)
	}
	s.out.Write(lit)
	s.last = classNone
}

// regexAt reports whether a regex literal, together with the context that
// licenses it, starts at the cursor. ctxEnd marks the end of the context
// token; the literal spans litStart to litEnd.
func (s *jsScanner) regexAt(atStart bool) (ctxEnd, litStart, litEnd int, ok bool) {
	if atStart {
		if n := s.regexLiteralAt(s.pos); n > 0 {
			return s.pos, s.pos, s.pos + n, true
		}
	}

	ctxLen := s.regexContextAt(s.pos)
	if ctxLen == 0 {
		return 0, 0, 0, false
	}
	start := s.skipInsignificant(s.pos + ctxLen)
	n := s.regexLiteralAt(start)
	if n == 0 {
		return 0, 0, 0, false
	}
	return s.pos + ctxLen, start, start + n, true
}

// regexContextAt returns the length of a regex context token at i, or 0.
func (s *jsScanner) regexContextAt(i int) int {
	c := s.src[i]
	switch {
	case strings.IndexByte(regexContext, c) >= 0:
		return 1
	case c == '/':
		if i+1 < len(s.src) && (s.src[i+1] == '/' || s.src[i+1] == '*') {
			return 0
		}
		return 1
	}
	for _, kw := range regexKeywords {
		if bytes.HasPrefix(s.src[i:], kw) && s.wordAt(i) == len(kw) {
			return len(kw)
		}
	}
	return 0
}

// regexLiteralAt returns the length of a /.../ literal at i, or 0. The body
// may not start with / or *, may not contain a raw newline, honors
// backslash escapes and treats / inside [...] as ordinary. Flags are left
// for the word recognizer.
func (s *jsScanner) regexLiteralAt(i int) int {
	src := s.src
	if i+1 >= len(src) || src[i] != '/' || src[i+1] == '/' || src[i+1] == '*' {
		return 0
	}
	for k := i + 1; k < len(src); {
		switch src[k] {
		case '\\':
			if k+1 >= len(src) || src[k+1] == '\n' {
				return 0
			}
			k += 2
		case '[':
			end := classEnd(src, k)
			if end < 0 {
				return 0
			}
			k = end
		case '/':
			return k + 1 - i
		case '\n':
			return 0
		default:
			k++
		}
	}
	return 0
}

// classEnd returns the index just past the ] closing the class opened at i,
// or -1.
func classEnd(src []byte, i int) int {
	for k := i + 1; k < len(src); {
		switch src[k] {
		case '\\':
			if k+1 >= len(src) || src[k+1] == '\n' {
				return -1
			}
			k += 2
		case ']':
			return k + 1
		case '\n':
			return -1
		default:
			k++
		}
	}
	return -1
}

// stringAt returns the length of a quoted string at i, or 0 if none is
// terminated. Single and double quoted strings end at a raw newline;
// template literals may span lines.
func (s *jsScanner) stringAt(i int) int {
	src := s.src
	q := src[i]
	if q != '\'' && q != '"' && q != '`' {
		return 0
	}
	for k := i + 1; k < len(src); {
		switch src[k] {
		case q:
			return k + 1 - i
		case '\\':
			if k+1 >= len(src) || (q != '`' && src[k+1] == '\n') {
				return 0
			}
			k += 2
		case '\n':
			if q != '`' {
				return 0
			}
			k++
		default:
			k++
		}
	}
	return 0
}

// wordAt returns the byte length of the identifier, keyword or number at i.
func (s *jsScanner) wordAt(i int) int {
	k := i
	for k < len(s.src) {
		c := s.src[k]
		if c < utf8.RuneSelf {
			if !isWordByte(c) {
				break
			}
			k++
			continue
		}
		r, size := utf8.DecodeRune(s.src[k:])
		if !isWordRune(r) {
			break
		}
		k += size
	}
	return k - i
}

func (s *jsScanner) operatorRunAt(i int) int {
	k := i
	for k < len(s.src) && (s.src[k] == '+' || s.src[k] == '-') {
		k++
	}
	return k - i
}

// skipInsignificant returns the index of the first byte at or after i that
// is not whitespace, a line comment or a terminated block comment.
func (s *jsScanner) skipInsignificant(i int) int {
	src := s.src
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			i++
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			nl := bytes.IndexByte(src[i+2:], '\n')
			if nl < 0 {
				return i
			}
			i += 2 + nl + 1
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := bytes.Index(src[i+2:], []byte("*/"))
			if end < 0 {
				return i
			}
			i += 2 + end + 2
		case c >= utf8.RuneSelf:
			r, size := utf8.DecodeRune(src[i:])
			if r != '\uFEFF' && r != '\u00A0' {
				return i
			}
			i += size
		default:
			return i
		}
	}
	return i
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isWordRune(r rune) bool {
	if r == utf8.RuneError {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)
}

func isReturnLike(w []byte) bool {
	switch string(w) {
	case "return", "throw", "break":
		return true
	}
	return false
}

func operatorClass(c byte) tokenClass {
	switch c {
	case '+':
		return classPlus
	case '-':
		return classMinus
	}
	return classNone
}
