package pdfpage

import (
	"strconv"
	"strings"
)

// approxGlyphWidth estimates a run's width as a fraction of the font size
// per byte of text. Real glyph metrics need font programs, which are out
// of scope; the estimate only feeds line-internal X ordering.
const approxGlyphWidth = 0.5

// defaultFontSize applies until the stream selects a font with Tf.
const defaultFontSize = 12.0

// interpretContent walks a decoded content stream and emits one TextRun
// per shown string, tracking the text-positioning operators.
func interpretContent(content []byte) []TextRun {
	in := &interp{scan: scanner{data: content}, fontSize: defaultFontSize}
	in.run()
	return in.runs
}

type interp struct {
	scan     scanner
	operands []operand

	x, y         float64
	lineX, lineY float64
	leading      float64
	fontSize     float64

	runs []TextRun
}

// operand is a content-stream operand: a number, a string payload, a name,
// or an array of operands.
type operand struct {
	num   float64
	str   string
	arr   []operand
	isNum bool
	isStr bool
}

func (in *interp) run() {
	for {
		tok, ok := in.scan.next()
		if !ok {
			return
		}
		if tok.isOperator {
			in.apply(tok.operator)
			in.operands = in.operands[:0]
			continue
		}
		in.operands = append(in.operands, tok.operand)
	}
}

func (in *interp) apply(op string) {
	switch op {
	case "BT":
		in.x, in.y, in.lineX, in.lineY = 0, 0, 0, 0
	case "Tf":
		if n, ok := in.lastNumber(0); ok {
			in.fontSize = n
		}
	case "TL":
		if n, ok := in.lastNumber(0); ok {
			in.leading = n
		}
	case "Td":
		in.moveLine()
	case "TD":
		if ty, ok := in.lastNumber(0); ok {
			in.leading = -ty
		}
		in.moveLine()
	case "Tm":
		// Only the translation terms matter; rotation and scale are
		// beyond geometric reconstruction.
		if len(in.operands) >= 6 {
			e, okE := number(in.operands[len(in.operands)-2])
			f, okF := number(in.operands[len(in.operands)-1])
			if okE && okF {
				in.lineX, in.lineY = e, f
				in.x, in.y = e, f
			}
		}
	case "T*":
		in.nextLine()
	case "Tj":
		if s, ok := in.lastString(); ok {
			in.show(s)
		}
	case "'":
		in.nextLine()
		if s, ok := in.lastString(); ok {
			in.show(s)
		}
	case "\"":
		in.nextLine()
		if s, ok := in.lastString(); ok {
			in.show(s)
		}
	case "TJ":
		if len(in.operands) == 0 {
			return
		}
		last := in.operands[len(in.operands)-1]
		for _, el := range last.arr {
			switch {
			case el.isStr:
				in.show(el.str)
			case el.isNum:
				// Negative adjustments move the pen right.
				in.x -= el.num / 1000 * in.fontSize
			}
		}
	}
}

// moveLine applies Td semantics: offset the line origin and restart the
// pen there.
func (in *interp) moveLine() {
	if len(in.operands) < 2 {
		return
	}
	tx, okX := number(in.operands[len(in.operands)-2])
	ty, okY := number(in.operands[len(in.operands)-1])
	if !okX || !okY {
		return
	}
	in.lineX += tx
	in.lineY += ty
	in.x, in.y = in.lineX, in.lineY
}

func (in *interp) nextLine() {
	in.lineY -= in.leading
	in.x, in.y = in.lineX, in.lineY
}

func (in *interp) show(text string) {
	if text == "" {
		return
	}
	width := float64(len(text)) * in.fontSize * approxGlyphWidth
	in.runs = append(in.runs, TextRun{
		Text:   text,
		X:      in.x,
		Y:      in.y,
		Width:  width,
		Height: in.fontSize,
	})
	in.x += width
}

// lastNumber returns the number skip operands from the end of the stack.
func (in *interp) lastNumber(skip int) (float64, bool) {
	idx := len(in.operands) - 1 - skip
	if idx < 0 {
		return 0, false
	}
	return number(in.operands[idx])
}

func (in *interp) lastString() (string, bool) {
	for i := len(in.operands) - 1; i >= 0; i-- {
		if in.operands[i].isStr {
			return in.operands[i].str, true
		}
	}
	return "", false
}

func number(op operand) (float64, bool) {
	return op.num, op.isNum
}

// scanner tokenizes a content stream into operands and operators.
type scanner struct {
	data []byte
	pos  int
}

type token struct {
	operand    operand
	operator   string
	isOperator bool
}

func (s *scanner) next() (token, bool) {
	s.skipFiller()
	if s.pos >= len(s.data) {
		return token{}, false
	}

	c := s.data[s.pos]
	switch {
	case c == '(':
		return token{operand: operand{str: s.literalString(), isStr: true}}, true
	case c == '<' && s.pos+1 < len(s.data) && s.data[s.pos+1] == '<':
		s.skipDictionary()
		return s.next()
	case c == '<':
		return token{operand: operand{str: s.hexString(), isStr: true}}, true
	case c == '[':
		s.pos++
		return token{operand: operand{arr: s.array()}}, true
	case c == ']':
		s.pos++
		return s.next()
	case c == '/':
		s.name()
		return s.next()
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		n := s.number()
		return token{operand: operand{num: n, isNum: true}}, true
	default:
		op := s.operator()
		if op == "" {
			s.pos++
			return s.next()
		}
		return token{operator: op, isOperator: true}, true
	}
}

// array collects operands until the closing bracket.
func (s *scanner) array() []operand {
	var elems []operand
	for {
		s.skipFiller()
		if s.pos >= len(s.data) || s.data[s.pos] == ']' {
			if s.pos < len(s.data) {
				s.pos++
			}
			return elems
		}
		tok, ok := s.next()
		if !ok {
			return elems
		}
		if !tok.isOperator {
			elems = append(elems, tok.operand)
		}
	}
}

func (s *scanner) skipFiller() {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0 {
			s.pos++
			continue
		}
		if c == '%' {
			for s.pos < len(s.data) && s.data[s.pos] != '\n' {
				s.pos++
			}
			continue
		}
		return
	}
}

func (s *scanner) skipDictionary() {
	depth := 0
	for s.pos+1 < len(s.data) {
		if s.data[s.pos] == '<' && s.data[s.pos+1] == '<' {
			depth++
			s.pos += 2
			continue
		}
		if s.data[s.pos] == '>' && s.data[s.pos+1] == '>' {
			depth--
			s.pos += 2
			if depth == 0 {
				return
			}
			continue
		}
		s.pos++
	}
	s.pos = len(s.data)
}

// literalString parses a parenthesized string with backslash escapes and
// balanced nested parentheses.
func (s *scanner) literalString() string {
	s.pos++ // consume '('
	var buf strings.Builder
	depth := 1

	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch c {
		case '\\':
			s.pos++
			if s.pos >= len(s.data) {
				return buf.String()
			}
			e := s.data[s.pos]
			switch e {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case '(', ')', '\\':
				buf.WriteByte(e)
			case '\n':
				// Line continuation: emit nothing.
			case '\r':
				if s.pos+1 < len(s.data) && s.data[s.pos+1] == '\n' {
					s.pos++
				}
			default:
				if e >= '0' && e <= '7' {
					buf.WriteByte(s.octal())
					continue
				}
				buf.WriteByte(e)
			}
			s.pos++
		case '(':
			depth++
			buf.WriteByte(c)
			s.pos++
		case ')':
			depth--
			s.pos++
			if depth == 0 {
				return buf.String()
			}
			buf.WriteByte(c)
		default:
			buf.WriteByte(c)
			s.pos++
		}
	}
	return buf.String()
}

// octal consumes up to three octal digits starting at the current
// position and returns the encoded byte. The caller sits on the first
// digit; on return the position is one past the last digit consumed.
func (s *scanner) octal() byte {
	var v int
	for n := 0; n < 3 && s.pos < len(s.data); n++ {
		c := s.data[s.pos]
		if c < '0' || c > '7' {
			break
		}
		v = v*8 + int(c-'0')
		s.pos++
	}
	return byte(v)
}

func (s *scanner) hexString() string {
	s.pos++ // consume '<'
	var digits []byte
	for s.pos < len(s.data) && s.data[s.pos] != '>' {
		c := s.data[s.pos]
		if isHexDigit(c) {
			digits = append(digits, c)
		}
		s.pos++
	}
	if s.pos < len(s.data) {
		s.pos++ // consume '>'
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	var buf strings.Builder
	for i := 0; i+1 < len(digits); i += 2 {
		buf.WriteByte(hexValue(digits[i])<<4 | hexValue(digits[i+1]))
	}
	return buf.String()
}

func (s *scanner) name() string {
	start := s.pos
	s.pos++ // consume '/'
	for s.pos < len(s.data) && isRegular(s.data[s.pos]) {
		s.pos++
	}
	return string(s.data[start:s.pos])
}

func (s *scanner) number() float64 {
	start := s.pos
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9') || c == 'e' || c == 'E' {
			s.pos++
			continue
		}
		break
	}
	n, err := strconv.ParseFloat(string(s.data[start:s.pos]), 64)
	if err != nil {
		return 0
	}
	return n
}

func (s *scanner) operator() string {
	start := s.pos
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if isLetter(c) || c == '\'' || c == '"' || c == '*' {
			s.pos++
			continue
		}
		break
	}
	return string(s.data[start:s.pos])
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func isRegular(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0, '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return false
	}
	return true
}
