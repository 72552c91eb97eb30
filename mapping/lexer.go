package mapping

import (
	"strconv"
	"unicode/utf8"
)

// tokenKind identifies a scanned token.
type tokenKind uint8

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOp     // + - * / % ^ !
	tokLParen // (
	tokRParen // )
	tokComma  // ,
)

type token struct {
	kind tokenKind
	num  float64
	op   byte
	name string
	pos  int
}

// openCall tracks a wrap or sum call whose closing parenthesis has not been
// scanned yet. depth is the parenthesis depth right after its opening paren;
// closers is the number of fragment parentheses to close after it.
type openCall struct {
	kind    symbolKind
	depth   int
	closers int
}

// scan tokenizes a normalized source in a single left-to-right pass and
// applies the call rewrites on the fly:
//
//	ctg(a)    -> ( 1 / tan ( ( a ) ) )
//	neg(a)    -> ( - ( ( a ) ) )
//	sum(a, b) -> ( a + b )
func scan(src string) ([]token, error) {
	var (
		out     []token
		depth   int
		calls   []openCall
		pending *symbol // wrap/sum identifier waiting for its '('
		pendPos int
	)

	for i := 0; i < len(src); {
		c := src[i]

		if pending != nil && !isSpace(c) && c != '(' {
			return nil, errorf(src, i, "expected ( after %q", src[pendPos:i])
		}

		switch {
		case isSpace(c):
			i++

		case isDigit(c) || c == '.':
			start := i
			for i < len(src) && (isDigit(src[i]) || src[i] == '.') {
				i++
			}
			v, err := strconv.ParseFloat(src[start:i], 64)
			if err != nil {
				return nil, errorf(src, start, "malformed number %q", src[start:i])
			}
			out = append(out, token{kind: tokNumber, num: v, pos: start})

		case c == '+' || c == '-' || c == '*' || c == '/' || c == '%':
			if i == len(src)-1 {
				return nil, errorf(src, i, "expression ends with operator %q", c)
			}
			out = append(out, token{kind: tokOp, op: c, pos: i})
			i++

		case c == '^' || c == '!':
			out = append(out, token{kind: tokOp, op: c, pos: i})
			i++

		case isLetter(c):
			start := i
			for i < len(src) && (isLetter(src[i]) || isDigit(src[i])) {
				i++
			}
			name := src[start:i]
			sym, ok := symbols[name]
			if !ok {
				return nil, errorf(src, start, "unknown identifier %q", name)
			}
			switch sym.kind {
			case symWrap:
				for _, t := range sym.wrap {
					t.pos = start
					out = append(out, t)
				}
				pending, pendPos = sym, start
			case symSum:
				pending, pendPos = sym, start
			default:
				out = append(out, token{kind: tokIdent, name: name, pos: start})
			}

		case c == '(':
			depth++
			if pending != nil {
				calls = append(calls, openCall{kind: pending.kind, depth: depth, closers: countOpen(pending.wrap)})
				pending = nil
			}
			out = append(out, token{kind: tokLParen, pos: i})
			i++

		case c == ')':
			if depth == 0 {
				return nil, errorf(src, i, "unbalanced )")
			}
			out = append(out, token{kind: tokRParen, pos: i})
			if n := len(calls); n > 0 && calls[n-1].depth == depth {
				for k := 0; k < calls[n-1].closers; k++ {
					out = append(out, token{kind: tokRParen, pos: i})
				}
				calls = calls[:n-1]
			}
			depth--
			i++

		case c == ',':
			if n := len(calls); n > 0 && calls[n-1].kind == symSum && calls[n-1].depth == depth {
				out = append(out, token{kind: tokOp, op: '+', pos: i})
			} else {
				out = append(out, token{kind: tokComma, pos: i})
			}
			i++

		default:
			r, _ := utf8.DecodeRuneInString(src[i:])
			return nil, errorf(src, i, "unexpected character %q", r)
		}
	}

	if pending != nil {
		return nil, errorf(src, len(src), "expected ( after %q", src[pendPos:])
	}
	if depth > 0 {
		return nil, errorf(src, len(src), "unterminated expression, %d unclosed (", depth)
	}
	return out, nil
}

func countOpen(frag []token) int {
	n := 0
	for _, t := range frag {
		if t.kind == tokLParen {
			n++
		}
	}
	return n
}

func isSpace(c byte) bool  { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' }
