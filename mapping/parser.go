package mapping

import "fmt"

// parser is a recursive-descent parser over the rewritten token stream.
//
//	expr   := term { ("+" | "-") term }
//	term   := unary { ("*" | "/" | "%") unary }
//	unary  := ("-" | "+" | "!") unary | power
//	power  := primary [ "^" unary ]
//	primary:= number | name | name "(" args ")" | "(" expr ")"
type parser struct {
	src  string
	toks []token
	pos  int
}

func parse(src string, toks []token) (expr, error) {
	p := &parser{src: src, toks: toks}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		return nil, p.errAt("unexpected %s", p.describe())
	}
	return e, nil
}

func (p *parser) peek() *token {
	if p.pos < len(p.toks) {
		return &p.toks[p.pos]
	}
	return nil
}

func (p *parser) peekOp(ops string) (byte, bool) {
	t := p.peek()
	if t == nil || t.kind != tokOp {
		return 0, false
	}
	for i := 0; i < len(ops); i++ {
		if t.op == ops[i] {
			return t.op, true
		}
	}
	return 0, false
}

func (p *parser) expr() (expr, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOp("+-")
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &binary{op: op, l: left, r: right}
	}
}

func (p *parser) term() (expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOp("*/%")
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &binary{op: op, l: left, r: right}
	}
}

func (p *parser) unary() (expr, error) {
	if op, ok := p.peekOp("-+!"); ok {
		p.pos++
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		if op == '+' {
			return x, nil
		}
		return &prefix{op: op, x: x}, nil
	}
	return p.power()
}

func (p *parser) power() (expr, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if _, ok := p.peekOp("^"); !ok {
		return base, nil
	}
	p.pos++
	exp, err := p.unary()
	if err != nil {
		return nil, err
	}
	return &binary{op: '^', l: base, r: exp}, nil
}

func (p *parser) primary() (expr, error) {
	t := p.peek()
	if t == nil {
		return nil, p.errAt("unterminated expression")
	}
	switch t.kind {
	case tokNumber:
		p.pos++
		return constant(t.num), nil

	case tokLParen:
		p.pos++
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}
		return e, nil

	case tokIdent:
		p.pos++
		sym := symbols[t.name]
		switch sym.kind {
		case symConst:
			return constant(sym.value), nil
		case symInput:
			return inputRef{}, nil
		case symTime:
			return timeRef{}, nil
		case symRand:
			return randRef{}, nil
		}
		return p.call(t, sym)
	}
	return nil, p.errAt("unexpected %s", p.describe())
}

func (p *parser) call(name *token, sym *symbol) (expr, error) {
	if err := p.expect(tokLParen, "( after "+name.name); err != nil {
		return nil, err
	}
	var args []expr
	for {
		arg, err := p.expr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if t := p.peek(); t != nil && t.kind == tokComma {
			p.pos++
			continue
		}
		break
	}
	if err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}
	if len(args) < sym.minArgs || (sym.maxArgs >= 0 && len(args) > sym.maxArgs) {
		return nil, &CompileError{Source: p.src, Pos: name.pos,
			Msg: arityMsg(name.name, sym, len(args))}
	}
	if sym.fn1 != nil {
		return &call1{fn: sym.fn1, arg: args[0]}, nil
	}
	return &callN{fn: sym.fn, args: args}, nil
}

func (p *parser) expect(kind tokenKind, what string) error {
	t := p.peek()
	if t == nil || t.kind != kind {
		return p.errAt("expected %s, found %s", what, p.describe())
	}
	p.pos++
	return nil
}

func (p *parser) describe() string {
	t := p.peek()
	if t == nil {
		return "end of expression"
	}
	switch t.kind {
	case tokNumber:
		return "number"
	case tokIdent:
		return "identifier " + t.name
	case tokOp:
		return "operator " + string(t.op)
	case tokLParen:
		return "("
	case tokRParen:
		return ")"
	}
	return ","
}

func (p *parser) errAt(format string, args ...any) *CompileError {
	pos := len(p.src)
	if t := p.peek(); t != nil {
		pos = t.pos
	}
	return errorf(p.src, pos, format, args...)
}

func arityMsg(name string, sym *symbol, got int) string {
	switch {
	case sym.maxArgs < 0:
		return fmt.Sprintf("%s needs at least %d arguments, got %d", name, sym.minArgs, got)
	case sym.minArgs == sym.maxArgs:
		return fmt.Sprintf("%s takes %d arguments, got %d", name, sym.minArgs, got)
	}
	return fmt.Sprintf("%s takes %d to %d arguments, got %d", name, sym.minArgs, sym.maxArgs, got)
}
