package field

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// ParsedExpr is a parsed field type expression.
type ParsedExpr struct {
	// Type is the value kind of the field.
	Type *TypeRef
	// Many is set by a list[...] wrapper.
	Many bool
	// Markers are the extra markers of an Annotated[...] wrapper, in order.
	Markers []string
}

// ParseType parses a field type expression. The grammar is:
//
//	expr      = wrapper | union
//	wrapper   = "list" "[" expr "]" | "Annotated" "[" expr { "," marker } "]"
//	union     = term { "|" term }
//	term      = name [ "[" union { "," union } "]" ]
//
// A bare name is a primitive when it names one, an entity reference
// otherwise. A name followed by arguments is a template reference.
// Unions may only hold entity references.
func ParseType(s string) (*ParsedExpr, error) {
	p := &parser{src: s}
	p.next()
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %q", p.tok.text)
	}
	return e, nil
}

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokIdent
	tokLBrack
	tokRBrack
	tokComma
	tokPipe
)

type token struct {
	kind tokKind
	text string
	pos  int
}

type parser struct {
	src string
	off int
	tok token
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("field: parse %q at %d: %s", p.src, p.tok.pos, fmt.Sprintf(format, args...))
}

func (p *parser) next() {
	for p.off < len(p.src) && p.src[p.off] == ' ' {
		p.off++
	}
	start := p.off
	if p.off >= len(p.src) {
		p.tok = token{kind: tokEOF, pos: start}
		return
	}
	switch c := p.src[p.off]; c {
	case '[':
		p.off++
		p.tok = token{kind: tokLBrack, text: "[", pos: start}
	case ']':
		p.off++
		p.tok = token{kind: tokRBrack, text: "]", pos: start}
	case ',':
		p.off++
		p.tok = token{kind: tokComma, text: ",", pos: start}
	case '|':
		p.off++
		p.tok = token{kind: tokPipe, text: "|", pos: start}
	default:
		for p.off < len(p.src) {
			r, size := utf8.DecodeRuneInString(p.src[p.off:])
			if !isIdent(r) {
				break
			}
			p.off += size
		}
		if p.off == start {
			// Unknown character; surface it as an identifier so the
			// caller reports it.
			_, size := utf8.DecodeRuneInString(p.src[p.off:])
			p.off += size
			p.tok = token{kind: tokIdent, text: p.src[start:p.off], pos: start}
			return
		}
		p.tok = token{kind: tokIdent, text: p.src[start:p.off], pos: start}
	}
}

func isIdent(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (p *parser) expect(k tokKind, what string) error {
	if p.tok.kind != k {
		if p.tok.kind == tokEOF {
			return p.errorf("expected %s, got end of input", what)
		}
		return p.errorf("expected %s, got %q", what, p.tok.text)
	}
	p.next()
	return nil
}

// expr parses an expression. Wrappers are only accepted outside of
// template arguments and unions.
func (p *parser) expr() (*ParsedExpr, error) {
	if p.tok.kind == tokIdent {
		switch p.tok.text {
		case "list", "List":
			p.next()
			if err := p.expect(tokLBrack, `"["`); err != nil {
				return nil, err
			}
			inner, err := p.expr()
			if err != nil {
				return nil, err
			}
			if inner.Many {
				return nil, p.errorf("nested collections are not supported")
			}
			if err := p.expect(tokRBrack, `"]"`); err != nil {
				return nil, err
			}
			inner.Many = true
			return inner, nil
		case "Annotated":
			p.next()
			if err := p.expect(tokLBrack, `"["`); err != nil {
				return nil, err
			}
			inner, err := p.expr()
			if err != nil {
				return nil, err
			}
			for p.tok.kind == tokComma {
				p.next()
				if p.tok.kind != tokIdent {
					return nil, p.errorf("expected marker")
				}
				inner.Markers = append(inner.Markers, p.tok.text)
				p.next()
			}
			if err := p.expect(tokRBrack, `"]"`); err != nil {
				return nil, err
			}
			return inner, nil
		}
	}
	t, err := p.union()
	if err != nil {
		return nil, err
	}
	return &ParsedExpr{Type: t}, nil
}

func (p *parser) union() (*TypeRef, error) {
	first, err := p.term()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokPipe {
		return first, nil
	}
	opts := []*TypeRef{first}
	for p.tok.kind == tokPipe {
		p.next()
		t, err := p.term()
		if err != nil {
			return nil, err
		}
		opts = append(opts, t)
	}
	for _, o := range opts {
		if o.Kind != RefEntity {
			return nil, p.errorf("union option %q is not an entity reference", o)
		}
	}
	return UnionRef(opts...), nil
}

func (p *parser) term() (*TypeRef, error) {
	if p.tok.kind != tokIdent {
		if p.tok.kind == tokEOF {
			return nil, p.errorf("expected type name, got end of input")
		}
		return nil, p.errorf("expected type name, got %q", p.tok.text)
	}
	name := p.tok.text
	if r := rune(name[0]); !unicode.IsLetter(r) && r != '_' {
		return nil, p.errorf("invalid type name %q", name)
	}
	p.next()
	if p.tok.kind != tokLBrack {
		if prim, ok := ParsePrimitive(name); ok {
			return PrimitiveRef(prim), nil
		}
		return EntityRef(name), nil
	}
	p.next()
	var args []*TypeRef
	for {
		a, err := p.union()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.tok.kind != tokComma {
			break
		}
		p.next()
	}
	if err := p.expect(tokRBrack, `"]"`); err != nil {
		return nil, err
	}
	return TemplateRef(name, args...), nil
}
