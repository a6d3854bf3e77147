// Package parser builds an ast.Node tree from a token stream via
// recursive descent, dispatching on the first token of each expression.
package parser

import (
	"strconv"
	"strings"

	"github.com/cvm-lang/cvm/internal/ast"
	"github.com/cvm-lang/cvm/internal/diag"
	"github.com/cvm-lang/cvm/internal/token"
)

// Parser consumes a pre-lexed token slice. Lexing happens eagerly (via
// lexer.Tokenize) rather than token-at-a-time, which keeps lookahead in
// the parser itself rather than requiring the lexer to support peek/undo.
type Parser struct {
	toks []token.Token
	pos  int
}

func New(toks []token.Token) *Parser {
	return &Parser{toks: toks}
}

// Parse parses a single top-level expression and verifies no tokens remain
// (trailing tokens are a fatal parser error).
func Parse(toks []token.Token) (ast.Node, error) {
	p := New(toks)
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().Kind != token.EOF {
		return nil, diag.Parsef(p.peek().Pos, "redundant token stream starting at %s", p.peek().Lexeme)
	}
	return expr, nil
}

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) next() token.Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) consumeLexeme(expected string) (token.Token, error) {
	t := p.peek()
	if t.Kind == token.EOF {
		return token.Token{}, diag.ParsefNoPos("incomplete token stream")
	}
	if t.Lexeme != expected {
		return token.Token{}, diag.Parsef(t.Pos, "expected %q, got %q", expected, t.Lexeme)
	}
	return p.next(), nil
}

func isVariableToken(t token.Token) bool {
	return t.Kind == token.Word && !token.IsKeyword(t.Lexeme)
}

func (p *Parser) parseExpr() (ast.Node, error) {
	t := p.peek()
	switch {
	case t.Kind == token.EOF:
		return nil, diag.ParsefNoPos("incomplete token stream")
	case t.Kind == token.Integer:
		return p.parseInteger()
	case t.Kind == token.String:
		return p.parseString()
	case t.Kind == token.Intrinsic:
		return p.parseIntrinsic()
	case t.Lexeme == token.KwLambda:
		return p.parseLambda()
	case t.Lexeme == token.KwLetrec:
		return p.parseLetrec()
	case t.Lexeme == token.KwIf:
		return p.parseIf()
	case isVariableToken(t):
		return p.parseVariable()
	case t.Lexeme == "(":
		return p.parseCall()
	case t.Lexeme == "[":
		return p.parseSequence()
	default:
		return nil, diag.Parsef(t.Pos, "unrecognized expression starting with %q", t.Lexeme)
	}
}

func (p *Parser) parseInteger() (*ast.IntegerNode, error) {
	t := p.next()
	v, err := strconv.ParseInt(t.Lexeme, 10, 64)
	if err != nil {
		return nil, diag.Parsef(t.Pos, "expected an integer, got %q", t.Lexeme)
	}
	return &ast.IntegerNode{Pos: t.Pos, Value: v}, nil
}

func (p *Parser) parseString() (*ast.StringNode, error) {
	t := p.next()
	// t.Lexeme is the raw, still-quoted source text, e.g. `"a\nb"`.
	raw := t.Lexeme[1 : len(t.Lexeme)-1]
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if ch != '\\' {
			sb.WriteByte(ch)
			continue
		}
		i++
		if i >= len(raw) {
			return nil, diag.Parsef(t.Pos, "incomplete escape sequence")
		}
		switch raw[i] {
		case '\\':
			sb.WriteByte('\\')
		case '"':
			sb.WriteByte('"')
		case 't':
			sb.WriteByte('\t')
		case 'n':
			sb.WriteByte('\n')
		default:
			return nil, diag.Parsef(t.Pos, "unsupported escape sequence \\%c", raw[i])
		}
	}
	return &ast.StringNode{Pos: t.Pos, Value: sb.String()}, nil
}

func (p *Parser) parseIntrinsic() (*ast.IntrinsicNode, error) {
	t := p.next()
	return &ast.IntrinsicNode{Pos: t.Pos, Name: t.Lexeme}, nil
}

func (p *Parser) parseVariable() (*ast.VariableNode, error) {
	t := p.peek()
	if !isVariableToken(t) {
		return nil, diag.Parsef(t.Pos, "expected a variable, got %q", t.Lexeme)
	}
	p.next()
	return &ast.VariableNode{Pos: t.Pos, Name: t.Lexeme}, nil
}

func (p *Parser) parseLambda() (ast.Node, error) {
	start := p.next() // 'lambda'
	if _, err := p.consumeLexeme("("); err != nil {
		return nil, err
	}
	var params []*ast.VariableNode
	for isVariableToken(p.peek()) {
		v, err := p.parseVariable()
		if err != nil {
			return nil, err
		}
		params = append(params, v)
	}
	if _, err := p.consumeLexeme(")"); err != nil {
		return nil, err
	}
	if _, err := p.consumeLexeme("{"); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.consumeLexeme("}"); err != nil {
		return nil, err
	}
	return &ast.LambdaNode{Pos: start.Pos, Params: params, Body: body}, nil
}

func (p *Parser) parseLetrec() (ast.Node, error) {
	start := p.next() // 'letrec'
	if _, err := p.consumeLexeme("("); err != nil {
		return nil, err
	}
	var bindings []ast.Binding
	for isVariableToken(p.peek()) {
		v, err := p.parseVariable()
		if err != nil {
			return nil, err
		}
		if _, err := p.consumeLexeme("="); err != nil {
			return nil, err
		}
		init, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, ast.Binding{Name: v, Init: init})
	}
	if _, err := p.consumeLexeme(")"); err != nil {
		return nil, err
	}
	if _, err := p.consumeLexeme("{"); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.consumeLexeme("}"); err != nil {
		return nil, err
	}
	return &ast.LetrecNode{Pos: start.Pos, Bindings: bindings, Body: body}, nil
}

func (p *Parser) parseIf() (ast.Node, error) {
	start := p.next() // 'if'
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.consumeLexeme("then"); err != nil {
		return nil, err
	}
	thenBr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.consumeLexeme("else"); err != nil {
		return nil, err
	}
	elseBr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.IfNode{Pos: start.Pos, Cond: cond, Then: thenBr, Else: elseBr}, nil
}

func (p *Parser) parseCall() (ast.Node, error) {
	start, err := p.consumeLexeme("(")
	if err != nil {
		return nil, err
	}
	callee, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	var args []ast.Node
	for p.peek().Kind != token.EOF && p.peek().Lexeme != ")" {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if _, err := p.consumeLexeme(")"); err != nil {
		return nil, err
	}
	return &ast.CallNode{Pos: start.Pos, Callee: callee, Args: args}, nil
}

func (p *Parser) parseSequence() (ast.Node, error) {
	start, err := p.consumeLexeme("[")
	if err != nil {
		return nil, err
	}
	var exprs []ast.Node
	for p.peek().Kind != token.EOF && p.peek().Lexeme != "]" {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	if len(exprs) == 0 {
		return nil, diag.Parsef(start.Pos, "zero-length sequence")
	}
	if _, err := p.consumeLexeme("]"); err != nil {
		return nil, err
	}
	return &ast.SequenceNode{Pos: start.Pos, Exprs: exprs}, nil
}
