package compiler

import (
	"fmt"
	"strconv"

	"github.com/cinderlang/cinder/bytecode"
)

// ---------------------------------------------------------------------------
// Compiler: single-pass Pratt parser emitting bytecode
// ---------------------------------------------------------------------------

// Precedence levels, lowest to highest.
type precedence int

const (
	precNone precedence = iota
	precAssignment              // =
	precOr                      // or
	precAnd                     // and
	precEquality                // == !=
	precComparison              // < > <= >=
	precTerm                    // + -
	precFactor                  // * /
	precUnary                   // ! -
	precCall                    // f(...)
	precPrimary
)

// parseRule wires a token type to its prefix/infix parse functions.
type parseRule struct {
	prefix func(c *compiler, canAssign bool)
	infix  func(c *compiler, canAssign bool)
	prec   precedence
}

// local tracks a block-scoped variable and its stack slot.
type local struct {
	name  string
	depth int // -1 until the initializer has run
}

type compiler struct {
	lexer    *Lexer
	current  Token
	previous Token

	chunk *bytecode.Chunk

	// Compile-time name resolution
	locals       []local
	scopeDepth   int
	knownGlobals map[string]bool

	// Error collection with statement-level panic-mode recovery
	errors    []CompileError
	panicMode bool
}

// Compile compiles source to a chunk. Native function names are
// predeclared globals so calls to host functions resolve during
// compilation. On failure it returns the full error batch and no chunk;
// a partial chunk is never returned.
func Compile(source string, nativeNames []string) (*bytecode.Chunk, []CompileError) {
	c := &compiler{
		lexer:        NewLexer(source),
		chunk:        bytecode.NewChunk(),
		knownGlobals: make(map[string]bool, len(nativeNames)),
	}
	for _, name := range nativeNames {
		c.knownGlobals[name] = true
	}

	c.advance()
	for !c.match(TokenEOF) {
		c.declaration()
	}
	c.emit(bytecode.OpReturn)

	if len(c.errors) > 0 {
		return nil, c.errors
	}
	return c.chunk, nil
}

// ============ Token handling ============

func (c *compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.lexer.NextToken()
		if c.current.Type != TokenError {
			break
		}
		c.errorAt(c.current, c.current.Literal)
	}
}

func (c *compiler) consume(tt TokenType, msg string) {
	if c.current.Type == tt {
		c.advance()
		return
	}
	c.errorAt(c.current, msg)
}

func (c *compiler) check(tt TokenType) bool {
	return c.current.Type == tt
}

func (c *compiler) match(tt TokenType) bool {
	if !c.check(tt) {
		return false
	}
	c.advance()
	return true
}

// errorAt records a compile error for a token. While in panic mode
// further errors are suppressed until the parser resynchronizes, so one
// mistake does not cascade into a wall of noise.
func (c *compiler) errorAt(tok Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.errors = append(c.errors, CompileError{
		Line:    tok.Line,
		Start:   tok.Offset,
		Len:     tok.Len,
		Message: msg,
	})
}

// synchronize skips tokens until a likely statement boundary.
func (c *compiler) synchronize() {
	c.panicMode = false
	for c.current.Type != TokenEOF {
		if c.previous.Type == TokenSemicolon {
			return
		}
		switch c.current.Type {
		case TokenVar, TokenIf, TokenWhile, TokenPrint, TokenLBrace:
			return
		}
		c.advance()
	}
}

// ============ Emit helpers ============

func (c *compiler) emit(op bytecode.Opcode) {
	c.chunk.Emit(op, c.previous.Line)
}

func (c *compiler) emitWithOperand(op bytecode.Opcode, operands ...byte) {
	c.chunk.EmitWithOperand(op, c.previous.Line, operands...)
}

func (c *compiler) emitConstant(v bytecode.Value) {
	c.chunk.EmitConstant(v, c.previous.Line)
}

// nameConstant interns an identifier in the constant pool for global access.
func (c *compiler) nameConstant(name string) uint16 {
	return c.chunk.AddConstant(bytecode.Str(name))
}

func (c *compiler) emitGlobalOp(op bytecode.Opcode, name string) {
	idx := c.nameConstant(name)
	c.emitWithOperand(op, byte(idx>>8), byte(idx))
}

// ============ Declarations and statements ============

func (c *compiler) declaration() {
	if c.match(TokenVar) {
		c.varDeclaration()
	} else {
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *compiler) varDeclaration() {
	c.consume(TokenIdentifier, "expected variable name")
	name := c.previous.Literal

	if c.scopeDepth > 0 {
		c.declareLocal(name)
	}

	if c.match(TokenAssign) {
		c.expression()
	} else {
		c.emit(bytecode.OpNull)
	}
	c.consume(TokenSemicolon, "expected ';' after variable declaration")

	if c.scopeDepth > 0 {
		// The initializer's value stays on the stack as the local's slot.
		c.markInitialized()
		return
	}
	c.knownGlobals[name] = true
	c.emitGlobalOp(bytecode.OpDefineGlobal, name)
}

func (c *compiler) statement() {
	switch {
	case c.match(TokenPrint):
		c.printStatement()
	case c.match(TokenIf):
		c.ifStatement()
	case c.match(TokenWhile):
		c.whileStatement()
	case c.match(TokenLBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *compiler) printStatement() {
	c.expression()
	c.consume(TokenSemicolon, "expected ';' after value")
	c.emit(bytecode.OpPrint)
}

func (c *compiler) expressionStatement() {
	c.expression()
	c.consume(TokenSemicolon, "expected ';' after expression")
	c.emit(bytecode.OpPop)
}

func (c *compiler) ifStatement() {
	c.consume(TokenLParen, "expected '(' after 'if'")
	c.expression()
	c.consume(TokenRParen, "expected ')' after condition")

	thenJump := c.chunk.EmitJump(bytecode.OpJumpFalse, c.previous.Line)
	c.emit(bytecode.OpPop)
	c.statement()

	elseJump := c.chunk.EmitJump(bytecode.OpJump, c.previous.Line)
	c.chunk.PatchJump(thenJump)
	c.emit(bytecode.OpPop)

	if c.match(TokenElse) {
		c.statement()
	}
	c.chunk.PatchJump(elseJump)
}

func (c *compiler) whileStatement() {
	loopStart := c.chunk.CurrentOffset()
	c.consume(TokenLParen, "expected '(' after 'while'")
	c.expression()
	c.consume(TokenRParen, "expected ')' after condition")

	exitJump := c.chunk.EmitJump(bytecode.OpJumpFalse, c.previous.Line)
	c.emit(bytecode.OpPop)
	c.statement()
	c.chunk.EmitLoop(loopStart, c.previous.Line)

	c.chunk.PatchJump(exitJump)
	c.emit(bytecode.OpPop)
}

func (c *compiler) block() {
	for !c.check(TokenRBrace) && !c.check(TokenEOF) {
		c.declaration()
	}
	c.consume(TokenRBrace, "expected '}' after block")
}

// ============ Scopes and locals ============

func (c *compiler) beginScope() {
	c.scopeDepth++
}

func (c *compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.emit(bytecode.OpPop)
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (c *compiler) declareLocal(name string) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != -1 && l.depth < c.scopeDepth {
			break
		}
		if l.name == name {
			c.errorAt(c.previous, fmt.Sprintf("variable '%s' already declared in this scope", name))
		}
	}
	if len(c.locals) >= 256 {
		c.errorAt(c.previous, "too many local variables")
		return
	}
	c.locals = append(c.locals, local{name: name, depth: -1})
}

func (c *compiler) markInitialized() {
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

// resolveLocal returns the stack slot for a local, or -1 if the name is
// not a local.
func (c *compiler) resolveLocal(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			if c.locals[i].depth == -1 {
				c.errorAt(c.previous, fmt.Sprintf("cannot read '%s' in its own initializer", name))
			}
			return i
		}
	}
	return -1
}

// ============ Expressions (Pratt) ============

func (c *compiler) expression() {
	c.parsePrecedence(precAssignment)
}

func (c *compiler) parsePrecedence(prec precedence) {
	c.advance()
	rule := getRule(c.previous.Type)
	if rule.prefix == nil {
		c.errorAt(c.previous, "expected expression")
		return
	}
	canAssign := prec <= precAssignment
	rule.prefix(c, canAssign)

	for prec <= getRule(c.current.Type).prec {
		c.advance()
		getRule(c.previous.Type).infix(c, canAssign)
	}

	if canAssign && c.match(TokenAssign) {
		c.errorAt(c.previous, "invalid assignment target")
	}
}

func number(c *compiler, _ bool) {
	n, err := strconv.ParseFloat(c.previous.Literal, 64)
	if err != nil {
		c.errorAt(c.previous, fmt.Sprintf("invalid number literal %q", c.previous.Literal))
		return
	}
	switch n {
	case 0:
		c.emit(bytecode.OpZero)
	case 1:
		c.emit(bytecode.OpOne)
	default:
		c.emitConstant(bytecode.Number(n))
	}
}

func stringLit(c *compiler, _ bool) {
	c.emitConstant(bytecode.Str(c.previous.Literal))
}

func literal(c *compiler, _ bool) {
	switch c.previous.Type {
	case TokenTrue:
		c.emit(bytecode.OpTrue)
	case TokenFalse:
		c.emit(bytecode.OpFalse)
	case TokenNull:
		c.emit(bytecode.OpNull)
	}
}

func grouping(c *compiler, _ bool) {
	c.expression()
	c.consume(TokenRParen, "expected ')' after expression")
}

func unary(c *compiler, _ bool) {
	op := c.previous.Type
	c.parsePrecedence(precUnary)
	switch op {
	case TokenMinus:
		c.emit(bytecode.OpNeg)
	case TokenBang:
		c.emit(bytecode.OpNot)
	}
}

func binary(c *compiler, _ bool) {
	op := c.previous.Type
	c.parsePrecedence(getRule(op).prec + 1)
	switch op {
	case TokenPlus:
		c.emit(bytecode.OpAdd)
	case TokenMinus:
		c.emit(bytecode.OpSub)
	case TokenStar:
		c.emit(bytecode.OpMul)
	case TokenSlash:
		c.emit(bytecode.OpDiv)
	case TokenEq:
		c.emit(bytecode.OpEq)
	case TokenNe:
		c.emit(bytecode.OpNe)
	case TokenLt:
		c.emit(bytecode.OpLt)
	case TokenLe:
		c.emit(bytecode.OpLe)
	case TokenGt:
		c.emit(bytecode.OpGt)
	case TokenGe:
		c.emit(bytecode.OpGe)
	}
}

// and compiles short-circuit conjunction: the right operand is skipped
// when the left is falsy.
func and(c *compiler, _ bool) {
	endJump := c.chunk.EmitJump(bytecode.OpJumpFalse, c.previous.Line)
	c.emit(bytecode.OpPop)
	c.parsePrecedence(precAnd)
	c.chunk.PatchJump(endJump)
}

// or compiles short-circuit disjunction.
func or(c *compiler, _ bool) {
	elseJump := c.chunk.EmitJump(bytecode.OpJumpFalse, c.previous.Line)
	endJump := c.chunk.EmitJump(bytecode.OpJump, c.previous.Line)
	c.chunk.PatchJump(elseJump)
	c.emit(bytecode.OpPop)
	c.parsePrecedence(precOr)
	c.chunk.PatchJump(endJump)
}

func variable(c *compiler, canAssign bool) {
	name := c.previous.Literal
	nameTok := c.previous

	if slot := c.resolveLocal(name); slot >= 0 {
		if canAssign && c.match(TokenAssign) {
			c.expression()
			c.emitWithOperand(bytecode.OpStoreLocal, byte(slot))
		} else {
			c.emitWithOperand(bytecode.OpLoadLocal, byte(slot))
		}
		return
	}

	if !c.knownGlobals[name] {
		c.errorAt(nameTok, fmt.Sprintf("undefined variable '%s'", name))
		return
	}
	if canAssign && c.match(TokenAssign) {
		c.expression()
		c.emitGlobalOp(bytecode.OpStoreGlobal, name)
	} else {
		c.emitGlobalOp(bytecode.OpLoadGlobal, name)
	}
}

// call compiles an argument list for the callee already on the stack.
func call(c *compiler, _ bool) {
	argc := 0
	if !c.check(TokenRParen) {
		for {
			c.expression()
			argc++
			if argc > 255 {
				c.errorAt(c.previous, "cannot have more than 255 arguments")
			}
			if !c.match(TokenComma) {
				break
			}
		}
	}
	c.consume(TokenRParen, "expected ')' after arguments")
	c.emitWithOperand(bytecode.OpCall, byte(argc))
}

// rules is the Pratt dispatch table.
var rules map[TokenType]parseRule

func init() {
	rules = map[TokenType]parseRule{
		TokenLParen:     {grouping, call, precCall},
		TokenMinus:      {unary, binary, precTerm},
		TokenPlus:       {nil, binary, precTerm},
		TokenStar:       {nil, binary, precFactor},
		TokenSlash:      {nil, binary, precFactor},
		TokenBang:       {unary, nil, precNone},
		TokenEq:         {nil, binary, precEquality},
		TokenNe:         {nil, binary, precEquality},
		TokenLt:         {nil, binary, precComparison},
		TokenLe:         {nil, binary, precComparison},
		TokenGt:         {nil, binary, precComparison},
		TokenGe:         {nil, binary, precComparison},
		TokenAnd:        {nil, and, precAnd},
		TokenOr:         {nil, or, precOr},
		TokenNumber:     {number, nil, precNone},
		TokenString:     {stringLit, nil, precNone},
		TokenIdentifier: {variable, nil, precNone},
		TokenTrue:       {literal, nil, precNone},
		TokenFalse:      {literal, nil, precNone},
		TokenNull:       {literal, nil, precNone},
	}
}

func getRule(tt TokenType) parseRule {
	return rules[tt]
}
