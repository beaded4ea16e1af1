package lower

import (
	"github.com/janus-lang/janus-sub005/src/astsnap"
	"github.com/janus-lang/janus-sub005/src/qtjir"
)

// binop.go maps source-level operator lexemes to QTJIR opcodes
// (SPEC §4.4.4.1).

var binaryOpcodes = map[string]qtjir.Opcode{
	"==": qtjir.Equal,
	"!=": qtjir.NotEqual,
	"<":  qtjir.Less,
	"<=": qtjir.LessEqual,
	">":  qtjir.Greater,
	">=": qtjir.GreaterEqual,
	"+":  qtjir.Add,
	"-":  qtjir.Sub,
	"*":  qtjir.Mul,
	"/":  qtjir.Div,
	"%":  qtjir.Mod,
	"&":  qtjir.BitAnd,
	"|":  qtjir.BitOr,
	"^":  qtjir.Xor,
	"<<": qtjir.Shl,
	">>": qtjir.Shr,
}

// compoundOpcodes maps a compound-assignment operator to the arithmetic
// opcode it desugars to (SPEC §4.4.4.1 "x = x op y").
var compoundOpcodes = map[string]qtjir.Opcode{
	"+=":  qtjir.Add,
	"-=":  qtjir.Sub,
	"*=":  qtjir.Mul,
	"/=":  qtjir.Div,
	"%=":  qtjir.Mod,
	"&=":  qtjir.BitAnd,
	"|=":  qtjir.BitOr,
	"^=":  qtjir.Xor,
	"<<=": qtjir.Shl,
	">>=": qtjir.Shr,
}

func isLogicalAnd(op string) bool { return op == "and" || op == "&&" }
func isLogicalOr(op string) bool  { return op == "or" || op == "||" }

// scanOperator scans the token stream strictly between lhsLast and
// rhsFirst (exclusive), skipping whitespace/comments/newlines/parens, and
// returns the first operator or keyword lexeme found (SPEC §4.4.4.1).
func (c *Context) scanOperator(lhsLast, rhsFirst int) string {
	for tid := lhsLast + 1; tid < rhsFirst; tid++ {
		tok := c.Snapshot.GetToken(tid)
		switch tok.Kind {
		case astsnap.TokWhitespace, astsnap.TokComment, astsnap.TokNewline, astsnap.TokLParen, astsnap.TokRParen:
			continue
		default:
			return c.lexeme(tok)
		}
	}
	return ""
}
