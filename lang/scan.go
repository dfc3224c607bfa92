package lang

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2024 Janek Kallfass <janek@kallfass.io>

*/

import (
	"fmt"
	"strings"
	"sync"

	"github.com/kallfass/mex"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// Token types produced by the scanner. Operator and delimiter tokens receive
// ids above opBase, assigned in initTokens in the order of the literals list.
const (
	EOF int = -(iota + 1)
	Ident
	Number
	String
	Boolean
	ExprVar  // '$name', an expression-splice hole in template source
	ValueVar // '%name', a value-splice hole in template source
)

const opBase = 1 // literal tokens count upwards from here

// The tokens representing literal lexemes. Multi-character operators must
// precede their prefixes so that ties in the DFA resolve to the longer match.
var literals = []string{
	"(", ")", "{", "}", ",",
	"->", "==", "!=", "<=", ">=", "&&", "||",
	"!", "+", "-", "*", "/", "<", ">",
}

// The keyword tokens; both scan as Boolean.
var keywords = []string{"true", "false"}

// tokenIds will be set in initTokens()
var tokenIds map[string]int

var initOnce sync.Once // monitors one-time initialization
func initTokens() {
	initOnce.Do(func() {
		tokenIds = make(map[string]int)
		tokenIds["ID"] = Ident
		tokenIds["NUM"] = Number
		tokenIds["STRING"] = String
		tokenIds["BOOL"] = Boolean
		tokenIds["EXPRVAR"] = ExprVar
		tokenIds["VALVAR"] = ValueVar
		for i, lit := range literals {
			tokenIds[lit] = opBase + i
		}
	})
}

// TokenId returns the scanner token id for a token name or literal lexeme.
func TokenId(t string) int {
	initTokens()
	id, ok := tokenIds[t]
	if !ok {
		panic(fmt.Errorf("unknown token: %s", t))
	}
	return id
}

// Token is a scanned input token, carrying its source location and the span
// of input offsets it covers.
type Token struct {
	Type   int
	Lexeme string
	Span   mex.Span
	Loc    mex.Location
}

func (t Token) String() string {
	if t.Type == EOF {
		return "<eof>"
	}
	return fmt.Sprintf("%q[%d]", t.Lexeme, t.Type)
}

// --- lexmachine adapter ------------------------------------------------

var lexer *lexmachine.Lexer
var lexerErr error
var lexOnce sync.Once // monitors one-time DFA compilation

// buildLexer compiles the DFA for the expression language. Keyword patterns
// are added before the identifier pattern: lexmachine resolves equal-length
// matches in favor of the pattern added first.
func buildLexer() (*lexmachine.Lexer, error) {
	initTokens()
	lexOnce.Do(func() {
		lexer = lexmachine.NewLexer()
		lexer.Add([]byte(`//[^\n]*\n?`), skip) // skip comments
		lexer.Add([]byte(`( |\t|\n|\r)+`), skip)
		for _, kw := range keywords {
			lexer.Add([]byte(kw), makeToken("BOOL"))
		}
		lexer.Add([]byte(`"[^"]*"`), makeToken("STRING"))
		lexer.Add([]byte(`([a-z]|[A-Z]|_)([a-z]|[A-Z]|[0-9]|_)*`), makeToken("ID"))
		lexer.Add([]byte(`\$([a-z]|[A-Z]|_)([a-z]|[A-Z]|[0-9]|_)*`), makeToken("EXPRVAR"))
		lexer.Add([]byte(`%([a-z]|[A-Z]|_)([a-z]|[A-Z]|[0-9]|_)*`), makeToken("VALVAR"))
		lexer.Add([]byte(`[0-9]+(\.[0-9]+)?`), makeToken("NUM"))
		for _, lit := range literals {
			r := "\\" + strings.Join(strings.Split(lit, ""), "\\")
			lexer.Add([]byte(r), makeToken(lit))
		}
		lexerErr = lexer.Compile()
	})
	return lexer, lexerErr
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func makeToken(name string) lexmachine.Action {
	id := TokenId(name)
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}

// Scanner tokenizes one input string. Create one with NewScanner.
type Scanner struct {
	file    string
	scanner *lexmachine.Scanner
	Error   func(error) // error handler
}

// NewScanner creates a scanner for the given input. sourceID names the input
// in locations and diagnostics, typically a file name.
func NewScanner(sourceID string, input string) (*Scanner, error) {
	lex, err := buildLexer()
	if err != nil {
		return nil, err
	}
	s, err := lex.Scanner([]byte(input))
	if err != nil {
		return nil, err
	}
	return &Scanner{file: sourceID, scanner: s, Error: logError}, nil
}

// Default error reporting function for scanners
func logError(e error) {
	tracer().Errorf("scanner error: " + e.Error())
}

// SetErrorHandler sets an error handler for the scanner.
func (s *Scanner) SetErrorHandler(h func(error)) {
	if h == nil {
		s.Error = logError
		return
	}
	s.Error = h
}

// NextToken returns the next input token, or an EOF token at the end of the
// input. Unconsumable input is reported to the error handler and skipped.
func (s *Scanner) NextToken() Token {
	tok, err, eof := s.scanner.Next()
	for err != nil {
		s.Error(err)
		if ui, is := err.(*machines.UnconsumedInput); is {
			s.scanner.TC = ui.FailTC
		}
		tok, err, eof = s.scanner.Next()
	}
	if eof {
		tracer().Debugf("scanner reached end of input")
		return Token{Type: EOF}
	}
	token := tok.(*lexmachine.Token)
	tracer().Debugf("token = %q with value = %d", string(token.Lexeme), token.Type)
	return Token{
		Type:   token.Type,
		Lexeme: string(token.Lexeme),
		Span:   mex.Span{uint64(token.TC), uint64(token.TC + len(token.Lexeme))},
		Loc: mex.Location{
			File:        s.file,
			StartLine:   token.StartLine,
			StartColumn: token.StartColumn,
			EndLine:     token.EndLine,
			EndColumn:   token.EndColumn,
		},
	}
}
