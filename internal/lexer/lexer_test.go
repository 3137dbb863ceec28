package lexer_test

import (
	"testing"

	"github.com/dfranx/hlslparser/internal/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(t *testing.T, source string) []lexer.TokenKind {
	t.Helper()
	toks, err := lexer.Tokenize(source, "test.sl")
	require.NoError(t, err)
	var ks []lexer.TokenKind
	for _, tok := range toks {
		ks = append(ks, tok.Kind)
	}
	return ks
}

func TestKeywordsAndTypes(t *testing.T) {
	ks := kinds(t, "float4 x = float4(1,2,3,4);")
	assert.Equal(t, []lexer.TokenKind{
		lexer.TokFloat4, lexer.TokIdent, lexer.TokenKind('='), lexer.TokFloat4,
		lexer.TokenKind('('), lexer.TokIntLiteral, lexer.TokenKind(','),
		lexer.TokIntLiteral, lexer.TokenKind(','), lexer.TokIntLiteral,
		lexer.TokenKind(','), lexer.TokIntLiteral, lexer.TokenKind(')'),
		lexer.TokenKind(';'), lexer.TokEOF,
	}, ks)
}

func TestMultiCharOperators(t *testing.T) {
	ks := kinds(t, "a <= b >= c == d != e && f || g++ h-- i+=1 j-=1 k*=1 l/=1")
	want := []lexer.TokenKind{
		lexer.TokIdent, lexer.TokLessEqual, lexer.TokIdent, lexer.TokGreaterEqual,
		lexer.TokIdent, lexer.TokEqualEqual, lexer.TokIdent, lexer.TokNotEqual,
		lexer.TokIdent, lexer.TokAndAnd, lexer.TokIdent, lexer.TokBarBar,
		lexer.TokIdent, lexer.TokPlusPlus, lexer.TokIdent, lexer.TokMinusMinus,
		lexer.TokIdent, lexer.TokPlusEqual, lexer.TokIntLiteral,
		lexer.TokIdent, lexer.TokMinusEqual, lexer.TokIntLiteral,
		lexer.TokIdent, lexer.TokTimesEqual, lexer.TokIntLiteral,
		lexer.TokIdent, lexer.TokDivideEqual, lexer.TokIntLiteral,
		lexer.TokEOF,
	}
	assert.Equal(t, want, ks)
}

func TestFloatVsHalfLiteral(t *testing.T) {
	toks, err := lexer.Tokenize("1.5 1.5h 2.0f 3h", "t.sl")
	require.NoError(t, err)
	require.Len(t, toks, 5) // 4 literals + EOF
	assert.Equal(t, lexer.TokFloatLiteral, toks[0].Kind)
	assert.InDelta(t, 1.5, toks[0].FVal, 1e-9)
	assert.Equal(t, lexer.TokHalfLiteral, toks[1].Kind)
	assert.InDelta(t, 1.5, toks[1].FVal, 1e-9)
	assert.Equal(t, lexer.TokFloatLiteral, toks[2].Kind)
	assert.Equal(t, lexer.TokHalfLiteral, toks[3].Kind)
	assert.InDelta(t, 3.0, toks[3].FVal, 1e-9)
}

func TestLineComment(t *testing.T) {
	ks := kinds(t, "// comment\nfloat x;")
	assert.Equal(t, []lexer.TokenKind{lexer.TokFloat, lexer.TokIdent, lexer.TokenKind(';'), lexer.TokEOF}, ks)
}

func TestBlockComment(t *testing.T) {
	ks := kinds(t, "/* a\nb */float x;")
	assert.Equal(t, []lexer.TokenKind{lexer.TokFloat, lexer.TokIdent, lexer.TokenKind(';'), lexer.TokEOF}, ks)
}

func TestPragmaSkipped(t *testing.T) {
	ks := kinds(t, "#pragma pack_matrix(row_major)\nfloat x;")
	assert.Equal(t, []lexer.TokenKind{lexer.TokFloat, lexer.TokIdent, lexer.TokenKind(';'), lexer.TokEOF}, ks)
}

func TestLineDirectiveUpdatesLocation(t *testing.T) {
	l := lexer.New("#line 42 \"other.sl\"\nfloat x;", "main.sl")
	tok := l.Next()
	require.Equal(t, lexer.TokFloat, tok.Kind)
	assert.Equal(t, 42, tok.Line)
	assert.Equal(t, "other.sl", tok.File)
}

func TestUnknownCharacterIsStickyError(t *testing.T) {
	_, err := lexer.Tokenize("float x = \x01bad;", "t.sl")
	require.Error(t, err)

	l := lexer.New("\x01bad", "t.sl")
	first := l.Next()
	assert.Equal(t, lexer.TokError, first.Kind)
	second := l.Next()
	assert.Equal(t, lexer.TokError, second.Kind)
	assert.Equal(t, first.Value, second.Value)
}

func TestSingleCharTokensAreASCIIValued(t *testing.T) {
	toks, err := lexer.Tokenize("(){}[];,.", "t.sl")
	require.NoError(t, err)
	want := "(){}[];,."
	for i, r := range want {
		assert.Equal(t, lexer.TokenKind(r), toks[i].Kind)
	}
}

func TestImageFormatLookup(t *testing.T) {
	assert.True(t, lexer.IsImageFormat(lexer.ImageFormats["RGBA32F"]))
	assert.True(t, lexer.IsImageFormat(lexer.ImageFormats["R8UI"]))
	assert.False(t, lexer.IsImageFormat(lexer.TokFloat))
}
