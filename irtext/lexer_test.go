package irtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexAllProducesExpectedKinds(t *testing.T) {
	toks, err := lexAll("t.ll", "%1 = add i32 -3, 4 ; comment\n")
	require.Nil(t, err)

	var kinds []tokenKind
	for _, tok := range toks {
		kinds = append(kinds, tok.kind)
	}
	want := []tokenKind{tPercent, tEquals, tIdent, tIdent, tInt, tComma, tInt, tNewline, tEOF}
	assert.Equal(t, want, kinds)
}

func TestLexAllRejectsUnterminatedString(t *testing.T) {
	_, err := lexAll("t.ll", `module "oops`)
	require.NotNil(t, err)
}

func TestScanIntHandlesNegative(t *testing.T) {
	toks, err := lexAll("t.ll", "-42")
	require.Nil(t, err)
	require.GreaterOrEqual(t, len(toks), 1)
	assert.Equal(t, int32(-42), toks[0].ival)
}
