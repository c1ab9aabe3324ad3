package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const src = `module "t"

func f(i32) {
entry:
    %1 = allocate-slot i32
    store i32 10, ptr %1
    %2 = load i32, ptr %1
    %3 = add i32 %2, 5
    ret i32 %3
}
`

func TestOptimizeFoldsConstantLoad(t *testing.T) {
	out, err := Optimize(context.Background(), "t.ll", src)
	require.NoError(t, err)
	assert.Contains(t, out, "ret i32 15")
}

func TestCodegenProducesAssembly(t *testing.T) {
	out, err := Codegen(context.Background(), "t.ll", src)
	require.NoError(t, err)
	assert.Contains(t, out, ".globl f")
	assert.Contains(t, out, "ret")
}

func TestOptimizeRejectsMalformedInput(t *testing.T) {
	_, err := Optimize(context.Background(), "bad.ll", `module "bad"
func f(i32) {
entry:
    ret i32 %nope
}
`)
	assert.Error(t, err)
}
