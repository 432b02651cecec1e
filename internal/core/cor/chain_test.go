// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cor_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/cor"
	"github.com/stretchr/testify/assert"
)

// upper uppercases its string input.
type upper struct {
	cor.BaseCommand
	calls int
}

func newUpper(name string) *upper {
	return &upper{BaseCommand: *cor.NewBaseCommand(name)}
}

func (u *upper) Execute(context cor.Context) {
	u.calls++
	u.Succeed(context, strings.ToUpper(context.Get(u.GetInputParam()).(string)))
}

// failing always records an error.
type failing struct {
	cor.BaseCommand
}

func (f *failing) Execute(context cor.Context) {
	f.Fail(context, errors.New("boom"))
}

func newContext(input interface{}) cor.Context {
	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	if input != nil {
		ctx.Add(cor.CtxIn, input)
	}
	return ctx
}

func TestChainPipesOutputToInput(t *testing.T) {
	first := newUpper("first")
	suffix := &suffixer{BaseCommand: *cor.NewBaseCommand("suffix")}
	chain := cor.NewBaseChain("pipe").AddCommand(first).AddCommand(suffix)

	ctx := newContext("hello")
	chain.Execute(ctx)

	assert.False(t, ctx.HasErrors())
	assert.Equal(t, "HELLO!", ctx.Get(cor.CtxIn))
	assert.Nil(t, ctx.Get(cor.CtxOut))
}

type suffixer struct {
	cor.BaseCommand
}

func (s *suffixer) Execute(context cor.Context) {
	s.Succeed(context, context.Get(s.GetInputParam()).(string)+"!")
}

func TestChainStopsOnFailure(t *testing.T) {
	after := newUpper("after")
	chain := cor.NewBaseChain("stop").
		AddCommand(&failing{BaseCommand: *cor.NewBaseCommand("fail")}).
		AddCommand(after)

	ctx := newContext("x")
	chain.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	assert.EqualError(t, ctx.GetErrors()["fail"], "boom")
	assert.Equal(t, 0, after.calls)
}

func TestChainContinueOnFailure(t *testing.T) {
	after := newUpper("after")
	chain := cor.NewBaseChain("continue").
		ContinueOnFailure(true).
		AddCommand(&failing{BaseCommand: *cor.NewBaseCommand("fail")}).
		AddCommand(after)

	ctx := newContext("x")
	chain.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	// The failing command wrote no output, so the next command has no input.
	assert.Equal(t, 0, after.calls)
	assert.Len(t, ctx.GetErrors(), 1)
}

func TestChainContinuesWithUnrelatedInput(t *testing.T) {
	after := newUpper("after")
	after.InputParamName = "kept"
	chain := cor.NewBaseChain("continue").
		ContinueOnFailure(true).
		AddCommand(&failing{BaseCommand: *cor.NewBaseCommand("fail")}).
		AddCommand(after)

	ctx := newContext("x")
	ctx.Add("kept", "y")
	chain.Execute(ctx)

	assert.Equal(t, 1, after.calls)
	assert.Equal(t, "Y", ctx.Get(cor.CtxIn))
}

func TestChainSkipsCommandWithoutInput(t *testing.T) {
	cmd := newUpper("needs-input")
	chain := cor.NewBaseChain("missing").AddCommand(cmd)

	ctx := newContext(nil)
	chain.Execute(ctx)

	assert.Equal(t, 0, cmd.calls)
	assert.False(t, ctx.HasErrors())
}

func TestCustomParamNames(t *testing.T) {
	cmd := newUpper("named")
	cmd.InputParamName = "source"
	cmd.OutputParamName = "target"

	ctx := newContext(nil)
	ctx.Add("source", "abc")
	assert.True(t, cmd.IsExecutable(ctx))

	cmd.Execute(ctx)
	assert.Equal(t, "ABC", ctx.Get("target"))
}

func TestBaseContext(t *testing.T) {
	ctx := cor.NewBaseContext()
	assert.Nil(t, ctx.GetContext())
	assert.False(t, ctx.HasErrors())

	ctx.Add("k", 1)
	assert.Equal(t, 1, ctx.Get("k"))
	ctx.Remove("k")
	assert.Nil(t, ctx.Get("k"))

	ctx.AddError("cmd", errors.New("bad"))
	assert.True(t, ctx.HasErrors())
	assert.Len(t, ctx.GetErrors(), 1)
}
