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

// Package cor (Chain of Responsibility) provides the building blocks the
// background pipelines are assembled from. A workflow is a Chain of Commands
// sharing one Context: each command reads its input from the context, writes
// its output back, and records failures under its own name.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Well-known context keys. A chain moves each command's CtxOut value to
// CtxIn before running the next command.
const (
	CtxIn  = "__IN__"
	CtxOut = "__OUT__"
)

// Context is the shared state of one chain execution.
type Context interface {
	// SetContext replaces the Go context carried through the chain.
	SetContext(context context.Context)
	// GetContext returns the Go context used for cancellation and tracing.
	GetContext() context.Context
	// Add stores a value under key.
	Add(key string, value interface{}) Context
	// AddError records a failure under the name of the command that produced it.
	AddError(key string, err error)
	// GetErrors returns every recorded failure keyed by command name.
	GetErrors() map[string]error
	// Get returns the value stored under key, or nil.
	Get(key string) interface{}
	// Remove deletes key.
	Remove(key string)
	// HasErrors reports whether any failure has been recorded.
	HasErrors() bool
}

// Executable is anything that can run against a Context.
type Executable interface {
	Execute(context Context)
}

// Command is a single named, instrumented step.
type Command interface {
	Executable

	GetName() string

	// GetInputParam is the key the command reads, CtxIn by default.
	GetInputParam() string

	// GetOutputParam is the key the command writes, CtxOut by default.
	GetOutputParam() string

	// IsExecutable reports whether the context holds what the command needs.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer

	GetMeter() metric.Meter

	GetSuccessCounter() metric.Int64Counter

	GetErrorCounter() metric.Int64Counter
}

// Chain is a Command made of other commands run in order.
type Chain interface {
	Command

	// ContinueOnFailure makes the chain run every command even after a failure.
	ContinueOnFailure(bool) Chain

	AddCommand(command Command) Chain
}
