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

package commands

import (
	"fmt"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/upload"
)

// BatchFileToSubmissions decodes an import file: a JSON array of movie objects.
type BatchFileToSubmissions struct {
	cor.BaseCommand
}

func NewBatchFileToSubmissions(name string) *BatchFileToSubmissions {
	return &BatchFileToSubmissions{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *BatchFileToSubmissions) Execute(context cor.Context) {
	data, ok := context.Get(c.GetInputParam()).([]byte)
	if !ok {
		c.Fail(context, fmt.Errorf("expected file content under %q", c.GetInputParam()))
		return
	}
	subs, err := upload.DecodeSubmissions(data)
	if err != nil {
		c.Fail(context, err)
		return
	}
	c.Succeed(context, subs)
}
