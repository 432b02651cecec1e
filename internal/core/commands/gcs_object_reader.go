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

	"github.com/jaycherian/gcp-go-movie-storefront/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/services"
)

// GCSObjectReader loads the content of the object named by its input.
type GCSObjectReader struct {
	cor.BaseCommand
	objects services.ObjectStore
}

func NewGCSObjectReader(name string, objects services.ObjectStore) *GCSObjectReader {
	return &GCSObjectReader{BaseCommand: *cor.NewBaseCommand(name), objects: objects}
}

func (c *GCSObjectReader) Execute(context cor.Context) {
	obj, ok := context.Get(c.GetInputParam()).(*cloud.GCSObject)
	if !ok {
		c.Fail(context, fmt.Errorf("expected a GCS object under %q", c.GetInputParam()))
		return
	}
	data, err := c.objects.Read(context.GetContext(), obj.Bucket, obj.Name)
	if err != nil {
		c.Fail(context, err)
		return
	}
	c.Succeed(context, data)
}
