// Copyright 2024 The LineKeeper authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sysfs

import (
	"context"
	"os"

	"github.com/pkg/errors"
)

// NewFileAccessor creates a FileAccessor backed by the local filesystem.
func NewFileAccessor() FileAccessor {
	return &fileAccessor{}
}

type fileAccessor struct {
}

// WriteText writes the given content to the file at the given path.
func (a *fileAccessor) WriteText(ctx context.Context, path, content string) error {
	if err := ctx.Err(); err != nil {
		return maskAny(err)
	}
	// Attribute files must not be truncated or created; open write-only.
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return maskAny(err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		return maskAny(err)
	}
	return nil
}

// ReadText reads the entire content of the file at the given path.
func (a *fileAccessor) ReadText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", maskAny(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", maskAny(err)
	}
	return string(raw), nil
}

var maskAny = errors.WithStack
