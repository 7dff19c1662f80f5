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

import "context"

// FileAccessor provides byte-oriented access to sysfs attribute files.
// Writes either land or report failure; no atomicity beyond that is
// assumed and no retries are performed.
type FileAccessor interface {
	// WriteText writes the given content to the file at the given path.
	WriteText(ctx context.Context, path, content string) error
	// ReadText reads the entire content of the file at the given path.
	ReadText(ctx context.Context, path string) (string, error)
}
