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
	"sync"

	"github.com/pkg/errors"
)

// StubWrite records a single write issued against the stub accessor.
type StubWrite struct {
	Path    string
	Content string
}

// Stub is an in-memory FileAccessor that records every write in order.
// Failures can be injected per path.
type Stub struct {
	mutex       sync.Mutex
	files       map[string]string
	writes      []StubWrite
	writeErrors map[string]error
	readErrors  map[string]error
}

// NewStub creates an empty stub accessor.
func NewStub() *Stub {
	return &Stub{
		files:       make(map[string]string),
		writeErrors: make(map[string]error),
		readErrors:  make(map[string]error),
	}
}

// WriteText records the write and stores the content, unless a failure
// has been injected for the path.
func (s *Stub) WriteText(ctx context.Context, path, content string) error {
	if err := ctx.Err(); err != nil {
		return maskAny(err)
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err, found := s.writeErrors[path]; found {
		return maskAny(err)
	}
	s.writes = append(s.writes, StubWrite{Path: path, Content: content})
	s.files[path] = content
	return nil
}

// ReadText returns the stored content of the given path.
func (s *Stub) ReadText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", maskAny(err)
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err, found := s.readErrors[path]; found {
		return "", maskAny(err)
	}
	content, found := s.files[path]
	if !found {
		return "", errors.Errorf("no such file '%s'", path)
	}
	return content, nil
}

// SetFile stores content for the given path without recording a write.
func (s *Stub) SetFile(path, content string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.files[path] = content
}

// FailWrites makes every write to the given path fail with the given error.
func (s *Stub) FailWrites(path string, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.writeErrors[path] = err
}

// FailReads makes every read of the given path fail with the given error.
func (s *Stub) FailReads(path string, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.readErrors[path] = err
}

// Writes returns all recorded writes in order.
func (s *Stub) Writes() []StubWrite {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	result := make([]StubWrite, len(s.writes))
	copy(result, s.writes)
	return result
}

// WritesTo returns the contents written to the given path, in order.
func (s *Stub) WritesTo(path string) []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var result []string
	for _, w := range s.writes {
		if w.Path == path {
			result = append(result, w.Content)
		}
	}
	return result
}

// LastWrite returns the most recent write to the given path.
func (s *Stub) LastWrite(path string) (string, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for i := len(s.writes) - 1; i >= 0; i-- {
		if s.writes[i].Path == path {
			return s.writes[i].Content, true
		}
	}
	return "", false
}
