//    Copyright 2024 The LineKeeper authors
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package util

import (
	"sync"

	"go.uber.org/multierr"
)

// SyncError combines errors collected from multiple sources.
// Safe for concurrent use.
type SyncError struct {
	err   error
	mutex sync.Mutex
}

// Add the given error to the sync error.
// Adding nil has no effect.
func (se *SyncError) Add(err error) {
	if err == nil {
		return
	}
	se.mutex.Lock()
	defer se.mutex.Unlock()
	multierr.AppendInto(&se.err, err)
}

// AsError returns the combined error, or nil when no error was added.
func (se *SyncError) AsError() error {
	se.mutex.Lock()
	defer se.mutex.Unlock()
	return se.err
}
