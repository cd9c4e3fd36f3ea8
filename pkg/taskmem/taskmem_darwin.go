// Copyright 2026 The CrashSafe Authors.
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

//go:build darwin
// +build darwin

package taskmem

import (
	"crashsafe.dev/crashsafe/pkg/crasherr"
)

// ReadAddr implements Reader.ReadAddr.
//
// Reading another task's memory requires a Mach VM facility that is not
// wired up on Darwin builds of this module.
func (t Task) ReadAddr(addr Addr, dst []byte) error {
	return crasherr.ErrNotSupported
}
