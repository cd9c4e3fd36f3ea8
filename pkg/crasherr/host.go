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

package crasherr

import (
	"golang.org/x/sys/unix"
)

// FromHost translates a host errno to the corresponding vocabulary Error.
// Errno 0 yields nil. Errnos with no specific mapping yield ErrUnknown;
// the translation cannot fail.
func FromHost(errno unix.Errno) *Error {
	switch errno {
	case 0:
		return nil
	case unix.EPERM, unix.EACCES:
		return ErrAccessDenied
	case unix.ENOENT, unix.ESRCH:
		return ErrNotFound
	case unix.ENOMEM:
		return ErrNoMemory
	case unix.EINVAL:
		return ErrInvalidArgument
	case unix.ENOSYS, unix.EOPNOTSUPP:
		return ErrNotSupported
	case unix.EIO, unix.EBADF, unix.ENOSPC, unix.EPIPE, unix.EFBIG, unix.EDQUOT:
		return ErrOutput
	}
	return ErrUnknown
}
