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

// Package crasherr defines the closed set of outcome codes shared by the
// crash-time writer core and its callers. These errors are distinct from
// host syscall errors; translation from host errnos is provided by
// FromHost.
//
// All Error values are declared at package scope, so returning one from a
// signal-handling context performs no allocation.
package crasherr

// Code enumerates the outcomes of crash-writer operations. The set is
// closed; values are stable for the lifetime of the process.
type Code uint8

const (
	// OK indicates success.
	OK Code = iota

	// Unknown indicates an unclassified failure. If observed, it is a bug.
	Unknown

	// OutputError indicates the output destination could not be opened or
	// written to.
	OutputError

	// NoMemory indicates an allocation failed or no memory was available.
	NoMemory

	// NotSupported indicates the operation is not supported on this
	// platform.
	NotSupported

	// InvalidArgument indicates an invalid argument.
	InvalidArgument

	// Internal indicates an internal error.
	Internal

	// AccessDenied indicates access to the specified resource was denied.
	AccessDenied

	// NotFound indicates the requested resource could not be found.
	NotFound
)

// String returns the fixed description for c. The mapping is total: codes
// outside the defined set yield the fallback description rather than
// failing.
func (c Code) String() string {
	switch c {
	case OK:
		return "no error"
	case Unknown:
		return "unknown error"
	case OutputError:
		return "output file can not be opened (or written to)"
	case NoMemory:
		return "no memory available"
	case NotSupported:
		return "operation not supported"
	case InvalidArgument:
		return "invalid argument"
	case Internal:
		return "internal error"
	case AccessDenied:
		return "access denied"
	case NotFound:
		return "not found"
	}
	return "unhandled error code"
}

// Error pairs a Code with a fixed human-readable message. Error values are
// immutable; the static values below should be returned directly rather
// than constructing new ones at failure time.
type Error struct {
	code    Code
	message string
}

// New creates a new Error.
//
// New must only be called at init; errors carried across the crash path
// must be statically allocated.
func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Error implements error.Error.
func (e *Error) Error() string { return e.message }

// Code returns the outcome code this error carries.
func (e *Error) Code() Code { return e.code }

// Static errors, one per failure code, plus named layerings over shared
// codes for failures callers need to tell apart.
var (
	ErrUnknown         = New(Unknown, Unknown.String())
	ErrOutput          = New(OutputError, OutputError.String())
	ErrNoMemory        = New(NoMemory, NoMemory.String())
	ErrNotSupported    = New(NotSupported, NotSupported.String())
	ErrInvalidArgument = New(InvalidArgument, InvalidArgument.String())
	ErrInternal        = New(Internal, Internal.String())
	ErrAccessDenied    = New(AccessDenied, AccessDenied.String())
	ErrNotFound        = New(NotFound, NotFound.String())

	// ErrLimitReached is returned when an append would push a sink past
	// its output ceiling. The entire append is rejected.
	ErrLimitReached = New(OutputError, "output limit reached")

	// ErrWriteFailed is returned when an underlying write to the output
	// descriptor failed for any reason other than interruption.
	ErrWriteFailed = New(OutputError, "write to output failed")
)

// codeErrors indexes the canonical Error for each Code. OK maps to nil.
var codeErrors = [...]*Error{
	OK:              nil,
	Unknown:         ErrUnknown,
	OutputError:     ErrOutput,
	NoMemory:        ErrNoMemory,
	NotSupported:    ErrNotSupported,
	InvalidArgument: ErrInvalidArgument,
	Internal:        ErrInternal,
	AccessDenied:    ErrAccessDenied,
	NotFound:        ErrNotFound,
}

// FromCode returns the canonical Error for c. OK yields nil; codes outside
// the defined set yield ErrUnknown. The lookup itself cannot fail.
func FromCode(c Code) *Error {
	if int(c) >= len(codeErrors) {
		return ErrUnknown
	}
	return codeErrors[c]
}

// errorUnwrappers holds unwrap functions registered by leaf packages whose
// typed fault values need a vocabulary translation.
var errorUnwrappers []func(error) (*Error, bool)

// AddErrorUnwrapper registers an unwrap method that can extract a
// vocabulary Error from a package-specific error type.
//
// AddErrorUnwrapper must only be called at init.
func AddErrorUnwrapper(unwrap func(err error) (*Error, bool)) {
	errorUnwrappers = append(errorUnwrappers, unwrap)
}

// TranslateError translates err to a vocabulary Error. It returns false if
// no registered unwrapper recognizes err.
func TranslateError(err error) (*Error, bool) {
	if e, ok := err.(*Error); ok {
		return e, true
	}
	for _, unwrap := range errorUnwrappers {
		if e, ok := unwrap(err); ok {
			return e, true
		}
	}
	return nil, false
}
