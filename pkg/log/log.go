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

// Package log provides leveled logging for the non-crash paths of this
// module. It deliberately avoids third-party logging stacks: the crash
// path cannot tolerate arbitrary logger internals, and everything around
// it wants a single small API.
//
// Nothing in this package may be called from a signal-handling context;
// emitters format with fmt and the default sink takes a mutex.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Level is the log level.
type Level uint32

const (
	// Warning indicates a problem the process can continue past.
	Warning Level = iota

	// Info is informational output.
	Info

	// Debug is verbose diagnostic output, off by default.
	Debug
)

func (l Level) String() string {
	switch l {
	case Warning:
		return "Warning"
	case Info:
		return "Info"
	case Debug:
		return "Debug"
	default:
		return fmt.Sprintf("Invalid level: %d", l)
	}
}

// Emitter is the final destination for formatted log lines.
type Emitter interface {
	// Emit emits the given log statement. Emit is responsible for
	// terminating the line.
	Emit(level Level, timestamp time.Time, format string, v ...any)
}

// Logger is the log target used throughout the module.
type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warningf(format string, v ...any)

	// IsLogging returns true iff messages at the given level are being
	// emitted. Callers should guard expensive argument construction with
	// it.
	IsLogging(level Level) bool
}

// BasicLogger is the default implementation of Logger: an Emitter gated by
// a level.
type BasicLogger struct {
	Level
	Emitter
}

// Debugf implements Logger.Debugf.
func (l *BasicLogger) Debugf(format string, v ...any) {
	if l.IsLogging(Debug) {
		l.Emit(Debug, time.Now(), format, v...)
	}
}

// Infof implements Logger.Infof.
func (l *BasicLogger) Infof(format string, v ...any) {
	if l.IsLogging(Info) {
		l.Emit(Info, time.Now(), format, v...)
	}
}

// Warningf implements Logger.Warningf.
func (l *BasicLogger) Warningf(format string, v ...any) {
	if l.IsLogging(Warning) {
		l.Emit(Warning, time.Now(), format, v...)
	}
}

// IsLogging implements Logger.IsLogging.
func (l *BasicLogger) IsLogging(level Level) bool {
	return atomic.LoadUint32((*uint32)(&l.Level)) >= uint32(level)
}

// SetLevel sets the logging level.
func (l *BasicLogger) SetLevel(level Level) {
	atomic.StoreUint32((*uint32)(&l.Level), uint32(level))
}

// BasicEmitter prefixes each line with the level letter and a timestamp,
// and writes it to the wrapped Writer.
type BasicEmitter struct {
	*Writer
}

// Emit implements Emitter.Emit.
func (e BasicEmitter) Emit(level Level, timestamp time.Time, format string, v ...any) {
	fmt.Fprintf(e.Writer, "%c%s %s\n",
		level.String()[0],
		timestamp.Format("0102 15:04:05.000000"),
		fmt.Sprintf(format, v...))
}

// log is the process-global logger, swapped atomically so readers never
// need a lock.
var log atomic.Pointer[BasicLogger]

// Log retrieves the global logger.
func Log() *BasicLogger {
	return log.Load()
}

// SetTarget sets the log target.
//
// This is not thread safe with respect to in-flight Emit calls and should
// only be called early in program execution or in tests.
func SetTarget(target Emitter) {
	old := Log()
	log.Store(&BasicLogger{Level: old.Level, Emitter: target})
}

// SetLevel sets the log level for the global logger.
func SetLevel(newLevel Level) {
	Log().SetLevel(newLevel)
}

// Debugf logs to the global logger.
func Debugf(format string, v ...any) {
	Log().Debugf(format, v...)
}

// Infof logs to the global logger.
func Infof(format string, v ...any) {
	Log().Infof(format, v...)
}

// Warningf logs to the global logger.
func Warningf(format string, v ...any) {
	Log().Warningf(format, v...)
}

// IsLogging returns whether the global logger emits the given level.
func IsLogging(level Level) bool {
	return Log().IsLogging(level)
}

func init() {
	log.Store(&BasicLogger{
		Level:   Warning,
		Emitter: BasicEmitter{&Writer{Next: os.Stderr}},
	})
}

// Writer writes to an io.Writer, counting rather than propagating dropped
// messages so that a failing log sink cannot wedge its callers.
type Writer struct {
	// Next is where output is written.
	Next io.Writer

	// mu protects fields below.
	mu sync.Mutex

	// errors counts failures to write log messages, so it can be reported
	// should writes start succeeding again.
	errors int
}

// Write writes out the message. A failed write is counted as a dropped
// message; once writes start succeeding again, the drop count is reported
// before resuming normal output.
func (l *Writer) Write(data []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.errors > 0 {
		if _, err := fmt.Fprintf(l.Next, "\n*** Dropped %d log messages ***\n", l.errors); err != nil {
			l.errors++
			return 0, err
		}
		l.errors = 0
	}

	n, err := l.Next.Write(data)
	if err != nil {
		l.errors++
	}
	return n, err
}
