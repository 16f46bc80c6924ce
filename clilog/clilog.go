/*************************************************************************
 * Copyright 2026 the servicenow-agent authors. All rights reserved.
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package clilog provides the session log.
//
// The interactive UI owns stdout/stderr, so diagnostics go to a file instead.
// Records are framed as RFC 5424 syslog messages so the session log can be
// shipped to standard collectors unmodified.
package clilog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/crewjam/rfc5424"
)

// Level is the log verbosity floor.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	CRITICAL
)

const appname = "snowcli"

// daemon facility, severity codes from RFC 5424 table 2
var priorities = map[Level]rfc5424.Priority{
	DEBUG:    rfc5424.Daemon | rfc5424.Priority(7),
	INFO:     rfc5424.Daemon | rfc5424.Priority(6),
	WARN:     rfc5424.Daemon | rfc5424.Priority(4),
	ERROR:    rfc5424.Daemon | rfc5424.Priority(3),
	CRITICAL: rfc5424.Daemon | rfc5424.Priority(2),
}

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case CRITICAL:
		return "CRITICAL"
	}
	return "UNKNOWN"
}

// ParseLevel maps a flag value to a Level, defaulting to INFO on junk.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "CRITICAL", "CRIT":
		return CRITICAL
	}
	return INFO
}

// Logger is a leveled, file-backed writer. The zero value discards.
type Logger struct {
	mu       sync.Mutex
	out      io.WriteCloser
	lvl      Level
	hostname string
}

// Writer is the shared session logger. It is valid (as a no-op) before Init.
var Writer = &Logger{}

// Init points the shared Writer at path, creating parent directories as
// needed. Subsequent calls re-initialize, closing the prior file.
func Init(path, level string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	hn, _ := os.Hostname()

	Writer.mu.Lock()
	defer Writer.mu.Unlock()
	if Writer.out != nil {
		Writer.out.Close()
	}
	Writer.out = f
	Writer.lvl = ParseLevel(level)
	Writer.hostname = hn
	return nil
}

// Destroy closes the shared Writer's file, returning it to a no-op state.
func Destroy() error {
	Writer.mu.Lock()
	defer Writer.mu.Unlock()
	if Writer.out == nil {
		return nil
	}
	err := Writer.out.Close()
	Writer.out = nil
	return err
}

func (l *Logger) writef(lvl Level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.out == nil || lvl < l.lvl {
		return
	}
	m := rfc5424.Message{
		Priority:  priorities[lvl],
		Timestamp: time.Now(),
		Hostname:  l.hostname,
		AppName:   appname,
		Message:   []byte(fmt.Sprintf(format, args...)),
	}
	m.WriteTo(l.out)
	io.WriteString(l.out, "\n")
}

func (l *Logger) Debugf(format string, args ...any)    { l.writef(DEBUG, format, args...) }
func (l *Logger) Infof(format string, args ...any)     { l.writef(INFO, format, args...) }
func (l *Logger) Warnf(format string, args ...any)     { l.writef(WARN, format, args...) }
func (l *Logger) Errorf(format string, args ...any)    { l.writef(ERROR, format, args...) }
func (l *Logger) Criticalf(format string, args ...any) { l.writef(CRITICAL, format, args...) }

// Tee logs the message and mirrors it to w (typically a command's stderr) so
// non-interactive invocations still see their failures.
func Tee(lvl Level, w io.Writer, msg string) {
	Writer.writef(lvl, "%s", strings.TrimRight(msg, "\n"))
	if w != nil {
		fmt.Fprintln(w, strings.TrimRight(msg, "\n"))
	}
}
