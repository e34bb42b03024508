/*
 * aodvd: AODV ad-hoc routing daemon.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

// Package log wraps zap so the rest of aodvd never imports it
// directly. Log is the narrow interface the daemon calls against;
// Nil discards everything, for tests that don't care.
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Log interface {
	DEBUG(string, ...any)
	INFO(string, ...any)
	WARNING(string, ...any)
	ERR(string, ...any)
	With(fields ...Field) Log
}

// Field is a structured key/value pair attached to a log line.
type Field = zap.Field

func String(key, val string) Field      { return zap.String(key, val) }
func Int(key string, val int) Field     { return zap.Int(key, val) }
func Err(err error) Field               { return zap.Error(err) }
func Uint32(key string, v uint32) Field { return zap.Uint32(key, v) }

// Nil discards every log line. Useful in tests that exercise logging
// call sites without asserting on their output.
type Nil struct{}

func (Nil) DEBUG(string, ...any)   {}
func (Nil) INFO(string, ...any)    {}
func (Nil) WARNING(string, ...any) {}
func (Nil) ERR(string, ...any)     {}
func (n Nil) With(...Field) Log    { return n }

// zapLogger adapts *zap.Logger to Log.
type zapLogger struct {
	l *zap.Logger
}

// New builds a production-style JSON logger at the given level
// ("debug", "info", "warn", "error").
func New(level string) (Log, error) {
	lvl := zapcore.InfoLevel
	_ = lvl.UnmarshalText([]byte(level))

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &zapLogger{l: l}, nil
}

func (z *zapLogger) DEBUG(msg string, args ...any)   { z.l.Sugar().Debugf(msg, args...) }
func (z *zapLogger) INFO(msg string, args ...any)    { z.l.Sugar().Infof(msg, args...) }
func (z *zapLogger) WARNING(msg string, args ...any) { z.l.Sugar().Warnf(msg, args...) }
func (z *zapLogger) ERR(msg string, args ...any)     { z.l.Sugar().Errorf(msg, args...) }

func (z *zapLogger) With(fields ...Field) Log {
	return &zapLogger{l: z.l.With(fields...)}
}
