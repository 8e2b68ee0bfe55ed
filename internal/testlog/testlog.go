// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package testlog routes log output to the test log.
package testlog

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
)

// Writer creates a testing log writer.
func Writer(t testing.TB) io.Writer { return &errorLog{t} }

type errorLog struct{ testing.TB }

// Write implements io.Writer.
func (t *errorLog) Write(p []byte) (int, error) {
	t.Helper()
	t.Log(string(bytes.TrimSpace(p)))
	return len(p), nil
}

// Default sets the default slog logger to write debug and higher levels to
// the test log until the test completes. The returned buffer receives a copy
// of every record for tests which assert on log output.
func Default(t testing.TB) *bytes.Buffer {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.MultiWriter(Writer(t), &buf), &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}
