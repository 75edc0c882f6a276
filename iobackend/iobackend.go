// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

// Package iobackend is the reference synchronous satisfier of the I/O
// half of the effect vocabulary: DataWrite as a full send, DataRead(n)
// as a read-exactly-n primitive over any io.ReadWriter.
package iobackend

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xaptum/xdaa/effect"
	"github.com/xaptum/xdaa/internal/metrics"
)

// ErrConnectionClosed is returned when the peer closes the stream before
// DataRead's requested number of bytes has arrived.
var ErrConnectionClosed = errors.New("connection closed by peer")

// deadliner is satisfied by net.Conn, including the net.Pipe() ends used
// in tests. A stream that does not implement it gets no deadline, so
// deadlines are applied on a best-effort basis.
type deadliner interface {
	SetDeadline(t time.Time) error
}

// Backend implements the I/O effect requests over a blocking
// io.ReadWriter, e.g. a net.Conn.
type Backend struct {
	stream   io.ReadWriter
	deadline time.Duration
}

// New returns an I/O backend bound to stream, with no per-effect deadline.
func New(stream io.ReadWriter) *Backend {
	return &Backend{stream: stream}
}

// NewWithDeadline returns an I/O backend that applies deadline to the
// underlying stream around every DataRead/DataWrite dispatch, per
// HandshakeConfig.IODeadline. It is a no-op unless stream implements
// SetDeadline (as net.Conn does); zero disables it.
func NewWithDeadline(stream io.ReadWriter, deadline time.Duration) *Backend {
	return &Backend{stream: stream, deadline: deadline}
}

func (b *Backend) applyDeadline() {
	if b.deadline <= 0 {
		return
	}
	if d, ok := b.stream.(deadliner); ok {
		_ = d.SetDeadline(time.Now().Add(b.deadline))
	}
}

// Handle satisfies one I/O effect request. It returns an error if given a
// non-I/O request kind; callers should only route DataWrite/DataRead here.
func (b *Backend) Handle(req effect.Request) (effect.Result, error) {
	switch req.Kind {
	case effect.KindDataWrite:
		return b.dataWrite(req)
	case effect.KindDataRead:
		return b.dataRead(req)
	default:
		return effect.Result{}, fmt.Errorf("iobackend: request kind %v is not an I/O effect", req.Kind)
	}
}

func (b *Backend) dataWrite(req effect.Request) (effect.Result, error) {
	start := time.Now()
	b.applyDeadline()

	n, err := b.stream.Write(req.WriteData)
	if err != nil || n != len(req.WriteData) {
		metrics.IOOperations.WithLabelValues("write", "failure").Inc()
		if err == nil {
			err = io.ErrShortWrite
		}
		return effect.Result{}, fmt.Errorf("data write: %w", err)
	}

	metrics.IOOperations.WithLabelValues("write", "success").Inc()
	metrics.IOBytes.WithLabelValues("write").Add(float64(len(req.WriteData)))
	metrics.IODuration.WithLabelValues("write").Observe(time.Since(start).Seconds())

	return effect.Result{Kind: effect.KindDataWrite}, nil
}

// dataRead reads exactly req.ReadSize bytes, failing with
// ErrConnectionClosed if the peer closes the stream first. It never
// returns a short buffer.
func (b *Backend) dataRead(req effect.Request) (effect.Result, error) {
	start := time.Now()
	b.applyDeadline()
	buf := make([]byte, req.ReadSize)

	n, err := io.ReadFull(b.stream, buf)
	if err != nil {
		metrics.IOOperations.WithLabelValues("read", "failure").Inc()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return effect.Result{}, fmt.Errorf("data read: %w", ErrConnectionClosed)
		}
		return effect.Result{}, fmt.Errorf("data read: %w", err)
	}

	metrics.IOOperations.WithLabelValues("read", "success").Inc()
	metrics.IOBytes.WithLabelValues("read").Add(float64(n))
	metrics.IODuration.WithLabelValues("read").Observe(time.Since(start).Seconds())

	return effect.Result{Kind: effect.KindDataRead, ReadData: buf}, nil
}
