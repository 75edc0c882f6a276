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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IOOperations tracks DataRead/DataWrite effect dispatches.
	IOOperations = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "io",
			Name:      "operations_total",
			Help:      "Total number of transport effect dispatches",
		},
		[]string{"direction", "status"}, // read/write, success/failure
	)

	// IOBytes tracks bytes moved across the transport backend.
	IOBytes = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "io",
			Name:      "bytes_total",
			Help:      "Total bytes read from or written to the transport",
		},
		[]string{"direction"}, // read, write
	)

	// IODuration tracks how long each DataRead/DataWrite dispatch takes.
	IODuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "io",
			Name:      "duration_seconds",
			Help:      "Transport effect dispatch duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15), // 0.1ms to 1.6s
		},
		[]string{"direction"},
	)
)
