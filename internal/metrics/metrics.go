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

// Package metrics exposes Prometheus instrumentation for the handshake
// engine, its crypto backend, and its transport backend.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "xdaa"

// Registry is the Prometheus registry all metrics in this package bind to.
// A dedicated registry (rather than prometheus.DefaultRegisterer) keeps a
// library consumer's own process metrics separate from this module's.
var Registry = prometheus.NewRegistry()
