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

package handshake

import (
	"fmt"

	"github.com/xaptum/xdaa/effect"
)

// Backend satisfies one effect request and returns its matching result.
// cryptobackend.Backend and iobackend.Backend both implement it.
type Backend interface {
	Handle(req effect.Request) (effect.Result, error)
}

// Run drives engine to completion: it asks for the next effect request,
// routes it to crypto or io by Kind, feeds the result back, and repeats
// until the engine emits its terminal request. It returns the negotiated
// shared secret, or the first error raised by the engine or either
// backend.
func Run(engine *Engine, crypto Backend, io Backend) ([]byte, error) {
	req, err := engine.Start()
	if err != nil {
		return nil, err
	}

	for req.Kind != effect.KindTerminated {
		backend := crypto
		if req.Kind == effect.KindDataWrite || req.Kind == effect.KindDataRead {
			backend = io
		}

		result, err := backend.Handle(req)
		if err != nil {
			return nil, fmt.Errorf("handshake: backend: %w", err)
		}

		req, err = engine.Feed(result)
		if err != nil {
			return nil, err
		}
	}

	return engine.SharedSecret(), nil
}
