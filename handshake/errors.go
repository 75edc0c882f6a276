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

import "errors"

// ErrIncorrectGroup is returned when the server's declared group id does
// not byte-match the client's provisioned group id.
var ErrIncorrectGroup = errors.New("incorrect daa group")

// ErrInvalidSignature is returned when the server's signature over its
// ephemeral key and the client's nonce fails ECDSA verification.
var ErrInvalidSignature = errors.New("invalid signature")

// ErrTerminated is a programmer error: the engine was driven after it
// already reached its terminal state.
var ErrTerminated = errors.New("handshake: engine already terminated")
