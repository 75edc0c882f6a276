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

// Package xdaa negotiates a shared secret with a peer over an ordered
// reliable byte stream using the XDAA handshake: each party proves
// membership in a pre-provisioned DAA group by signing an ephemeral
// X25519 key with a long-term secp256r1 identity.
package xdaa

import (
	"io"

	"github.com/xaptum/xdaa/cryptobackend"
	"github.com/xaptum/xdaa/daa"
	"github.com/xaptum/xdaa/handshake"
	"github.com/xaptum/xdaa/iobackend"
)

// NegotiateSecret runs the client-side XDAA handshake over stream using
// keys as the DAA key bundle, and returns the negotiated 32-byte shared
// secret. stream must be an ordered, reliable, bidirectional byte
// channel; the caller owns its lifetime and must close it.
func NegotiateSecret(stream io.ReadWriter, keys *daa.Keys) ([]byte, error) {
	engine := handshake.New(keys)
	crypto := cryptobackend.New()
	transport := iobackend.New(stream)

	return handshake.Run(engine, crypto, transport)
}

// NegotiateSecretFromCSV parses a DAA key bundle in the
// <group_id>,<server_public_key_hex>,<client_private_key_hex> format and
// negotiates a shared secret over stream.
func NegotiateSecretFromCSV(stream io.ReadWriter, csv string) ([]byte, error) {
	keys, err := daa.ParseKeys(csv)
	if err != nil {
		return nil, err
	}
	return NegotiateSecret(stream, keys)
}
