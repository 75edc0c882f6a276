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

// Package daa holds the provisioned DAA key bundle: a group identifier
// and the ASCII-hex long-term keys used to authenticate the handshake.
package daa

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedKeyBundle is returned when a CSV key bundle does not have
// exactly three comma-separated fields.
var ErrMalformedKeyBundle = errors.New("malformed DAA key bundle")

// Keys is the provisioned DAA key bundle: a group identifier and the two
// long-term keys, stored as their ASCII-hex wire representation. The two
// key fields are decoded lazily, by the handshake engine, via the
// GroupDecodePublicKey/GroupDecodePrivateKey effects.
type Keys struct {
	// GroupID is arbitrary ASCII bytes identifying the DAA group.
	GroupID []byte

	// ServerPublicKeyHex is the ASCII-hex of an SEC1 uncompressed
	// secp256r1 point (65 bytes -> 130 hex chars).
	ServerPublicKeyHex []byte

	// ClientPrivateKeyHex is the ASCII-hex of a 32-byte big-endian
	// secp256r1 scalar.
	ClientPrivateKeyHex []byte
}

// ParseKeys parses a key bundle from a single comma-separated string of
// the form "<group_id>,<server_public_key_hex>,<client_private_key_hex>".
// It splits on the first two commas only, so a group_id containing a
// comma is not itself a parse error.
func ParseKeys(csv string) (*Keys, error) {
	parts := strings.SplitN(csv, ",", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: want 3 comma-separated fields, got %d", ErrMalformedKeyBundle, len(parts))
	}

	return &Keys{
		GroupID:             []byte(parts[0]),
		ServerPublicKeyHex:  []byte(parts[1]),
		ClientPrivateKeyHex: []byte(parts[2]),
	}, nil
}

// New builds a Keys bundle directly from its three fields.
func New(groupID, serverPublicKeyHex, clientPrivateKeyHex string) *Keys {
	return &Keys{
		GroupID:             []byte(groupID),
		ServerPublicKeyHex:  []byte(serverPublicKeyHex),
		ClientPrivateKeyHex: []byte(clientPrivateKeyHex),
	}
}
