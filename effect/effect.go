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

// Package effect defines the closed vocabulary of side-effect requests
// the handshake engine can emit, and the matching results a backend must
// feed back. Requests and results are plain values: the engine never
// calls a backend directly, and a backend never reaches into the engine.
package effect

// Kind tags a Request/Result pair so a driver can dispatch without a
// type switch over concrete request types, if it prefers to.
type Kind int

const (
	KindDataWrite Kind = iota
	KindDataRead
	KindCreateNonce
	KindEphemeralCreateKey
	KindEphemeralComputeSharedSecret
	KindEphemeralDecodePublicKey
	KindEphemeralEncodePublicKey
	KindGroupDecodePublicKey
	KindGroupDecodePrivateKey
	KindGroupSHA256SignData
	KindGroupSHA256VerifySignature
	KindTerminated
)

// Request is the closed set of effect requests the engine can emit.
// Only the fields listed under the selected Kind are meaningful; a
// backend should switch on Kind rather than probe fields.
type Request struct {
	Kind Kind

	// DataWrite
	WriteData []byte

	// DataRead
	ReadSize int

	// CreateNonce
	NonceSize int

	// EphemeralComputeSharedSecret
	EphemeralPrivate EphemeralPrivateKey
	EphemeralPublic  EphemeralPublicKey

	// EphemeralDecodePublicKey
	EncodedPublicKey []byte

	// EphemeralEncodePublicKey
	EphemeralKeyPair EphemeralPrivateKey

	// GroupDecodePublicKey / GroupDecodePrivateKey
	HexBytes []byte

	// GroupSHA256SignData
	SignPrivateKey GroupPrivateKey
	SignData       []byte

	// GroupSHA256VerifySignature
	VerifyPublicKey GroupPublicKey
	VerifyData      []byte
	VerifySignature []byte

	// Terminated
	SharedSecret []byte
}

// Result is the closed set of effect results a backend must produce in
// response to a Request of the matching Kind.
type Result struct {
	Kind Kind

	// DataWriteResult carries no payload.

	// DataReadResult
	ReadData []byte

	// CreateNonceResult
	Nonce []byte

	// EphemeralCreateKeyResult
	EphemeralKeyPair EphemeralPrivateKey

	// EphemeralComputeSharedSecretResult
	SharedSecret []byte

	// EphemeralDecodePublicKeyResult
	EphemeralPublic EphemeralPublicKey

	// EphemeralEncodePublicKeyResult
	EncodedPublicKey []byte

	// GroupDecodePublicKeyResult
	GroupPublic GroupPublicKey

	// GroupDecodePrivateKeyResult
	GroupPrivate GroupPrivateKey

	// GroupSHA256SignDataResult
	Signature []byte

	// GroupSHA256VerifySignatureResult
	Verified bool
}

// EphemeralPrivateKey is an opaque handle to an X25519 private key, kept
// whole by the engine for later public-key extraction and shared-secret
// computation. Backends decide the concrete representation.
type EphemeralPrivateKey interface {
	isEphemeralPrivateKey()
}

// EphemeralPublicKey is an opaque handle to a decoded X25519 public key.
type EphemeralPublicKey interface {
	isEphemeralPublicKey()
}

// GroupPublicKey is an opaque handle to a decoded secp256r1 public key.
type GroupPublicKey interface {
	isGroupPublicKey()
}

// GroupPrivateKey is an opaque handle to a decoded secp256r1 private key.
type GroupPrivateKey interface {
	isGroupPrivateKey()
}
