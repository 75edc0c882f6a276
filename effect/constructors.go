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

package effect

// DataWrite requests a full send of data.
func DataWrite(data []byte) Request {
	return Request{Kind: KindDataWrite, WriteData: data}
}

// DataRead requests exactly size bytes.
func DataRead(size int) Request {
	return Request{Kind: KindDataRead, ReadSize: size}
}

// CreateNonce requests size cryptographically random bytes.
func CreateNonce(size int) Request {
	return Request{Kind: KindCreateNonce, NonceSize: size}
}

// EphemeralCreateKey requests a fresh X25519 key pair.
func EphemeralCreateKey() Request {
	return Request{Kind: KindEphemeralCreateKey}
}

// EphemeralComputeSharedSecret requests the X25519 ECDH output for the
// given private/public key pair.
func EphemeralComputeSharedSecret(priv EphemeralPrivateKey, pub EphemeralPublicKey) Request {
	return Request{Kind: KindEphemeralComputeSharedSecret, EphemeralPrivate: priv, EphemeralPublic: pub}
}

// EphemeralDecodePublicKey requests decoding of a 32-byte wire-format
// X25519 public key.
func EphemeralDecodePublicKey(encoded []byte) Request {
	return Request{Kind: KindEphemeralDecodePublicKey, EncodedPublicKey: encoded}
}

// EphemeralEncodePublicKey requests the 32-byte wire encoding of a key
// pair's public half.
func EphemeralEncodePublicKey(kp EphemeralPrivateKey) Request {
	return Request{Kind: KindEphemeralEncodePublicKey, EphemeralKeyPair: kp}
}

// GroupDecodePublicKey requests decoding of an ASCII-hex SEC1
// uncompressed secp256r1 point.
func GroupDecodePublicKey(hexBytes []byte) Request {
	return Request{Kind: KindGroupDecodePublicKey, HexBytes: hexBytes}
}

// GroupDecodePrivateKey requests decoding of an ASCII-hex secp256r1 scalar.
func GroupDecodePrivateKey(hexBytes []byte) Request {
	return Request{Kind: KindGroupDecodePrivateKey, HexBytes: hexBytes}
}

// GroupSHA256SignData requests an ECDSA-SHA256 signature over data.
func GroupSHA256SignData(priv GroupPrivateKey, data []byte) Request {
	return Request{Kind: KindGroupSHA256SignData, SignPrivateKey: priv, SignData: data}
}

// GroupSHA256VerifySignature requests ECDSA-SHA256 verification of sig
// over data under pub. The result carries a bool rather than an error;
// only malformed inputs fail the request itself.
func GroupSHA256VerifySignature(pub GroupPublicKey, data, sig []byte) Request {
	return Request{Kind: KindGroupSHA256VerifySignature, VerifyPublicKey: pub, VerifyData: data, VerifySignature: sig}
}

// Terminated is the engine's sole terminal request, carrying the
// negotiated secret. A driver recognizes it by Kind and stops the loop
// without dispatching it to a backend.
func Terminated(secret []byte) Request {
	return Request{Kind: KindTerminated, SharedSecret: secret}
}
