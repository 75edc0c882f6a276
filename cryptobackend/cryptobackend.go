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

// Package cryptobackend is the reference synchronous satisfier of the
// crypto half of the effect vocabulary: secp256r1 ECDSA-SHA256 with
// DER-encoded signatures for the long-term DAA group keys, and X25519
// for the ephemeral ECDHE keys.
package cryptobackend

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/xaptum/xdaa/effect"
	"github.com/xaptum/xdaa/internal/metrics"
)

// groupPublicKey wraps a decoded secp256r1 public key so it satisfies
// effect.GroupPublicKey without leaking crypto/ecdsa types into the
// engine.
type groupPublicKey struct{ key *ecdsa.PublicKey }

func (groupPublicKey) isGroupPublicKey() {}

// groupPrivateKey wraps a decoded secp256r1 private key.
type groupPrivateKey struct{ key *ecdsa.PrivateKey }

func (groupPrivateKey) isGroupPrivateKey() {}

// ephemeralPrivateKey wraps an X25519 key pair (private and its derived
// public key, kept together per the handshake context's requirement
// that the whole key pair survive until the final ECDH).
type ephemeralPrivateKey struct {
	private *ecdh.PrivateKey
	public  *ecdh.PublicKey
}

func (ephemeralPrivateKey) isEphemeralPrivateKey() {}

// ephemeralPublicKey wraps a decoded X25519 public key.
type ephemeralPublicKey struct{ key *ecdh.PublicKey }

func (ephemeralPublicKey) isEphemeralPublicKey() {}

// Backend implements the crypto effect requests using stdlib
// crypto/ecdsa, crypto/elliptic, and crypto/ecdh.
type Backend struct{}

// New returns the reference crypto backend.
func New() *Backend {
	return &Backend{}
}

// Handle satisfies one crypto effect request. It returns an error if
// given a non-crypto request kind; callers should only route Group*/
// Ephemeral*/CreateNonce requests here.
func (b *Backend) Handle(req effect.Request) (effect.Result, error) {
	switch req.Kind {
	case effect.KindCreateNonce:
		return b.createNonce(req)
	case effect.KindEphemeralCreateKey:
		return b.ephemeralCreateKey()
	case effect.KindEphemeralComputeSharedSecret:
		return b.ephemeralComputeSharedSecret(req)
	case effect.KindEphemeralDecodePublicKey:
		return b.ephemeralDecodePublicKey(req)
	case effect.KindEphemeralEncodePublicKey:
		return b.ephemeralEncodePublicKey(req)
	case effect.KindGroupDecodePublicKey:
		return b.groupDecodePublicKey(req)
	case effect.KindGroupDecodePrivateKey:
		return b.groupDecodePrivateKey(req)
	case effect.KindGroupSHA256SignData:
		return b.groupSHA256SignData(req)
	case effect.KindGroupSHA256VerifySignature:
		return b.groupSHA256VerifySignature(req)
	default:
		return effect.Result{}, fmt.Errorf("cryptobackend: request kind %v is not a crypto effect", req.Kind)
	}
}

func (b *Backend) createNonce(req effect.Request) (effect.Result, error) {
	nonce := make([]byte, req.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return effect.Result{}, fmt.Errorf("create nonce: %w", err)
	}
	return effect.Result{Kind: effect.KindCreateNonce, Nonce: nonce}, nil
}

func (b *Backend) ephemeralCreateKey() (effect.Result, error) {
	priv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return effect.Result{}, fmt.Errorf("ephemeral create key: %w", err)
	}

	kp := ephemeralPrivateKey{private: priv, public: priv.PublicKey()}
	return effect.Result{Kind: effect.KindEphemeralCreateKey, EphemeralKeyPair: kp}, nil
}

// ephemeralComputeSharedSecret computes the X25519 ECDH output and
// byte-reverses it before returning it, matching the big-endian
// convention used for public-key transport and the final secret.
func (b *Backend) ephemeralComputeSharedSecret(req effect.Request) (effect.Result, error) {
	start := time.Now()
	priv, ok := req.EphemeralPrivate.(ephemeralPrivateKey)
	if !ok {
		return effect.Result{}, fmt.Errorf("ephemeral compute shared secret: wrong private key type %T", req.EphemeralPrivate)
	}
	pub, ok := req.EphemeralPublic.(ephemeralPublicKey)
	if !ok {
		return effect.Result{}, fmt.Errorf("ephemeral compute shared secret: wrong public key type %T", req.EphemeralPublic)
	}

	raw, err := priv.private.ECDH(pub.key)
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("ecdh").Inc()
		return effect.Result{}, fmt.Errorf("ephemeral compute shared secret: %w", err)
	}

	metrics.CryptoOperations.WithLabelValues("ecdh", "x25519").Inc()
	metrics.CryptoOperationDuration.WithLabelValues("ecdh", "x25519").Observe(time.Since(start).Seconds())

	return effect.Result{Kind: effect.KindEphemeralComputeSharedSecret, SharedSecret: reversed(raw)}, nil
}

// ephemeralDecodePublicKey decodes a 32-byte wire-format X25519 public
// key. The wire bytes are big-endian; the underlying primitive is
// little-endian, so they are reversed before being handed to crypto/ecdh.
func (b *Backend) ephemeralDecodePublicKey(req effect.Request) (effect.Result, error) {
	if len(req.EncodedPublicKey) != 32 {
		return effect.Result{}, fmt.Errorf("ephemeral decode public key: want 32 bytes, got %d", len(req.EncodedPublicKey))
	}

	pub, err := ecdh.X25519().NewPublicKey(reversed(req.EncodedPublicKey))
	if err != nil {
		return effect.Result{}, fmt.Errorf("ephemeral decode public key: %w", err)
	}

	return effect.Result{Kind: effect.KindEphemeralDecodePublicKey, EphemeralPublic: ephemeralPublicKey{key: pub}}, nil
}

// ephemeralEncodePublicKey returns the 32-byte big-endian wire encoding
// of a key pair's public half.
func (b *Backend) ephemeralEncodePublicKey(req effect.Request) (effect.Result, error) {
	kp, ok := req.EphemeralKeyPair.(ephemeralPrivateKey)
	if !ok {
		return effect.Result{}, fmt.Errorf("ephemeral encode public key: wrong key pair type %T", req.EphemeralKeyPair)
	}

	return effect.Result{Kind: effect.KindEphemeralEncodePublicKey, EncodedPublicKey: reversed(kp.public.Bytes())}, nil
}

// groupDecodePublicKey decodes an ASCII-hex SEC1 uncompressed secp256r1
// point (0x04 || X || Y, 65 bytes).
func (b *Backend) groupDecodePublicKey(req effect.Request) (effect.Result, error) {
	raw, err := hexDecode(req.HexBytes)
	if err != nil {
		return effect.Result{}, fmt.Errorf("group decode public key: %w", err)
	}

	x, y := elliptic.Unmarshal(elliptic.P256(), raw)
	if x == nil {
		return effect.Result{}, fmt.Errorf("group decode public key: invalid SEC1 point")
	}

	pub := &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}
	return effect.Result{Kind: effect.KindGroupDecodePublicKey, GroupPublic: groupPublicKey{key: pub}}, nil
}

// groupDecodePrivateKey decodes an ASCII-hex 32-byte big-endian
// secp256r1 scalar.
func (b *Backend) groupDecodePrivateKey(req effect.Request) (effect.Result, error) {
	raw, err := hexDecode(req.HexBytes)
	if err != nil {
		return effect.Result{}, fmt.Errorf("group decode private key: %w", err)
	}

	d := new(big.Int).SetBytes(raw)
	curve := elliptic.P256()
	x, y := curve.ScalarBaseMult(raw)

	priv := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve, X: x, Y: y},
		D:         d,
	}
	return effect.Result{Kind: effect.KindGroupDecodePrivateKey, GroupPrivate: groupPrivateKey{key: priv}}, nil
}

// groupSHA256SignData signs data with ECDSA-SHA256, returning a
// DER-encoded (ASN.1) signature.
func (b *Backend) groupSHA256SignData(req effect.Request) (effect.Result, error) {
	start := time.Now()
	priv, ok := req.SignPrivateKey.(groupPrivateKey)
	if !ok {
		return effect.Result{}, fmt.Errorf("group sha256 sign data: wrong private key type %T", req.SignPrivateKey)
	}

	hash := sha256.Sum256(req.SignData)
	sig, err := ecdsa.SignASN1(rand.Reader, priv.key, hash[:])
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("sign").Inc()
		return effect.Result{}, fmt.Errorf("group sha256 sign data: %w", err)
	}

	metrics.CryptoOperations.WithLabelValues("sign", "secp256r1").Inc()
	metrics.CryptoOperationDuration.WithLabelValues("sign", "secp256r1").Observe(time.Since(start).Seconds())

	return effect.Result{Kind: effect.KindGroupSHA256SignData, Signature: sig}, nil
}

// groupSHA256VerifySignature verifies a DER-encoded ECDSA-SHA256
// signature. Per the effect contract, an invalid signature is a false
// result, not an error; only malformed inputs (wrong key type) error.
func (b *Backend) groupSHA256VerifySignature(req effect.Request) (effect.Result, error) {
	start := time.Now()
	pub, ok := req.VerifyPublicKey.(groupPublicKey)
	if !ok {
		return effect.Result{}, fmt.Errorf("group sha256 verify signature: wrong public key type %T", req.VerifyPublicKey)
	}

	hash := sha256.Sum256(req.VerifyData)
	verified := ecdsa.VerifyASN1(pub.key, hash[:], req.VerifySignature)

	metrics.CryptoOperations.WithLabelValues("verify", "secp256r1").Inc()
	metrics.CryptoOperationDuration.WithLabelValues("verify", "secp256r1").Observe(time.Since(start).Seconds())
	if !verified {
		metrics.CryptoErrors.WithLabelValues("verify").Inc()
	}

	return effect.Result{Kind: effect.KindGroupSHA256VerifySignature, Verified: verified}, nil
}

func hexDecode(asciiHex []byte) ([]byte, error) {
	dst := make([]byte, hex.DecodedLen(len(asciiHex)))
	n, err := hex.Decode(dst, asciiHex)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

// reversed returns a new slice with b's bytes in reverse order, used for
// the Curve25519 big-endian/little-endian wire conversion.
func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
