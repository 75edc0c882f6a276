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

// Package message implements the three XDAA wire messages: ClientHello,
// ServerKeyExchange, and ClientKeyExchange. All fields are big-endian.
// Each message exposes a split parse (ParseHeader then ParseBody) so a
// caller only ever needs to read exactly as many bytes as it needs.
package message

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ProtocolVersion is the only version this codec accepts.
const ProtocolVersion uint8 = 0

// ErrInvalidMessage is returned for any malformed wire message: a header
// shorter than expected, a body length mismatch, or a version other than
// ProtocolVersion. ErrUnsupportedVersion wraps it for the version case so
// callers can distinguish with errors.Is against either sentinel.
var ErrInvalidMessage = errors.New("invalid message")

// ErrUnsupportedVersion is-a ErrInvalidMessage: the version byte in a
// received message was not ProtocolVersion.
var ErrUnsupportedVersion = fmt.Errorf("unsupported version: %w", ErrInvalidMessage)

// ClientHelloHeaderLen is the fixed header size of ClientHelloMessage.
const ClientHelloHeaderLen = 5

// ClientHello is the first message sent by the client: its DAA group id
// and a fresh 32-byte nonce.
type ClientHello struct {
	Version     uint8
	GroupID     []byte
	ClientNonce []byte
}

// ClientHelloHeader is the partial result of ParseClientHelloHeader: the
// declared field lengths, before the body has been read off the wire.
type ClientHelloHeader struct {
	version  uint8
	groupLen uint16
	nonceLen uint16
}

// ParseClientHelloHeader parses the fixed 5-byte header and returns the
// total body length the caller must read next.
func ParseClientHelloHeader(data []byte) (*ClientHelloHeader, int, error) {
	if len(data) < ClientHelloHeaderLen {
		return nil, 0, fmt.Errorf("client hello header: need %d bytes, got %d: %w", ClientHelloHeaderLen, len(data), ErrInvalidMessage)
	}

	version := data[0]
	if version != ProtocolVersion {
		return nil, 0, fmt.Errorf("client hello: version %d: %w", version, ErrUnsupportedVersion)
	}

	groupLen := binary.BigEndian.Uint16(data[1:3])
	nonceLen := binary.BigEndian.Uint16(data[3:5])

	h := &ClientHelloHeader{version: version, groupLen: groupLen, nonceLen: nonceLen}
	return h, int(groupLen) + int(nonceLen), nil
}

// ParseClientHelloBody consumes the body bytes declared by a prior
// ParseClientHelloHeader call and produces the complete message.
func ParseClientHelloBody(h *ClientHelloHeader, body []byte) (*ClientHello, error) {
	want := int(h.groupLen) + int(h.nonceLen)
	if len(body) != want {
		return nil, fmt.Errorf("client hello body: want %d bytes, got %d: %w", want, len(body), ErrInvalidMessage)
	}

	return &ClientHello{
		Version:     h.version,
		GroupID:     append([]byte(nil), body[:h.groupLen]...),
		ClientNonce: append([]byte(nil), body[h.groupLen:]...),
	}, nil
}

// Serialize encodes the message to its wire format.
func (m *ClientHello) Serialize() []byte {
	buf := make([]byte, ClientHelloHeaderLen+len(m.GroupID)+len(m.ClientNonce))
	buf[0] = ProtocolVersion
	binary.BigEndian.PutUint16(buf[1:3], uint16(len(m.GroupID)))
	binary.BigEndian.PutUint16(buf[3:5], uint16(len(m.ClientNonce)))
	n := ClientHelloHeaderLen
	n += copy(buf[n:], m.GroupID)
	copy(buf[n:], m.ClientNonce)
	return buf
}

// ServerKeyExchangeHeaderLen is the fixed header size of ServerKeyExchangeMessage.
const ServerKeyExchangeHeaderLen = 9

// ServerKeyExchange is the server's response: its group id (for the
// client to confirm), a fresh nonce, its ephemeral X25519 public key, and
// a signature over that public key concatenated with the client's nonce.
type ServerKeyExchange struct {
	Version      uint8
	GroupID      []byte
	ServerNonce  []byte
	EphemeralKey []byte
	Signature    []byte
}

// ServerKeyExchangeHeader is the partial result of
// ParseServerKeyExchangeHeader.
type ServerKeyExchangeHeader struct {
	version  uint8
	groupLen uint16
	nonceLen uint16
	keyLen   uint16
	sigLen   uint16
}

// ParseServerKeyExchangeHeader parses the fixed 9-byte header.
func ParseServerKeyExchangeHeader(data []byte) (*ServerKeyExchangeHeader, int, error) {
	if len(data) < ServerKeyExchangeHeaderLen {
		return nil, 0, fmt.Errorf("server key exchange header: need %d bytes, got %d: %w", ServerKeyExchangeHeaderLen, len(data), ErrInvalidMessage)
	}

	version := data[0]
	if version != ProtocolVersion {
		return nil, 0, fmt.Errorf("server key exchange: version %d: %w", version, ErrUnsupportedVersion)
	}

	groupLen := binary.BigEndian.Uint16(data[1:3])
	nonceLen := binary.BigEndian.Uint16(data[3:5])
	keyLen := binary.BigEndian.Uint16(data[5:7])
	sigLen := binary.BigEndian.Uint16(data[7:9])

	h := &ServerKeyExchangeHeader{
		version:  version,
		groupLen: groupLen,
		nonceLen: nonceLen,
		keyLen:   keyLen,
		sigLen:   sigLen,
	}
	return h, int(groupLen) + int(nonceLen) + int(keyLen) + int(sigLen), nil
}

// ParseServerKeyExchangeBody consumes the declared body and produces the
// complete message.
func ParseServerKeyExchangeBody(h *ServerKeyExchangeHeader, body []byte) (*ServerKeyExchange, error) {
	want := int(h.groupLen) + int(h.nonceLen) + int(h.keyLen) + int(h.sigLen)
	if len(body) != want {
		return nil, fmt.Errorf("server key exchange body: want %d bytes, got %d: %w", want, len(body), ErrInvalidMessage)
	}

	off := 0
	groupID := append([]byte(nil), body[off:off+int(h.groupLen)]...)
	off += int(h.groupLen)
	nonce := append([]byte(nil), body[off:off+int(h.nonceLen)]...)
	off += int(h.nonceLen)
	key := append([]byte(nil), body[off:off+int(h.keyLen)]...)
	off += int(h.keyLen)
	sig := append([]byte(nil), body[off:off+int(h.sigLen)]...)

	return &ServerKeyExchange{
		Version:      h.version,
		GroupID:      groupID,
		ServerNonce:  nonce,
		EphemeralKey: key,
		Signature:    sig,
	}, nil
}

// Serialize encodes the message to its wire format.
func (m *ServerKeyExchange) Serialize() []byte {
	buf := make([]byte, ServerKeyExchangeHeaderLen+len(m.GroupID)+len(m.ServerNonce)+len(m.EphemeralKey)+len(m.Signature))
	buf[0] = m.Version
	binary.BigEndian.PutUint16(buf[1:3], uint16(len(m.GroupID)))
	binary.BigEndian.PutUint16(buf[3:5], uint16(len(m.ServerNonce)))
	binary.BigEndian.PutUint16(buf[5:7], uint16(len(m.EphemeralKey)))
	binary.BigEndian.PutUint16(buf[7:9], uint16(len(m.Signature)))
	n := ServerKeyExchangeHeaderLen
	n += copy(buf[n:], m.GroupID)
	n += copy(buf[n:], m.ServerNonce)
	n += copy(buf[n:], m.EphemeralKey)
	copy(buf[n:], m.Signature)
	return buf
}

// ServerSignatureInput builds the byte string the server signs and the
// client verifies: its ephemeral public key followed by the client's nonce.
func ServerSignatureInput(serverEphemeralPublic, clientNonce []byte) []byte {
	return serializeForSignature(serverEphemeralPublic, clientNonce)
}

// ClientKeyExchangeHeaderLen is the fixed header size of ClientKeyExchangeMessage.
const ClientKeyExchangeHeaderLen = 5

// ClientKeyExchange is the client's final message: its ephemeral X25519
// public key and a signature over that key concatenated with the
// server's nonce.
type ClientKeyExchange struct {
	Version      uint8
	EphemeralKey []byte
	Signature    []byte
}

// ClientKeyExchangeHeader is the partial result of
// ParseClientKeyExchangeHeader.
type ClientKeyExchangeHeader struct {
	version uint8
	keyLen  uint16
	sigLen  uint16
}

// ParseClientKeyExchangeHeader parses the fixed 5-byte header.
func ParseClientKeyExchangeHeader(data []byte) (*ClientKeyExchangeHeader, int, error) {
	if len(data) < ClientKeyExchangeHeaderLen {
		return nil, 0, fmt.Errorf("client key exchange header: need %d bytes, got %d: %w", ClientKeyExchangeHeaderLen, len(data), ErrInvalidMessage)
	}

	version := data[0]
	if version != ProtocolVersion {
		return nil, 0, fmt.Errorf("client key exchange: version %d: %w", version, ErrUnsupportedVersion)
	}

	keyLen := binary.BigEndian.Uint16(data[1:3])
	sigLen := binary.BigEndian.Uint16(data[3:5])

	h := &ClientKeyExchangeHeader{version: version, keyLen: keyLen, sigLen: sigLen}
	return h, int(keyLen) + int(sigLen), nil
}

// ParseClientKeyExchangeBody consumes the declared body and produces the
// complete message.
func ParseClientKeyExchangeBody(h *ClientKeyExchangeHeader, body []byte) (*ClientKeyExchange, error) {
	want := int(h.keyLen) + int(h.sigLen)
	if len(body) != want {
		return nil, fmt.Errorf("client key exchange body: want %d bytes, got %d: %w", want, len(body), ErrInvalidMessage)
	}

	key := append([]byte(nil), body[:h.keyLen]...)
	sig := append([]byte(nil), body[h.keyLen:]...)

	return &ClientKeyExchange{
		Version:      h.version,
		EphemeralKey: key,
		Signature:    sig,
	}, nil
}

// Serialize encodes the message to its wire format.
func (m *ClientKeyExchange) Serialize() []byte {
	buf := make([]byte, ClientKeyExchangeHeaderLen+len(m.EphemeralKey)+len(m.Signature))
	buf[0] = ProtocolVersion
	binary.BigEndian.PutUint16(buf[1:3], uint16(len(m.EphemeralKey)))
	binary.BigEndian.PutUint16(buf[3:5], uint16(len(m.Signature)))
	n := ClientKeyExchangeHeaderLen
	n += copy(buf[n:], m.EphemeralKey)
	copy(buf[n:], m.Signature)
	return buf
}

// ClientSignatureInput builds the byte string the client signs and the
// server verifies: its ephemeral public key followed by the server's
// nonce. The original source's equivalent method referenced an undefined
// name; this implements the unambiguous intended concatenation.
func ClientSignatureInput(clientEphemeralPublic, serverNonce []byte) []byte {
	return serializeForSignature(clientEphemeralPublic, serverNonce)
}

func serializeForSignature(ephemeralPublic, nonce []byte) []byte {
	buf := make([]byte, 0, len(ephemeralPublic)+len(nonce))
	buf = append(buf, ephemeralPublic...)
	buf = append(buf, nonce...)
	return buf
}
