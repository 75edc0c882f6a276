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

// Package handshake implements the client-side XDAA protocol state
// machine. The engine is a pure transition function: given the result of
// the last effect it asked for, it returns the next effect request (or
// the terminal secret). It performs no I/O and calls no cryptography
// directly; every side effect crosses the boundary as an effect.Request/
// effect.Result value, dispatched by a driver (see Run).
package handshake

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/xaptum/xdaa/daa"
	"github.com/xaptum/xdaa/effect"
	"github.com/xaptum/xdaa/internal/logger"
	"github.com/xaptum/xdaa/internal/metrics"
	"github.com/xaptum/xdaa/message"
)

// step names the effect result the engine is currently waiting to
// consume. It is finer-grained than the six named protocol states:
// InitContext, ReceiveServerKeyExchange, and SendClientKeyExchange each
// unroll into several steps here, one per effect round trip, matching
// their sub-phase order exactly.
type step int

const (
	stepAfterDecodeServerGroupPublicKey step = iota
	stepAfterDecodeClientGroupPrivateKey
	stepAfterClientNonce
	stepAfterClientEphemeralKey
	stepAfterClientHelloWrite
	stepAfterServerKeyExchangeHeader
	stepAfterServerKeyExchangeBody
	stepAfterServerSignatureVerify
	stepAfterServerEphemeralDecode
	stepAfterClientEphemeralEncode
	stepAfterClientSignature
	stepAfterClientKeyExchangeWrite
	stepAfterSharedSecret
	stepTerminal
)

// stageLabel groups a step back under the named protocol state it
// belongs to, for metrics and log fields.
func (s step) stageLabel() string {
	switch {
	case s <= stepAfterClientEphemeralKey:
		return "init_context"
	case s == stepAfterClientHelloWrite:
		return "send_client_hello"
	case s <= stepAfterServerEphemeralDecode:
		return "receive_server_key_exchange"
	case s <= stepAfterClientKeyExchangeWrite:
		return "send_client_key_exchange"
	case s == stepAfterSharedSecret:
		return "compute_shared_secret"
	default:
		return "terminal"
	}
}

// context is the handshake's mutable scratchpad, populated progressively
// as the engine advances. Each field is written at most once.
type context struct {
	daaGroup *daa.Keys

	clientNonce               []byte
	serverNonce               []byte
	clientGroupPrivateKey     effect.GroupPrivateKey
	serverGroupPublicKey      effect.GroupPublicKey
	clientEphemeralPrivateKey effect.EphemeralPrivateKey
	serverEphemeralPublicKey  effect.EphemeralPublicKey
	sharedSecret              []byte

	// transient state for ReceiveServerKeyExchange's split parse
	pendingHeader *message.ServerKeyExchangeHeader
	serverMessage *message.ServerKeyExchange

	// transient state for SendClientKeyExchange
	clientEncodedPublicKey []byte
	clientSignature        []byte
}

// Engine is the client-side XDAA handshake state machine. It is driven
// by Start and Feed; it is not safe for concurrent use, and a single
// instance negotiates exactly one handshake.
type Engine struct {
	id             string
	step           step
	ctx            *context
	log            logger.Logger
	done           bool
	stageStartedAt time.Time
}

// New constructs an engine for the given DAA key bundle. The caller must
// call Start to obtain the first effect request.
func New(keys *daa.Keys) *Engine {
	id := uuid.NewString()
	return &Engine{
		ctx:  &context{daaGroup: keys},
		id:   id,
		log:  logger.GetDefaultLogger().WithFields(logger.String("handshake_id", id)),
	}
}

// Start returns the engine's first effect request. It must be called
// exactly once, before any call to Feed.
func (e *Engine) Start() (effect.Request, error) {
	metrics.HandshakesInitiated.WithLabelValues("client").Inc()
	e.log.Debug("handshake started", logger.String("stage", e.step.stageLabel()))
	e.stageStartedAt = time.Now()
	e.step = stepAfterDecodeServerGroupPublicKey
	return effect.GroupDecodePublicKey(e.ctx.daaGroup.ServerPublicKeyHex), nil
}

// SharedSecret returns the negotiated 32-byte secret. It is only valid
// after Feed has returned a request of Kind effect.KindTerminated.
func (e *Engine) SharedSecret() []byte {
	return e.ctx.sharedSecret
}

// Done reports whether the engine has reached its terminal state.
func (e *Engine) Done() bool {
	return e.done
}

// Feed advances the engine with the result of the request it last
// returned, and returns the next request. Once Feed returns a request of
// Kind effect.KindTerminated, the handshake is over and SharedSecret
// holds the negotiated secret; calling Feed again returns ErrTerminated.
func (e *Engine) Feed(result effect.Result) (effect.Request, error) {
	if e.done {
		return effect.Request{}, ErrTerminated
	}

	prevStage := e.step.stageLabel()

	req, err := e.transition(result)
	if err != nil {
		e.done = true
		metrics.HandshakesFailed.WithLabelValues(errorKindLabel(err)).Inc()
		e.log.Error("handshake failed", logger.Error(err), logger.String("stage", e.step.stageLabel()))
		return effect.Request{}, err
	}

	if newStage := e.step.stageLabel(); newStage != prevStage {
		metrics.HandshakeDuration.WithLabelValues(prevStage).Observe(time.Since(e.stageStartedAt).Seconds())
		e.stageStartedAt = time.Now()
	}

	if req.Kind == effect.KindTerminated {
		e.done = true
		metrics.HandshakesCompleted.WithLabelValues("success").Inc()
		e.log.Debug("handshake complete")
	}

	return req, nil
}

// transition is the engine's sole (state, result) -> (state, request)
// step, one case per effect round trip in the order InitContext,
// SendClientHello, ReceiveServerKeyExchange, SendClientKeyExchange,
// ComputeSharedSecret describe them.
func (e *Engine) transition(result effect.Result) (effect.Request, error) {
	switch e.step {

	case stepAfterDecodeServerGroupPublicKey:
		e.ctx.serverGroupPublicKey = result.GroupPublic
		e.step = stepAfterDecodeClientGroupPrivateKey
		return effect.GroupDecodePrivateKey(e.ctx.daaGroup.ClientPrivateKeyHex), nil

	case stepAfterDecodeClientGroupPrivateKey:
		e.ctx.clientGroupPrivateKey = result.GroupPrivate
		e.step = stepAfterClientNonce
		return effect.CreateNonce(32), nil

	case stepAfterClientNonce:
		e.ctx.clientNonce = result.Nonce
		e.step = stepAfterClientEphemeralKey
		return effect.EphemeralCreateKey(), nil

	case stepAfterClientEphemeralKey:
		e.ctx.clientEphemeralPrivateKey = result.EphemeralKeyPair
		return e.sendClientHello()

	case stepAfterClientHelloWrite:
		e.step = stepAfterServerKeyExchangeHeader
		return effect.DataRead(message.ServerKeyExchangeHeaderLen), nil

	case stepAfterServerKeyExchangeHeader:
		return e.parseServerKeyExchangeHeader(result.ReadData)

	case stepAfterServerKeyExchangeBody:
		return e.parseAndValidateServerKeyExchangeBody(result.ReadData)

	case stepAfterServerSignatureVerify:
		return e.processServerSignature(result)

	case stepAfterServerEphemeralDecode:
		e.ctx.serverEphemeralPublicKey = result.EphemeralPublic
		e.step = stepAfterClientEphemeralEncode
		return effect.EphemeralEncodePublicKey(e.ctx.clientEphemeralPrivateKey), nil

	case stepAfterClientEphemeralEncode:
		e.ctx.clientEncodedPublicKey = result.EncodedPublicKey
		sigBuffer := message.ClientSignatureInput(e.ctx.clientEncodedPublicKey, e.ctx.serverNonce)
		e.step = stepAfterClientSignature
		return effect.GroupSHA256SignData(e.ctx.clientGroupPrivateKey, sigBuffer), nil

	case stepAfterClientSignature:
		e.ctx.clientSignature = result.Signature
		return e.sendClientKeyExchange()

	case stepAfterClientKeyExchangeWrite:
		e.step = stepAfterSharedSecret
		return effect.EphemeralComputeSharedSecret(e.ctx.clientEphemeralPrivateKey, e.ctx.serverEphemeralPublicKey), nil

	case stepAfterSharedSecret:
		e.ctx.sharedSecret = result.SharedSecret
		e.step = stepTerminal
		return effect.Terminated(e.ctx.sharedSecret), nil

	default:
		return effect.Request{}, ErrTerminated
	}
}

// sendClientHello builds and issues the ClientHello write. It is
// InitContext's last step and SendClientHello's entire body, delivered
// in the same tick since no external effect separates them.
func (e *Engine) sendClientHello() (effect.Request, error) {
	msg := &message.ClientHello{
		Version:     message.ProtocolVersion,
		GroupID:     e.ctx.daaGroup.GroupID,
		ClientNonce: e.ctx.clientNonce,
	}
	wire := msg.Serialize()
	metrics.MessagesCodec.WithLabelValues("client_hello", "serialize", "success").Inc()
	metrics.MessageSize.WithLabelValues("client_hello").Observe(float64(len(wire)))
	e.step = stepAfterClientHelloWrite
	return effect.DataWrite(wire), nil
}

func (e *Engine) parseServerKeyExchangeHeader(header []byte) (effect.Request, error) {
	h, bodyLen, err := message.ParseServerKeyExchangeHeader(header)
	if err != nil {
		metrics.MessagesCodec.WithLabelValues("server_key_exchange", "parse_header", "failure").Inc()
		return effect.Request{}, err
	}
	metrics.MessagesCodec.WithLabelValues("server_key_exchange", "parse_header", "success").Inc()

	e.ctx.pendingHeader = h
	e.step = stepAfterServerKeyExchangeBody
	return effect.DataRead(bodyLen), nil
}

// parseAndValidateServerKeyExchangeBody parses the body, then performs
// the two non-effect checks (version, group id) before issuing the
// signature verification effect.
func (e *Engine) parseAndValidateServerKeyExchangeBody(body []byte) (effect.Request, error) {
	msg, err := message.ParseServerKeyExchangeBody(e.ctx.pendingHeader, body)
	if err != nil {
		metrics.MessagesCodec.WithLabelValues("server_key_exchange", "parse_body", "failure").Inc()
		return effect.Request{}, err
	}
	metrics.MessagesCodec.WithLabelValues("server_key_exchange", "parse_body", "success").Inc()
	e.ctx.pendingHeader = nil

	if msg.Version != message.ProtocolVersion {
		return effect.Request{}, fmt.Errorf("server key exchange: version %d: %w", msg.Version, message.ErrUnsupportedVersion)
	}
	if !bytesEqual(msg.GroupID, e.ctx.daaGroup.GroupID) {
		return effect.Request{}, fmt.Errorf("server key exchange: group %q != %q: %w", msg.GroupID, e.ctx.daaGroup.GroupID, ErrIncorrectGroup)
	}

	e.ctx.serverMessage = msg
	sigInput := message.ServerSignatureInput(msg.EphemeralKey, e.ctx.clientNonce)
	e.step = stepAfterServerSignatureVerify
	return effect.GroupSHA256VerifySignature(e.ctx.serverGroupPublicKey, sigInput, msg.Signature), nil
}

func (e *Engine) processServerSignature(result effect.Result) (effect.Request, error) {
	if !result.Verified {
		return effect.Request{}, ErrInvalidSignature
	}

	e.ctx.serverNonce = e.ctx.serverMessage.ServerNonce
	encoded := e.ctx.serverMessage.EphemeralKey
	e.ctx.serverMessage = nil
	e.step = stepAfterServerEphemeralDecode
	return effect.EphemeralDecodePublicKey(encoded), nil
}

func (e *Engine) sendClientKeyExchange() (effect.Request, error) {
	msg := &message.ClientKeyExchange{
		Version:      message.ProtocolVersion,
		EphemeralKey: e.ctx.clientEncodedPublicKey,
		Signature:    e.ctx.clientSignature,
	}
	wire := msg.Serialize()
	metrics.MessagesCodec.WithLabelValues("client_key_exchange", "serialize", "success").Inc()
	metrics.MessageSize.WithLabelValues("client_key_exchange").Observe(float64(len(wire)))
	e.step = stepAfterClientKeyExchangeWrite
	return effect.DataWrite(wire), nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// errorKindLabel classifies an error for the handshakes_failed metric
// without exposing error message content as a label value.
func errorKindLabel(err error) string {
	switch {
	case errors.Is(err, ErrIncorrectGroup):
		return "incorrect_group"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, message.ErrUnsupportedVersion):
		return "unsupported_version"
	case errors.Is(err, message.ErrInvalidMessage):
		return "invalid_message"
	default:
		return "other"
	}
}
