package message

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientHelloRoundTrip(t *testing.T) {
	orig := &ClientHello{
		Version:     ProtocolVersion,
		GroupID:     []byte("123456789"),
		ClientNonce: []byte("0123456789abcdef0123456789abcdef"),
	}

	wire := orig.Serialize()

	hdr, bodyLen, err := ParseClientHelloHeader(wire[:ClientHelloHeaderLen])
	require.NoError(t, err)

	got, err := ParseClientHelloBody(hdr, wire[ClientHelloHeaderLen:ClientHelloHeaderLen+bodyLen])
	require.NoError(t, err)

	assert.Equal(t, uint8(0), got.Version)
	assert.Equal(t, orig.GroupID, got.GroupID)
	assert.Equal(t, orig.ClientNonce, got.ClientNonce)
}

func TestServerKeyExchangeRoundTrip(t *testing.T) {
	orig := &ServerKeyExchange{
		Version:      ProtocolVersion,
		GroupID:      []byte("123456789"),
		ServerNonce:  make([]byte, 32),
		EphemeralKey: make([]byte, 32),
		Signature:    []byte("der-encoded-signature-of-variable-length"),
	}
	for i := range orig.ServerNonce {
		orig.ServerNonce[i] = byte(i)
	}

	wire := orig.Serialize()

	hdr, bodyLen, err := ParseServerKeyExchangeHeader(wire[:ServerKeyExchangeHeaderLen])
	require.NoError(t, err)

	got, err := ParseServerKeyExchangeBody(hdr, wire[ServerKeyExchangeHeaderLen:ServerKeyExchangeHeaderLen+bodyLen])
	require.NoError(t, err)

	assert.Equal(t, orig.GroupID, got.GroupID)
	assert.Equal(t, orig.ServerNonce, got.ServerNonce)
	assert.Equal(t, orig.EphemeralKey, got.EphemeralKey)
	assert.Equal(t, orig.Signature, got.Signature)
}

func TestClientKeyExchangeRoundTrip(t *testing.T) {
	orig := &ClientKeyExchange{
		Version:      ProtocolVersion,
		EphemeralKey: make([]byte, 32),
		Signature:    []byte("another-der-signature"),
	}

	wire := orig.Serialize()

	hdr, bodyLen, err := ParseClientKeyExchangeHeader(wire[:ClientKeyExchangeHeaderLen])
	require.NoError(t, err)

	got, err := ParseClientKeyExchangeBody(hdr, wire[ClientKeyExchangeHeaderLen:ClientKeyExchangeHeaderLen+bodyLen])
	require.NoError(t, err)

	assert.Equal(t, orig.EphemeralKey, got.EphemeralKey)
	assert.Equal(t, orig.Signature, got.Signature)
}

func TestVersionRejection(t *testing.T) {
	wire := []byte{0x01, 0x00, 0x01, 0x00, 0x01, 'a', 'b'}

	_, _, err := ParseClientHelloHeader(wire)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedVersion))
	assert.True(t, errors.Is(err, ErrInvalidMessage))
}

func TestTruncatedHeader(t *testing.T) {
	wire := []byte{0x00, 0x00, 0x01, 0x01}

	_, _, err := ParseClientHelloHeader(wire)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidMessage))
}

func TestBodyLengthMismatch(t *testing.T) {
	wire := []byte{0x00, 0x00, 0x01, 0x00, 0x02, 'a', 'b'}

	hdr, bodyLen, err := ParseClientHelloHeader(wire[:ClientHelloHeaderLen])
	require.NoError(t, err)
	assert.Equal(t, 3, bodyLen)

	_, err = ParseClientHelloBody(hdr, wire[ClientHelloHeaderLen:])
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidMessage))
}

func TestSignatureInputSerialization(t *testing.T) {
	want := []byte("abcdef12345")

	assert.Equal(t, want, ServerSignatureInput([]byte("abcdef"), []byte("12345")))
	assert.Equal(t, want, ClientSignatureInput([]byte("abcdef"), []byte("12345")))
}
