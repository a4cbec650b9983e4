package mcpquic

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/quic-go/quic-go"
)

const (
	// ALPNProtocolMCP is the TLS ALPN token negotiated for MCP sessions.
	ALPNProtocolMCP = "mcp-quic-v1"

	// MagicBytesMCP is written by the client as the first bytes of the
	// stream, so a server can reject non-MCP traffic before parsing JSON.
	MagicBytesMCP = "MCP1"

	// MaxMessageSize bounds a single JSON-RPC message.
	MaxMessageSize = 10 * 1024 * 1024

	DefaultIdleTimeout = 5 * time.Minute
	DefaultKeepAlive   = 30 * time.Second
)

// Application-level error codes sent in CONNECTION_CLOSE / RESET_STREAM
// frames.
const (
	ConnErrorNoError           quic.ApplicationErrorCode = 0x00
	ConnErrorUnsupportedALPN   quic.ApplicationErrorCode = 0x02
	ConnErrorProtocolViolation quic.ApplicationErrorCode = 0x03

	StreamErrorProtocolConfusion quic.StreamErrorCode = 0x10
)

var (
	ErrInvalidMagicBytes = errors.New("mcpquic: invalid magic bytes")
	ErrUnsupportedALPN   = errors.New("mcpquic: unsupported ALPN protocol")
	ErrConnectionClosed  = errors.New("mcpquic: connection closed")
)

// ConnectionError wraps a transport failure with the peer address and the
// application error code that was (or would be) sent on the wire.
type ConnectionError struct {
	RemoteAddr string
	Code       quic.ApplicationErrorCode
	Err        error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("mcpquic: %s (code 0x%02x): %v", e.RemoteAddr, uint64(e.Code), e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// SendMagicBytes writes the protocol preamble to w.
func SendMagicBytes(w io.Writer) error {
	if _, err := io.WriteString(w, MagicBytesMCP); err != nil {
		return fmt.Errorf("mcpquic: send magic bytes: %w", err)
	}
	return nil
}

// ValidateMagicBytes reads and checks the protocol preamble from r.
func ValidateMagicBytes(r io.Reader) error {
	buf := make([]byte, len(MagicBytesMCP))
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMagicBytes, err)
	}
	if string(buf) != MagicBytesMCP {
		return fmt.Errorf("%w: got %q", ErrInvalidMagicBytes, buf)
	}
	return nil
}

// ProductionQUICConfig returns the QUIC settings used on both ends:
// bounded idle timeout, keepalives, no 0-RTT.
func ProductionQUICConfig() *quic.Config {
	return &quic.Config{
		MaxIdleTimeout:  DefaultIdleTimeout,
		KeepAlivePeriod: DefaultKeepAlive,
		Allow0RTT:       false,
	}
}

// ServerTLSConfig loads a certificate pair for the MCP listener.
func ServerTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("mcpquic: load keypair: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{ALPNProtocolMCP},
		MinVersion:   tls.VersionTLS13,
	}, nil
}

// SelfSignedTLSConfig generates an ephemeral self-signed certificate for
// development and testing. Clients must use ClientTLSConfig(true) to accept
// it.
func SelfSignedTLSConfig() (*tls.Config, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("mcpquic: generate key: %w", err)
	}

	tmpl := x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: "mcpquic-dev"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("mcpquic: create certificate: %w", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{{
			Certificate: [][]byte{der},
			PrivateKey:  key,
		}},
		NextProtos: []string{ALPNProtocolMCP},
		MinVersion: tls.VersionTLS13,
	}, nil
}

// ClientTLSConfig returns the client-side TLS settings. insecure skips
// server certificate verification (self-signed development servers only).
func ClientTLSConfig(insecure bool) *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: insecure,
		NextProtos:         []string{ALPNProtocolMCP},
		MinVersion:         tls.VersionTLS13,
	}
}

// H3TLSConfig clones base with the ALPN replaced by "h3", for sharing one
// certificate between MCP and HTTP/3 listeners on the same host.
func H3TLSConfig(base *tls.Config) *tls.Config {
	cfg := base.Clone()
	cfg.NextProtos = []string{"h3"}
	return cfg
}
