package tlsinspect

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/theopenlane/shieldphish/internal/types"
)

const (
	// DefaultPort is the port dialed for TLS
	DefaultPort = "443"
	// DefaultTimeout bounds a single inspection including the handshake
	DefaultTimeout = 8 * time.Second
)

const (
	msgNotSecure    = "Site is not secure (does not use HTTPS)."
	msgNoCert       = "No certificate details found. The certificate may be self-signed or invalid."
	msgExpired      = "Certificate has expired."
	msgUntrusted    = "Certificate is not trusted by a recognized Certificate Authority (e.g., self-signed)."
	msgTimeout      = "Request for SSL details timed out."
	msgHostMismatch = "Hostname mismatch. The certificate is not valid for %s."
)

// DialFunc opens the raw connection the TLS handshake runs over
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Inspector reads a host's TLS certificate and judges its trustworthiness
type Inspector struct {
	port    string
	timeout time.Duration
	rootCAs *x509.CertPool
	dial    DialFunc
	now     func() time.Time
}

// Option configures an Inspector
type Option func(*Inspector)

// WithPort overrides the dialed port
func WithPort(port string) Option {
	return func(i *Inspector) {
		i.port = port
	}
}

// WithTimeout sets the inspection timeout
func WithTimeout(timeout time.Duration) Option {
	return func(i *Inspector) {
		if timeout > 0 {
			i.timeout = timeout
		}
	}
}

// WithRootCAs replaces the system root pool used for chain verification
func WithRootCAs(pool *x509.CertPool) Option {
	return func(i *Inspector) {
		i.rootCAs = pool
	}
}

// WithDialer replaces the network dialer
func WithDialer(dial DialFunc) Option {
	return func(i *Inspector) {
		i.dial = dial
	}
}

// WithClock sets the time source used for validity checks
func WithClock(now func() time.Time) Option {
	return func(i *Inspector) {
		i.now = now
	}
}

// New creates an Inspector
func New(opts ...Option) *Inspector {
	dialer := &net.Dialer{}

	i := &Inspector{
		port:    DefaultPort,
		timeout: DefaultTimeout,
		dial:    dialer.DialContext,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// NotSecure is the fixed assessment used for targets that do not use HTTPS
func NotSecure() types.SSLAssessment {
	return types.SSLAssessment{Valid: false, Error: msgNotSecure}
}

// Inspect connects to hostname, verifies its certificate chain and reports the outcome.
// Failures are folded into the returned assessment rather than returned as errors
func (i *Inspector) Inspect(ctx context.Context, hostname string) types.SSLAssessment {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	cert, err := i.handshake(ctx, hostname)
	if err != nil {
		log.Debug().Err(err).Str("hostname", hostname).Msg("tls inspection failed")

		return types.SSLAssessment{Valid: false, Error: describe(err, hostname)}
	}

	if cert == nil {
		return types.SSLAssessment{Valid: false, Error: msgNoCert}
	}

	validFrom := cert.NotBefore
	validTo := cert.NotAfter

	assessment := types.SSLAssessment{
		Subject:   cert.Subject.String(),
		Issuer:    cert.Issuer.String(),
		ValidFrom: &validFrom,
		ValidTo:   &validTo,
	}

	if validTo.Before(i.now()) {
		assessment.Error = msgExpired

		return assessment
	}

	assessment.Valid = true

	return assessment
}

func (i *Inspector) handshake(ctx context.Context, hostname string) (*x509.Certificate, error) {
	conn, err := i.dial(ctx, "tcp", net.JoinHostPort(hostname, i.port))
	if err != nil {
		return nil, err
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	tlsConn := tls.Client(conn, &tls.Config{
		ServerName: hostname,
		RootCAs:    i.rootCAs,
		Time:       i.now,
		MinVersion: tls.VersionTLS10,
	})
	defer tlsConn.Close() //nolint:errcheck // inspection connection close error is non-critical

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, err
	}

	peers := tlsConn.ConnectionState().PeerCertificates
	if len(peers) == 0 {
		return nil, nil
	}

	return peers[0], nil
}

// describe maps a handshake failure to its user-facing explanation
func describe(err error, hostname string) string {
	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return msgUntrusted
	}

	var hostnameErr x509.HostnameError
	if errors.As(err, &hostnameErr) {
		return fmt.Sprintf(msgHostMismatch, hostname)
	}

	var invalid x509.CertificateInvalidError
	if errors.As(err, &invalid) && invalid.Reason == x509.Expired {
		return msgExpired
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return msgTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return msgTimeout
	}

	return err.Error()
}
