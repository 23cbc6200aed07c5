package fingerprint

import (
	"context"
	"net"

	utls "github.com/refraction-networking/utls"
)

// DialTLS establishes a TLS connection whose ClientHello matches the Chrome
// build the profiles claim. Go's crypto/tls hello is itself a known
// automation fingerprint, so the HTTP fetch path must not use it.
func DialTLS(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	tlsConn := utls.UClient(rawConn, &utls.Config{
		ServerName: host,
	}, utls.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}
