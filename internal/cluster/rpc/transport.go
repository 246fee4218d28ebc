package rpc

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/quic-go/quic-go"

	"github.com/prismsearch/prism/internal/obs"
	"github.com/prismsearch/prism/internal/perr"
)

// nextProto is the ALPN identifier prism nodes negotiate over QUIC.
const nextProto = "prism-rpc/1"

// ServerTLS names the certificate and key files a QUIC server endpoint is
// built from (spec §4.10: "server builds an endpoint from certificate and
// key files").
type ServerTLS struct {
	CertPath string
	KeyPath  string
}

func (c ServerTLS) config() (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(c.CertPath, c.KeyPath)
	if err != nil {
		return nil, perr.Wrap(perr.KindTLS, "load server certificate", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{nextProto},
	}, nil
}

// ListenAndServe opens a QUIC listener on bindAddr and serves handler on
// every stream of every accepted connection until ctx is cancelled (spec
// §4.10: "multiplexes many RPCs over one connection"). It returns nil on a
// clean shutdown (ctx cancellation) and a transport error otherwise.
func ListenAndServe(ctx context.Context, bindAddr string, tlsCfg ServerTLS, handler Handler) error {
	tc, err := tlsCfg.config()
	if err != nil {
		return err
	}
	listener, err := quic.ListenAddr(bindAddr, tc, nil)
	if err != nil {
		return perr.Wrap(perr.KindTransport, "listen quic", err)
	}
	defer listener.Close()

	for {
		conn, err := listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return perr.Wrap(perr.KindTransport, "accept quic connection", err)
		}
		go serveConn(ctx, conn, handler)
	}
}

// serveConn dispatches every stream the peer opens on conn to Serve,
// concurrently — one QUIC connection carries many independent RPCs.
func serveConn(ctx context.Context, conn *quic.Conn, handler Handler) {
	for {
		stream, err := conn.AcceptStream(ctx)
		if err != nil {
			return
		}
		go func() {
			defer stream.Close()
			_ = Serve(ctx, stream, handler)
		}()
	}
}

// ClientTLS controls how a client verifies the server's certificate (spec
// §4.10, §6): against CACertPath's CA set, the OS trust store when
// CACertPath is empty, or not at all when InsecureSkipVerify is set — which
// must be logged as a warning.
type ClientTLS struct {
	ServerName         string
	CACertPath         string
	InsecureSkipVerify bool
}

func (c ClientTLS) config(ctx context.Context, log *obs.Logger) (*tls.Config, error) {
	tc := &tls.Config{ServerName: c.ServerName, NextProtos: []string{nextProto}}

	if c.InsecureSkipVerify {
		if log != nil {
			log.Warn(ctx, "quic client certificate verification disabled (insecure mode)")
		}
		tc.InsecureSkipVerify = true
		return tc, nil
	}

	if c.CACertPath == "" {
		// Leave RootCAs nil: crypto/tls falls back to the OS trust store.
		return tc, nil
	}

	pem, err := os.ReadFile(c.CACertPath)
	if err != nil {
		return nil, perr.Wrap(perr.KindTLS, "read ca certificate", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, perr.New(perr.KindTLS, "ca certificate file has no usable certificates")
	}
	tc.RootCAs = pool
	return tc, nil
}

// Dial opens a QUIC connection to addr, opens one stream on it, and runs
// the rpc.Client version handshake over that stream. The caller owns the
// returned connection and should close it once every Client built from its
// streams is done.
func Dial(ctx context.Context, addr string, tlsCfg ClientTLS, log *obs.Logger) (*Client, *quic.Conn, error) {
	tc, err := tlsCfg.config(ctx, log)
	if err != nil {
		return nil, nil, err
	}
	conn, err := quic.DialAddr(ctx, addr, tc, nil)
	if err != nil {
		return nil, nil, perr.Wrap(perr.KindTransport, "dial quic", err)
	}

	client, err := OpenClientStream(ctx, conn)
	if err != nil {
		conn.CloseWithError(0, "handshake failed")
		return nil, nil, err
	}
	return client, conn, nil
}

// OpenClientStream opens a fresh stream on an already-dialed connection and
// runs the version handshake, matching QUIC's cheap per-request stream
// model (spec §4.10): callers needing concurrent in-flight requests call
// this once per request rather than sharing one Client.
func OpenClientStream(ctx context.Context, conn *quic.Conn) (*Client, error) {
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return nil, perr.Wrap(perr.KindTransport, "open quic stream", err)
	}
	return NewClient(stream)
}
