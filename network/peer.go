// Package network wires codec.Message to consensus.CliqueProtocol over raw
// TCP: two passive listeners (peer, RPC) and one active minter loop, all
// scheduled on the fixed-size worker pool from the pool package. Unlike the
// teacher's persistent, length-prefixed peer connections, this protocol is
// one message per TCP connection, terminated by connection close and read
// until end-of-stream with no length prefix (spec §4.4, §6) — every
// exchange here is closer to an RPC call than to a pub/sub session.
package network

import (
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/tolelom/tolvote/codec"
)

// dialTimeout bounds how long an outbound connect attempt waits, so one
// unreachable sealer cannot stall a broadcast indefinitely.
const dialTimeout = 5 * time.Second

// readDeadline bounds how long a single request-reply exchange may take.
const readDeadline = 30 * time.Second

// exchange dials addr, writes the encoded message, half-closes the write
// side, reads the reply until EOF, and decodes it. It is used both by the
// minter's broadcast step and by the RPC listener's broadcast-on-behalf-of
// a client step (spec §4.4).
func exchange(addr string, tlsCfg *tls.Config, msg codec.Message) (codec.Message, error) {
	conn, err := dial(addr, tlsCfg)
	if err != nil {
		return codec.Message{}, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	data, err := codec.Encode(msg)
	if err != nil {
		return codec.Message{}, fmt.Errorf("encode message: %w", err)
	}

	_ = conn.SetDeadline(time.Now().Add(readDeadline))
	if _, err := conn.Write(data); err != nil {
		return codec.Message{}, fmt.Errorf("write to %s: %w", addr, err)
	}
	if closer, ok := conn.(interface{ CloseWrite() error }); ok {
		_ = closer.CloseWrite()
	}

	reply, err := io.ReadAll(conn)
	if err != nil {
		return codec.Message{}, fmt.Errorf("read from %s: %w", addr, err)
	}
	return codec.Decode(reply), nil
}

func dial(addr string, tlsCfg *tls.Config) (net.Conn, error) {
	d := net.Dialer{Timeout: dialTimeout}
	if tlsCfg != nil {
		return tls.DialWithDialer(&d, "tcp", addr, tlsCfg)
	}
	return d.Dial("tcp", addr)
}
