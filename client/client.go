// Package client implements a minimal synchronous client for the
// vault wire protocol, grounded on the teacher's own bufio-over-net.Conn
// framing (server/connection.go) rather than the pack's HTTP clients —
// this protocol has no HTTP envelope to wrap.
package client

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"vaultd/protocol"
)

// Client is a single connection to one vaultd instance. It is not safe
// for concurrent use: spec.md §4.6 scopes the client to serial
// request/response use, with no pipelining or automatic reconnect.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
}

// Dial opens a connection to addr. timeout bounds the TCP handshake
// only; it does not apply to subsequent Send calls.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, reader: bufio.NewReader(conn)}, nil
}

// Close half-closes the write side of a TCP connection, then closes
// the underlying connection.
func (c *Client) Close() error {
	if tc, ok := c.conn.(*net.TCPConn); ok {
		_ = tc.CloseWrite()
	}
	return c.conn.Close()
}

// Set stores key=value, returning an error on anything but OK.
func (c *Client) Set(key, value string) error {
	resp, err := c.send(protocol.Command{Kind: protocol.KindSet, Key: key, Value: value})
	if err != nil {
		return err
	}
	return okOrError(resp)
}

// Get retrieves key. ok is false when the server replied NOT_FOUND.
func (c *Client) Get(key string) (value string, ok bool, err error) {
	resp, err := c.send(protocol.Command{Kind: protocol.KindGet, Key: key})
	if err != nil {
		return "", false, err
	}
	switch resp.Kind {
	case protocol.ResponseValue:
		return resp.Value, true, nil
	case protocol.ResponseNotFound:
		return "", false, nil
	case protocol.ResponseError:
		return "", false, fmt.Errorf("server error: %s", resp.Message)
	default:
		return "", false, fmt.Errorf("unexpected response kind %d", resp.Kind)
	}
}

// Delete removes key, returning an error on anything but OK.
func (c *Client) Delete(key string) error {
	resp, err := c.send(protocol.Command{Kind: protocol.KindDelete, Key: key})
	if err != nil {
		return err
	}
	return okOrError(resp)
}

// send writes one request line and reads the matching response line.
// The protocol has no request id, so this relies on the server's
// per-connection in-order guarantee (spec.md §4.4).
func (c *Client) send(cmd protocol.Command) (protocol.Response, error) {
	line, err := marshalCommand(cmd)
	if err != nil {
		return protocol.Response{}, err
	}
	if _, err := c.conn.Write(line); err != nil {
		return protocol.Response{}, err
	}

	raw, err := c.reader.ReadString('\n')
	if err != nil {
		return protocol.Response{}, err
	}
	return parseResponse(trimLineEnding(raw))
}

func okOrError(resp protocol.Response) error {
	if resp.Kind == protocol.ResponseError {
		return fmt.Errorf("server error: %s", resp.Message)
	}
	if resp.Kind != protocol.ResponseOK {
		return fmt.Errorf("unexpected response kind %d", resp.Kind)
	}
	return nil
}

// marshalCommand renders a Command the same way a hand-typed client
// would: there's no shared encoder with the server since the server
// only ever decodes lines, never produces them.
func marshalCommand(cmd protocol.Command) ([]byte, error) {
	switch cmd.Kind {
	case protocol.KindSet:
		return []byte(protocol.CommandSet + " " + cmd.Key + " " + cmd.Value + "\r\n"), nil
	case protocol.KindGet:
		return []byte(protocol.CommandGet + " " + cmd.Key + "\r\n"), nil
	case protocol.KindDelete:
		return []byte(protocol.CommandDelete + " " + cmd.Key + "\r\n"), nil
	default:
		return nil, fmt.Errorf("unknown command kind %d", cmd.Kind)
	}
}

// parseResponse is the client-side mirror of protocol.Marshal; it
// lives here rather than in the protocol package since the server
// never needs to parse its own responses.
func parseResponse(line string) (protocol.Response, error) {
	switch {
	case line == "OK":
		return protocol.Ok(), nil
	case line == "NOT_FOUND":
		return protocol.NotFound(), nil
	case len(line) >= 6 && line[:6] == "VALUE ":
		return protocol.Val(line[6:]), nil
	case line == "VALUE":
		return protocol.Val(""), nil
	case len(line) >= 6 && line[:6] == "ERROR ":
		return protocol.Err(line[6:]), nil
	case line == "ERROR":
		return protocol.Err(""), nil
	default:
		return protocol.Response{}, fmt.Errorf("malformed response line: %q", line)
	}
}

func trimLineEnding(s string) string {
	n := len(s)
	for n > 0 && (s[n-1] == '\n' || s[n-1] == '\r') {
		n--
	}
	return s[:n]
}
