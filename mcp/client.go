// Package mcp implements the minimal JSON-RPC-over-stdio protocol the
// tool-invocation vision backend speaks with its helper subprocess. The
// subprocess lifecycle (spawn, handshake, round trip, terminate) is
// hidden behind a single blocking CallTool interface.
package mcp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

const protocolVersion = "0.1.0"

// ErrTimeout marks a round trip the helper never answered. Callers can
// distinguish it from a crash with errors.Is.
var ErrTimeout = errors.New("helper timed out")

// HelperError wraps failures to start, reach, or keep the helper
// subprocess alive.
type HelperError struct {
	Err error
}

func (e *HelperError) Error() string { return fmt.Sprintf("helper process: %v", e.Err) }
func (e *HelperError) Unwrap() error { return e.Err }

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      *int64 `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type toolResult struct {
	Content []contentItem `json:"content"`
}

type contentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// conn carries line-delimited JSON-RPC over a pair of streams. Split
// from Client so the protocol is testable without a real subprocess.
type conn struct {
	w      io.Writer
	r      *bufio.Reader
	nextID int64
}

func newConn(w io.Writer, r io.Reader) *conn {
	return &conn{w: w, r: bufio.NewReaderSize(r, 1<<20)}
}

func (c *conn) send(msg request) error {
	line, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	line = append(line, '\n')
	_, err = c.w.Write(line)
	return err
}

// roundTrip sends a request and blocks until the matching response
// arrives or the timeout elapses. Out-of-band notifications from the
// helper are skipped.
func (c *conn) roundTrip(method string, params any, timeout time.Duration) (json.RawMessage, error) {
	c.nextID++
	id := c.nextID
	if err := c.send(request{JSONRPC: "2.0", ID: &id, Method: method, Params: params}); err != nil {
		return nil, fmt.Errorf("write %s: %w", method, err)
	}

	type readResult struct {
		resp response
		err  error
	}
	ch := make(chan readResult, 1)
	go func() {
		for {
			line, err := c.r.ReadBytes('\n')
			if err != nil {
				ch <- readResult{err: fmt.Errorf("helper closed connection: %w", err)}
				return
			}
			var resp response
			if err := json.Unmarshal(line, &resp); err != nil {
				ch <- readResult{err: fmt.Errorf("invalid JSON from helper: %w", err)}
				return
			}
			if resp.ID == nil || *resp.ID != id {
				continue
			}
			ch <- readResult{resp: resp}
			return
		}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		if r.resp.Error != nil {
			return nil, fmt.Errorf("helper error %d: %s", r.resp.Error.Code, r.resp.Error.Message)
		}
		return r.resp.Result, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("no response to %s within %s: %w", method, timeout, ErrTimeout)
	}
}

func (c *conn) notify(method string, params any) error {
	return c.send(request{JSONRPC: "2.0", Method: method, Params: params})
}

// initialize performs the protocol handshake on an established conn.
func (c *conn) initialize(clientName, clientVersion string, timeout time.Duration) error {
	_, err := c.roundTrip("initialize", map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]string{"name": clientName, "version": clientVersion},
	}, timeout)
	if err != nil {
		return err
	}
	return c.notify("notifications/initialized", nil)
}

// callTool invokes one tool and extracts the concatenated text content.
func (c *conn) callTool(name string, arguments map[string]any, timeout time.Duration) (string, error) {
	raw, err := c.roundTrip("tools/call", map[string]any{
		"name":      name,
		"arguments": arguments,
	}, timeout)
	if err != nil {
		return "", err
	}
	var result toolResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("unexpected tool result: %w", err)
	}
	text := ""
	for _, item := range result.Content {
		if item.Type != "text" {
			continue
		}
		if text != "" {
			text += "\n"
		}
		text += item.Text
	}
	return text, nil
}

// Client owns a helper subprocess for the duration of one invocation.
type Client struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	conn    *conn
	timeout time.Duration
}

// Dial spawns the helper command with extra environment variables and
// performs the initialization handshake. The returned Client must be
// closed on every exit path.
func Dial(command []string, env map[string]string, timeout time.Duration) (*Client, error) {
	if len(command) == 0 {
		return nil, &HelperError{Err: fmt.Errorf("empty helper command")}
	}
	cmd := exec.Command(command[0], command[1:]...)
	cmd.Env = os.Environ()
	for name, value := range env {
		cmd.Env = append(cmd.Env, name+"="+value)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &HelperError{Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &HelperError{Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &HelperError{Err: err}
	}

	client := &Client{
		cmd:     cmd,
		stdin:   stdin,
		conn:    newConn(stdin, stdout),
		timeout: timeout,
	}
	if err := client.conn.initialize("snag", "1.0", timeout); err != nil {
		client.Close()
		return nil, &HelperError{Err: err}
	}
	return client, nil
}

// CallTool performs one blocking tool invocation.
func (c *Client) CallTool(name string, arguments map[string]any) (string, error) {
	text, err := c.conn.callTool(name, arguments, c.timeout)
	if err != nil {
		return "", &HelperError{Err: err}
	}
	return text, nil
}

// Close terminates the helper, gracefully first, then hard.
func (c *Client) Close() error {
	if c.cmd == nil || c.cmd.Process == nil {
		return nil
	}
	_ = c.stdin.Close()

	done := make(chan error, 1)
	go func() { done <- c.cmd.Wait() }()
	select {
	case <-done:
		return nil
	case <-time.After(5 * time.Second):
		_ = c.cmd.Process.Kill()
		<-done
		return nil
	}
}
