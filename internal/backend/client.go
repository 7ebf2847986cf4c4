// SPDX-License-Identifier: Apache-2.0

// Package backend implements the framed JSON channel to the analysis
// backend: newline-delimited request/response pairs over a single TCP
// connection.
package backend

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"
)

// request is one command frame sent to the backend.
type request struct {
	ID      int                    `json:"id"`
	Command string                 `json:"command"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// response is one result frame received from the backend.
type response struct {
	ID      int         `json:"id"`
	Success bool        `json:"success"`
	Result  interface{} `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Client is a synchronous backend connection. Calls are serialized
// internally; it is safe for use from multiple goroutines.
type Client struct {
	mu         sync.Mutex
	addr       string
	conn       net.Conn
	reader     *bufio.Reader
	retries    int
	retryDelay time.Duration
	nextID     int
}

// NewClient creates a client for the backend at host:port. The connection
// is established lazily on the first call.
func NewClient(host string, port int, retries int, retryDelay time.Duration) *Client {
	if retries < 1 {
		retries = 1
	}
	return &Client{
		addr:       fmt.Sprintf("%s:%d", host, port),
		retries:    retries,
		retryDelay: retryDelay,
	}
}

// Connect establishes the TCP connection, retrying up to the configured
// attempt count.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *Client) connectLocked() error {
	if c.conn != nil {
		return nil
	}

	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		conn, err := net.Dial("tcp", c.addr)
		if err == nil {
			c.conn = conn
			c.reader = bufio.NewReader(conn)
			return nil
		}
		lastErr = err
		time.Sleep(c.retryDelay)
	}
	return fmt.Errorf("failed to connect to backend at %s: %w", c.addr, lastErr)
}

// Close tears down the connection. Subsequent calls reconnect.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Client) closeLocked() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	return err
}

// Call sends one command and waits for its response. A transport failure
// drops the connection; the next call reconnects.
func (c *Client) Call(command string, params map[string]interface{}) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connectLocked(); err != nil {
		return nil, err
	}

	c.nextID++
	req := request{ID: c.nextID, Command: command, Params: params}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("error encoding command '%s': %w", command, err)
	}
	data = append(data, '\n')

	if _, err := c.conn.Write(data); err != nil {
		c.closeLocked()
		return nil, fmt.Errorf("error sending command '%s': %w", command, err)
	}

	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		c.closeLocked()
		return nil, fmt.Errorf("error reading response for '%s': %w", command, err)
	}

	var resp response
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("error decoding response for '%s': %w", command, err)
	}

	if !resp.Success {
		if resp.Error == "" {
			resp.Error = "unknown backend error"
		}
		return nil, fmt.Errorf("backend error for '%s': %s", command, resp.Error)
	}

	return resp.Result, nil
}

// Ping checks backend liveness.
func (c *Client) Ping() error {
	_, err := c.Call("ping", nil)
	return err
}

// ExecuteScript runs a script on the backend and returns its output.
func (c *Client) ExecuteScript(script string) (interface{}, error) {
	return c.Call("evaluate_lua", map[string]interface{}{"script": script})
}

// ReadMemory reads size bytes at address.
func (c *Client) ReadMemory(address string, size int) (interface{}, error) {
	return c.Call("read_memory", map[string]interface{}{
		"address": address,
		"size":    size,
	})
}

// WriteMemory writes bytes at address.
func (c *Client) WriteMemory(address string, data string) (interface{}, error) {
	return c.Call("write_memory", map[string]interface{}{
		"address": address,
		"data":    data,
	})
}

// ScanMemory performs a value scan across all scannable regions.
func (c *Client) ScanMemory(value string, scanType string) (interface{}, error) {
	params := map[string]interface{}{"value": value}
	if scanType != "" {
		params["scan_type"] = scanType
	}
	return c.Call("scan_all", params)
}

// EnumProcesses lists processes visible to the backend.
func (c *Client) EnumProcesses() (interface{}, error) {
	return c.Call("enum_processes", nil)
}

// AttachProcess attaches the backend to a target process.
func (c *Client) AttachProcess(pid int) (interface{}, error) {
	return c.Call("attach_process", map[string]interface{}{"pid": pid})
}
