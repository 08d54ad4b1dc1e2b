// Package oxidb is a trimmed copy of the OxiDB Go client
// (github.com/parisxmas/OxiDB/go/oxidb), keeping only the commands the
// document-store repositories use.
//
// Protocol: each frame is [4-byte little-endian length][JSON payload].
// The server answers {"ok": true, "data": ...} or {"ok": false, "error": "..."}.
package oxidb

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

// maxFrame bounds a single response frame.
const maxFrame = 64 << 20

// Client is a single connection to oxidb-server. Safe for concurrent use;
// requests on one connection are serialised.
type Client struct {
	conn net.Conn
	mu   sync.Mutex
}

// Connect dials oxidb-server at host:port.
func Connect(host string, port int, timeout time.Duration) (*Client, error) {
	addr := net.JoinHostPort(host, fmt.Sprint(port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("oxidb: connect to %s: %w", addr, err)
	}
	return NewClient(conn), nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn}
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func writeFrame(w io.Writer, data []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

func readFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("oxidb: read length: %w", err)
	}
	length := binary.LittleEndian.Uint32(lenBuf[:])
	if length > maxFrame {
		return nil, fmt.Errorf("oxidb: frame of %d bytes exceeds limit", length)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("oxidb: read payload: %w", err)
	}
	return payload, nil
}

func (c *Client) request(payload map[string]any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("oxidb: marshal request: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := writeFrame(c.conn, body); err != nil {
		return nil, fmt.Errorf("oxidb: send: %w", err)
	}
	respBytes, err := readFrame(c.conn)
	if err != nil {
		return nil, err
	}
	var resp map[string]any
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("oxidb: unmarshal response: %w", err)
	}
	return resp, nil
}

func (c *Client) checked(payload map[string]any) (any, error) {
	resp, err := c.request(payload)
	if err != nil {
		return nil, err
	}
	if ok, _ := resp["ok"].(bool); !ok {
		msg, _ := resp["error"].(string)
		if msg == "" {
			msg = "unknown error"
		}
		lower := strings.ToLower(msg)
		switch {
		case strings.Contains(lower, "duplicate"), strings.Contains(lower, "unique"):
			return nil, &DuplicateKeyError{Msg: msg}
		default:
			return nil, &Error{Msg: msg}
		}
	}
	return resp["data"], nil
}

// Ping returns "pong" from a healthy server.
func (c *Client) Ping() (string, error) {
	data, err := c.checked(map[string]any{"cmd": "ping"})
	if err != nil {
		return "", err
	}
	s, _ := data.(string)
	return s, nil
}

// Insert stores one document and returns the server's insert result,
// which carries the auto-increment "id".
func (c *Client) Insert(collection string, doc map[string]any) (map[string]any, error) {
	data, err := c.checked(map[string]any{"cmd": "insert", "collection": collection, "doc": doc})
	if err != nil {
		return nil, err
	}
	return asMap(data), nil
}

// FindOptions holds optional parameters for Find.
type FindOptions struct {
	Sort  map[string]any
	Skip  *int
	Limit *int
}

// Find returns the documents matching query.
func (c *Client) Find(collection string, query map[string]any, opts *FindOptions) ([]map[string]any, error) {
	payload := map[string]any{"cmd": "find", "collection": collection, "query": query}
	if opts != nil {
		if opts.Sort != nil {
			payload["sort"] = opts.Sort
		}
		if opts.Skip != nil {
			payload["skip"] = *opts.Skip
		}
		if opts.Limit != nil {
			payload["limit"] = *opts.Limit
		}
	}
	data, err := c.checked(payload)
	if err != nil {
		return nil, err
	}
	return toMapSlice(data), nil
}

// FindOne returns the first document matching query, or nil.
func (c *Client) FindOne(collection string, query map[string]any) (map[string]any, error) {
	data, err := c.checked(map[string]any{"cmd": "find_one", "collection": collection, "query": query})
	if err != nil {
		return nil, err
	}
	m, _ := data.(map[string]any)
	return m, nil
}

// UpdateOne applies update to at most one document matching query.
func (c *Client) UpdateOne(collection string, query, update map[string]any) (map[string]any, error) {
	data, err := c.checked(map[string]any{
		"cmd": "update_one", "collection": collection,
		"query": query, "update": update,
	})
	if err != nil {
		return nil, err
	}
	return asMap(data), nil
}

// DeleteOne removes at most one document matching query.
func (c *Client) DeleteOne(collection string, query map[string]any) (map[string]any, error) {
	data, err := c.checked(map[string]any{"cmd": "delete_one", "collection": collection, "query": query})
	if err != nil {
		return nil, err
	}
	return asMap(data), nil
}

// Count returns the number of documents matching query.
func (c *Client) Count(collection string, query map[string]any) (int, error) {
	data, err := c.checked(map[string]any{"cmd": "count", "collection": collection, "query": query})
	if err != nil {
		return 0, err
	}
	count, _ := asMap(data)["count"].(float64)
	return int(count), nil
}

// CreateIndex creates a non-unique index on field.
func (c *Client) CreateIndex(collection, field string) error {
	_, err := c.checked(map[string]any{"cmd": "create_index", "collection": collection, "field": field})
	return err
}

// CreateUniqueIndex creates a unique index on field.
func (c *Client) CreateUniqueIndex(collection, field string) error {
	_, err := c.checked(map[string]any{"cmd": "create_unique_index", "collection": collection, "field": field})
	return err
}

// CreateCompositeIndex creates an index over several fields.
func (c *Client) CreateCompositeIndex(collection string, fields []string) error {
	_, err := c.checked(map[string]any{"cmd": "create_composite_index", "collection": collection, "fields": fields})
	return err
}

func asMap(data any) map[string]any {
	if m, ok := data.(map[string]any); ok {
		return m
	}
	return map[string]any{"status": data}
}

func toMapSlice(data any) []map[string]any {
	arr, _ := data.([]any)
	result := make([]map[string]any, 0, len(arr))
	for _, v := range arr {
		if m, ok := v.(map[string]any); ok {
			result = append(result, m)
		}
	}
	return result
}
