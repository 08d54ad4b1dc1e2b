package oxidb

import (
	"encoding/json"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer answers each request frame with the response produced by reply
// and records the decoded requests.
type fakeServer struct {
	conn     net.Conn
	requests []map[string]any
}

func startFakeServer(t *testing.T, reply func(req map[string]any) map[string]any) (*Client, *fakeServer) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	srv := &fakeServer{conn: serverConn}
	go func() {
		for {
			frame, err := readFrame(serverConn)
			if err != nil {
				return
			}
			var req map[string]any
			if err := json.Unmarshal(frame, &req); err != nil {
				return
			}
			srv.requests = append(srv.requests, req)
			out, _ := json.Marshal(reply(req))
			if err := writeFrame(serverConn, out); err != nil {
				return
			}
		}
	}()
	c := NewClient(clientConn)
	t.Cleanup(func() {
		c.Close()
		serverConn.Close()
	})
	return c, srv
}

func TestPing(t *testing.T) {
	c, _ := startFakeServer(t, func(req map[string]any) map[string]any {
		return map[string]any{"ok": true, "data": "pong"}
	})

	pong, err := c.Ping()
	require.NoError(t, err)
	assert.Equal(t, "pong", pong)
}

func TestInsertAndFindOne(t *testing.T) {
	c, srv := startFakeServer(t, func(req map[string]any) map[string]any {
		switch req["cmd"] {
		case "insert":
			return map[string]any{"ok": true, "data": map[string]any{"id": 7}}
		case "find_one":
			return map[string]any{"ok": true, "data": map[string]any{"_id": 7, "slug": "contact"}}
		}
		return map[string]any{"ok": false, "error": "unexpected"}
	})

	res, err := c.Insert("forms", map[string]any{"slug": "contact"})
	require.NoError(t, err)
	assert.Equal(t, float64(7), res["id"])

	doc, err := c.FindOne("forms", map[string]any{"_id": 7})
	require.NoError(t, err)
	assert.Equal(t, "contact", doc["slug"])

	require.Len(t, srv.requests, 2)
	assert.Equal(t, "forms", srv.requests[0]["collection"])
	assert.Equal(t, map[string]any{"slug": "contact"}, srv.requests[0]["doc"])
}

func TestFindOneMissingReturnsNil(t *testing.T) {
	c, _ := startFakeServer(t, func(req map[string]any) map[string]any {
		return map[string]any{"ok": true, "data": nil}
	})

	doc, err := c.FindOne("forms", map[string]any{"_id": 1})
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestFindSendsOptions(t *testing.T) {
	c, srv := startFakeServer(t, func(req map[string]any) map[string]any {
		return map[string]any{"ok": true, "data": []any{
			map[string]any{"_id": 1}, "garbage", map[string]any{"_id": 2},
		}}
	})

	skip, limit := 10, 5
	docs, err := c.Find("subs", map[string]any{"formId": 3}, &FindOptions{
		Sort:  map[string]any{"createdAt": -1},
		Skip:  &skip,
		Limit: &limit,
	})
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	req := srv.requests[0]
	assert.Equal(t, float64(10), req["skip"])
	assert.Equal(t, float64(5), req["limit"])
	assert.Equal(t, map[string]any{"createdAt": float64(-1)}, req["sort"])
}

func TestCount(t *testing.T) {
	c, _ := startFakeServer(t, func(req map[string]any) map[string]any {
		return map[string]any{"ok": true, "data": map[string]any{"count": 42}}
	})

	n, err := c.Count("subs", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestServerErrors(t *testing.T) {
	c, _ := startFakeServer(t, func(req map[string]any) map[string]any {
		if req["cmd"] == "insert" {
			return map[string]any{"ok": false, "error": "unique index violation on slug"}
		}
		return map[string]any{"ok": false}
	})

	_, err := c.Insert("forms", map[string]any{"slug": "x"})
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))

	err = c.CreateIndex("forms", "slug")
	require.Error(t, err)
	assert.False(t, IsDuplicateKey(err))
	assert.EqualError(t, err, "oxidb: unknown error")
}
