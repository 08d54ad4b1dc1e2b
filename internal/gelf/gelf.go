// Package gelf ships zap log entries to Graylog as GELF 1.1 UDP datagrams.
package gelf

import (
	"math"
	"net"
	"os"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/parisxmas/OxiDB/OxiForms/internal/jsonx"
)

// Core is a zapcore.Core that sends one datagram per entry. Sends are
// fire-and-forget; a lost datagram never fails the log call.
type Core struct {
	zapcore.LevelEnabler
	conn    net.Conn
	host    string
	service string
	fields  []zapcore.Field
}

// New dials addr (e.g. "172.17.0.1:12201") and returns a Core tagging every
// message with service.
func New(addr, service string, enab zapcore.LevelEnabler) (*Core, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}
	host, _ := os.Hostname()
	if host == "" {
		host = service
	}
	return &Core{LevelEnabler: enab, conn: conn, host: host, service: service}, nil
}

func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(append([]zapcore.Field(nil), c.fields...), fields...)
	return &clone
}

func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	msg := map[string]any{
		"version":       "1.1",
		"host":          c.host,
		"short_message": ent.Message,
		"timestamp":     timestamp(ent.Time),
		"level":         syslogLevel(ent.Level),
		"_service":      c.service,
	}
	if ent.LoggerName != "" {
		msg["_logger"] = ent.LoggerName
	}
	if ent.Caller.Defined {
		msg["_caller"] = ent.Caller.TrimmedPath()
	}
	if ent.Stack != "" {
		msg["full_message"] = ent.Message + "\n" + ent.Stack
	}
	for k, v := range enc.Fields {
		// "_id" is reserved by GELF.
		if k == "id" {
			k = "id_"
		}
		msg["_"+k] = v
	}

	payload, err := jsonx.Marshal(msg)
	if err != nil {
		return nil
	}
	_, _ = c.conn.Write(payload)
	return nil
}

func (c *Core) Sync() error {
	return nil
}

// Close releases the UDP socket.
func (c *Core) Close() error {
	return c.conn.Close()
}

func timestamp(t time.Time) float64 {
	if t.IsZero() {
		t = time.Now()
	}
	return math.Round(float64(t.UnixNano())/1e6) / 1e3
}

// syslogLevel maps zap levels onto the syslog severities GELF uses.
func syslogLevel(l zapcore.Level) int {
	switch {
	case l <= zapcore.DebugLevel:
		return 7
	case l == zapcore.InfoLevel:
		return 6
	case l == zapcore.WarnLevel:
		return 4
	case l == zapcore.ErrorLevel:
		return 3
	default:
		return 2
	}
}
