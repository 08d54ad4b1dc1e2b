// Package db owns connections to the backing stores.
package db

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/parisxmas/OxiDB/OxiForms/internal/oxidb"
)

// Client is the subset of the OxiDB wire client the repositories use.
type Client interface {
	Ping() (string, error)
	Insert(collection string, doc map[string]any) (map[string]any, error)
	Find(collection string, query map[string]any, opts *oxidb.FindOptions) ([]map[string]any, error)
	FindOne(collection string, query map[string]any) (map[string]any, error)
	UpdateOne(collection string, query, update map[string]any) (map[string]any, error)
	DeleteOne(collection string, query map[string]any) (map[string]any, error)
	Count(collection string, query map[string]any) (int, error)
	CreateIndex(collection, field string) error
	CreateUniqueIndex(collection, field string) error
	CreateCompositeIndex(collection string, fields []string) error
}

// Provider hands out a client per call.
type Provider interface {
	Get() Client
}

const (
	dialTimeout       = 5 * time.Second
	keepaliveInterval = 10 * time.Second
)

// Pool is a round-robin OxiDB connection pool with keepalive pings and
// reconnect of broken connections.
type Pool struct {
	host    string
	port    int
	logger  *zap.Logger
	clients []*oxidb.Client
	mu      []sync.RWMutex
	idx     uint64
	stop    chan struct{}
	once    sync.Once
}

// NewPool opens size connections to host:port.
func NewPool(host string, port, size int, logger *zap.Logger) (*Pool, error) {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		host:    host,
		port:    port,
		logger:  logger,
		clients: make([]*oxidb.Client, size),
		mu:      make([]sync.RWMutex, size),
		stop:    make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		c, err := oxidb.Connect(host, port, dialTimeout)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("pool: connect client %d: %w", i, err)
		}
		p.clients[i] = c
	}
	go p.keepalive()
	return p, nil
}

// Get returns the next client in round-robin order.
func (p *Pool) Get() Client {
	n := atomic.AddUint64(&p.idx, 1)
	i := int(n % uint64(len(p.clients)))
	p.mu[i].RLock()
	defer p.mu[i].RUnlock()
	return p.clients[i]
}

// Ping checks one pooled connection.
func (p *Pool) Ping() error {
	_, err := p.Get().Ping()
	return err
}

func (p *Pool) reconnect(i int) {
	c, err := oxidb.Connect(p.host, p.port, dialTimeout)
	if err != nil {
		p.logger.Warn("Reconnect failed", zap.Int("client", i), zap.Error(err))
		return
	}
	p.mu[i].Lock()
	old := p.clients[i]
	p.clients[i] = c
	p.mu[i].Unlock()
	if old != nil {
		old.Close()
	}
}

func (p *Pool) keepalive() {
	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			for i := range p.clients {
				p.mu[i].RLock()
				c := p.clients[i]
				p.mu[i].RUnlock()
				if _, err := c.Ping(); err != nil {
					p.logger.Warn("Ping failed, reconnecting", zap.Int("client", i), zap.Error(err))
					p.reconnect(i)
				}
			}
		}
	}
}

// Close stops the keepalive loop and closes every connection.
func (p *Pool) Close() error {
	p.once.Do(func() { close(p.stop) })
	for i := range p.clients {
		p.mu[i].Lock()
		if p.clients[i] != nil {
			p.clients[i].Close()
			p.clients[i] = nil
		}
		p.mu[i].Unlock()
	}
	return nil
}
