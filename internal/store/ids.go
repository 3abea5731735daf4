package store

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// UploadIDPrefix starts every upload id.
const UploadIDPrefix = "upload_"

// IDGenerator hands out "upload_<unix millis>" ids. Ids are strictly
// increasing, so two uploads in the same millisecond never collide.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator returns a generator reading the wall clock.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Next returns a fresh upload id.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.now().UnixMilli()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n
	return UploadIDPrefix + strconv.FormatInt(n, 10)
}

// Observe moves the generator past an existing id so restored records are
// never reissued.
func (g *IDGenerator) Observe(id string) {
	digits, ok := strings.CutPrefix(id, UploadIDPrefix)
	if !ok {
		return
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return
	}
	g.mu.Lock()
	if n > g.last {
		g.last = n
	}
	g.mu.Unlock()
}

