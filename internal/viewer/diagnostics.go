package viewer

import (
	"strings"
	"sync"
)

// Diagnostics accumulates every error the viewer swallowed, oldest first.
// Nothing here is retried or fatal; it only keeps the record visible.
type Diagnostics struct {
	mu      sync.Mutex
	entries []string
}

// Add appends one entry prefixed with its source.
func (d *Diagnostics) Add(source string, err error) {
	if err == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = append(d.entries, source+": "+err.Error())
}

// Len returns the number of entries.
func (d *Diagnostics) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// String returns all entries, one per line.
func (d *Diagnostics) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return strings.Join(d.entries, "\n")
}

// Last returns the newest entry, or "".
func (d *Diagnostics) Last() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.entries) == 0 {
		return ""
	}
	return d.entries[len(d.entries)-1]
}
