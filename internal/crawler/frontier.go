package crawler

const minFrontierCapacity = 16

// Frontier is the FIFO queue of discovered URLs waiting to be visited.
// It is a growable ring buffer, so Push and Pop are O(1) amortized.
//
// A Frontier may hold the same URL more than once. The engine drops repeats
// when they are popped, not when they are pushed.
// It is not safe for concurrent use.
type Frontier struct {
	buf  []string
	head int
	size int
}

// NewFrontier creates a Frontier holding the given URLs in order.
func NewFrontier(urls ...string) *Frontier {
	capacity := minFrontierCapacity
	for capacity < len(urls) {
		capacity *= 2
	}
	f := &Frontier{buf: make([]string, capacity)}
	for _, u := range urls {
		f.Push(u)
	}
	return f
}

// Push appends u to the tail.
func (f *Frontier) Push(u string) {
	if f.size == len(f.buf) {
		f.grow()
	}
	f.buf[(f.head+f.size)%len(f.buf)] = u
	f.size++
}

// Pop removes and returns the head. ok is false when the frontier is empty.
func (f *Frontier) Pop() (u string, ok bool) {
	if f.size == 0 {
		return "", false
	}
	u = f.buf[f.head]
	f.buf[f.head] = ""
	f.head = (f.head + 1) % len(f.buf)
	f.size--
	return u, true
}

// Len returns the number of queued entries, repeats included.
func (f *Frontier) Len() int {
	return f.size
}

func (f *Frontier) grow() {
	next := make([]string, len(f.buf)*2)
	n := copy(next, f.buf[f.head:])
	copy(next[n:], f.buf[:f.head])
	f.buf = next
	f.head = 0
}
