package telemetry

// ring is a fixed-size buffer that overwrites its oldest element. Not safe for
// concurrent use; owners hold their own lock.
type ring[T any] struct {
	buf  []T
	next int
	full bool
}

func newRing[T any](size int) *ring[T] {
	if size <= 0 {
		size = 1
	}
	return &ring[T]{buf: make([]T, size)}
}

func (r *ring[T]) push(v T) {
	r.buf[r.next] = v
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
}

func (r *ring[T]) len() int {
	if r.full {
		return len(r.buf)
	}
	return r.next
}

// items returns the contents oldest first.
func (r *ring[T]) items() []T {
	n := r.len()
	res := make([]T, 0, n)
	start := 0
	if r.full {
		start = r.next
	}
	for i := 0; i < n; i++ {
		res = append(res, r.buf[(start+i)%len(r.buf)])
	}
	return res
}

// recent returns up to n items, newest first.
func (r *ring[T]) recent(n int) []T {
	all := r.items()
	if n <= 0 || n > len(all) {
		n = len(all)
	}
	res := make([]T, 0, n)
	for i := len(all) - 1; i >= 0 && len(res) < n; i-- {
		res = append(res, all[i])
	}
	return res
}
