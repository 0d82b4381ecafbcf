// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/ik5/audalg/abi"
)

const align = 8

type block struct {
	size  int
	gen   uint32
	owner abi.ObjectID
}

type span struct {
	off, size int
}

// arena is a growable linear address space with a first-fit allocator.
// Offset zero is never handed out. It is not safe for concurrent use; the
// engine serializes access.
type arena struct {
	buf     []byte
	limit   int
	top     int
	free    []span // sorted by offset, never adjacent
	blocks  map[abi.Ptr]*block
	used    int
	nextGen uint32
	logger  *slog.Logger
}

func newArena(initial, limit int, logger *slog.Logger) *arena {
	return &arena{
		buf:    make([]byte, initial),
		limit:  limit,
		top:    align,
		blocks: make(map[abi.Ptr]*block),
		logger: logger,
	}
}

func roundUp(n int) int {
	if n <= 0 {
		return align
	}
	return (n + align - 1) &^ (align - 1)
}

func (a *arena) alloc(owner abi.ObjectID, size int) (abi.Ptr, uint32, error) {
	if size < 0 || size > a.limit {
		return 0, 0, fmt.Errorf("%w: request of %d bytes", abi.ErrOutOfMemory, size)
	}
	n := roundUp(size)

	off := -1
	for i, s := range a.free {
		if s.size < n {
			continue
		}
		off = s.off
		if s.size == n {
			a.free = slices.Delete(a.free, i, i+1)
		} else {
			a.free[i] = span{off: s.off + n, size: s.size - n}
		}
		break
	}

	if off < 0 {
		if a.top+n > a.limit {
			a.logger.Warn("engine memory exhausted",
				slog.Int("request", n), slog.Int("used", a.used), slog.Int("limit", a.limit))
			return 0, 0, fmt.Errorf("%w: %d bytes requested, %d of %d in use",
				abi.ErrOutOfMemory, n, a.used, a.limit)
		}
		if a.top+n > len(a.buf) {
			a.grow(a.top + n)
		}
		off = a.top
		a.top += n
	}

	a.nextGen++
	if a.nextGen == 0 {
		a.nextGen = 1
	}
	p := abi.Ptr(off)
	a.blocks[p] = &block{size: n, gen: a.nextGen, owner: owner}
	a.used += n

	return p, a.nextGen, nil
}

func (a *arena) grow(need int) {
	size := max(len(a.buf)*2, need, align*2)
	size = min(size, a.limit)

	buf := make([]byte, size)
	copy(buf, a.buf)
	a.logger.Debug("engine memory grown", slog.Int("from", len(a.buf)), slog.Int("to", size))
	a.buf = buf
}

func (a *arena) lookup(p abi.Ptr, gen uint32) (*block, error) {
	b, ok := a.blocks[p]
	if !ok || b.gen != gen {
		return nil, fmt.Errorf("%w: ptr %d gen %d", abi.ErrStale, p, gen)
	}
	return b, nil
}

func (a *arena) release(p abi.Ptr, gen uint32) error {
	b, err := a.lookup(p, gen)
	if err != nil {
		return err
	}

	off := int(p)
	clear(a.buf[off : off+b.size])
	delete(a.blocks, p)
	a.used -= b.size
	a.insertFree(span{off: off, size: b.size})

	return nil
}

func (a *arena) insertFree(s span) {
	i, _ := slices.BinarySearchFunc(a.free, s.off, func(x span, off int) int { return x.off - off })
	a.free = slices.Insert(a.free, i, s)

	// merge with the right neighbour, then the left one
	if i+1 < len(a.free) && a.free[i].off+a.free[i].size == a.free[i+1].off {
		a.free[i].size += a.free[i+1].size
		a.free = slices.Delete(a.free, i+1, i+2)
	}
	if i > 0 && a.free[i-1].off+a.free[i-1].size == a.free[i].off {
		a.free[i-1].size += a.free[i].size
		a.free = slices.Delete(a.free, i, i+1)
	}

	// a free span touching the top goes back to the bump region
	if last := a.free[len(a.free)-1]; last.off+last.size == a.top {
		a.top = last.off
		a.free = a.free[:len(a.free)-1]
	}
}

// releaseOwned frees every block owned by id except keep.
func (a *arena) releaseOwned(id abi.ObjectID, keep abi.Ptr) {
	for _, p := range slices.Sorted(maps.Keys(a.blocks)) {
		b := a.blocks[p]
		if b.owner != id || p == keep {
			continue
		}
		_ = a.release(p, b.gen)
	}
}

func (a *arena) write(p abi.Ptr, gen uint32, off int, src []byte) error {
	b, err := a.lookup(p, gen)
	if err != nil {
		return err
	}
	if off < 0 || off+len(src) > b.size {
		return fmt.Errorf("%w: write of %d bytes at %d into %d", abi.ErrOutOfBounds, len(src), off, b.size)
	}
	copy(a.buf[int(p)+off:], src)
	return nil
}

func (a *arena) read(p abi.Ptr, gen uint32, off int, dst []byte) error {
	b, err := a.lookup(p, gen)
	if err != nil {
		return err
	}
	if off < 0 || off+len(dst) > b.size {
		return fmt.Errorf("%w: read of %d bytes at %d from %d", abi.ErrOutOfBounds, len(dst), off, b.size)
	}
	copy(dst, a.buf[int(p)+off:])
	return nil
}
