// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"

	"github.com/ik5/audalg/abi"
	"github.com/ik5/audalg/engine/kernels"
	"github.com/ik5/audalg/value"
)

type object struct {
	algorithm string
	params    map[string]value.Value
	kernel    kernels.Kernel // nil when the algorithm has no kernel

	// header block holding the serialized configuration
	header    abi.Ptr
	headerGen uint32
}

type slot struct {
	gen uint32
	obj *object
}

// objectTable hands out generation-checked ids. Slot indexes are reused,
// generations never are.
type objectTable struct {
	slots []slot
	free  []uint32
	live  int
}

func (t *objectTable) add(o *object) abi.ObjectID {
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		t.slots = append(t.slots, slot{})
		idx = uint32(len(t.slots) - 1)
	}

	s := &t.slots[idx]
	s.gen++
	s.obj = o
	t.live++

	return abi.MakeObjectID(idx, s.gen)
}

func (t *objectTable) get(id abi.ObjectID) (*object, error) {
	idx := id.Index()
	if int(idx) >= len(t.slots) {
		return nil, fmt.Errorf("%w: %s", abi.ErrInvalidObject, id)
	}
	s := t.slots[idx]
	if s.obj == nil || s.gen != id.Gen() {
		return nil, fmt.Errorf("%w: %s", abi.ErrInvalidObject, id)
	}
	return s.obj, nil
}

func (t *objectTable) remove(id abi.ObjectID) (*object, error) {
	o, err := t.get(id)
	if err != nil {
		return nil, err
	}
	t.slots[id.Index()].obj = nil
	t.free = append(t.free, id.Index())
	t.live--
	return o, nil
}
