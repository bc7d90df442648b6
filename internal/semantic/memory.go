// memory.go implements the segmented virtual-address allocator. Each
// (segment, type) cell hands out addresses monotonically from a fixed
// base, with a capacity of 1000 per cell.

package semantic

import "fmt"

// Segment identifies one of the four address partitions.
type Segment int

const (
	SegGlobal Segment = iota
	SegLocal
	SegTemp
	SegConst
)

func (s Segment) String() string {
	switch s {
	case SegGlobal:
		return "global"
	case SegLocal:
		return "local"
	case SegTemp:
		return "temp"
	case SegConst:
		return "const"
	default:
		return fmt.Sprintf("Segment(%d)", int(s))
	}
}

// cellCapacity bounds every (segment, type) cell to 1000 addresses.
// Exceeding it is a hard error; a counter that ran past its cell would
// silently alias the next cell's address range.
const cellCapacity = 1000

// bases holds the address-range base offset for every (segment, type) cell.
var bases = [4][4]int{
	SegGlobal: {Int: 1000, Float: 2000, String: 3000, Bool: 4000},
	SegTemp:   {Int: 5000, Float: 6000, String: 7000, Bool: 8000},
	SegConst:  {Int: 9000, Float: 10000, String: 11000, Bool: 12000},
	SegLocal:  {Int: 13000, Float: 14000, String: 15000, Bool: 16000},
}

// Address is a plain non-negative integer virtual address. It encodes both
// the segment and the primitive type it was allocated for via its range.
type Address int

// NoAddr is the sentinel for "no address" in a quadruple slot.
const NoAddr Address = -1

// ConstKey interns a literal value together with its type for the
// constant table; identical (value, type) pairs share one address.
type ConstKey struct {
	Value any
	Type  Type
}

// VirtualMemory hands out virtual addresses and interns constants. It
// does not store values; that is the VM's job.
type VirtualMemory struct {
	counters [4][4]int // counters[segment][type]
	consts   map[ConstKey]Address
}

// NewVirtualMemory returns a ready-to-use allocator.
func NewVirtualMemory() *VirtualMemory {
	return &VirtualMemory{consts: make(map[ConstKey]Address)}
}

// AllocVar allocates a new address in segment (must be SegGlobal or
// SegLocal) for the given type.
func (vm *VirtualMemory) AllocVar(t Type, seg Segment) (Address, error) {
	if seg != SegGlobal && seg != SegLocal {
		return NoAddr, fmt.Errorf("alloc_var: invalid segment %s", seg)
	}
	return vm.alloc(seg, t)
}

// AllocTemp allocates a new temporary address for the given type.
func (vm *VirtualMemory) AllocTemp(t Type) (Address, error) {
	return vm.alloc(SegTemp, t)
}

// AllocConst interns value/t, returning the existing address if this exact
// (value, type) pair was already seen.
func (vm *VirtualMemory) AllocConst(value any, t Type) (Address, error) {
	key := ConstKey{Value: value, Type: t}
	if addr, ok := vm.consts[key]; ok {
		return addr, nil
	}
	addr, err := vm.alloc(SegConst, t)
	if err != nil {
		return NoAddr, err
	}
	vm.consts[key] = addr
	return addr, nil
}

// Constants returns a copy of the interned constant table, keyed by
// (value, type), e.g. for the CLI's constant listing.
func (vm *VirtualMemory) Constants() map[ConstKey]Address {
	out := make(map[ConstKey]Address, len(vm.consts))
	for k, v := range vm.consts {
		out[k] = v
	}
	return out
}

// ResetLocals zeroes the local and temp counters, called at the start of
// every function body and again when main begins.
func (vm *VirtualMemory) ResetLocals() {
	for t := range vm.counters[SegLocal] {
		vm.counters[SegLocal][t] = 0
	}
	for t := range vm.counters[SegTemp] {
		vm.counters[SegTemp][t] = 0
	}
}

// Usage snapshots the current counters for segment, keyed by Type.
func (vm *VirtualMemory) Usage(seg Segment) map[Type]int {
	out := make(map[Type]int, 4)
	for t, n := range vm.counters[seg] {
		if t == int(Void) {
			continue
		}
		out[Type(t)] = n
	}
	return out
}

func (vm *VirtualMemory) alloc(seg Segment, t Type) (Address, error) {
	if t != Int && t != Float && t != String && t != Bool {
		return NoAddr, fmt.Errorf("alloc: unsupported type %s in segment %s", t, seg)
	}
	idx := vm.counters[seg][t]
	if idx >= cellCapacity {
		return NoAddr, fmt.Errorf("alloc: capacity exceeded for segment %s type %s", seg, t)
	}
	addr := Address(bases[seg][t] + idx)
	vm.counters[seg][t] = idx + 1
	return addr, nil
}

// Resolve classifies addr by its range into a (segment, type) pair. This
// is the shared contract between the generator and the VM: every address
// is self-describing.
func Resolve(addr Address) (Segment, Type, error) {
	a := int(addr)
	for seg := SegGlobal; seg <= SegConst; seg++ {
		for t := Int; t <= Bool; t++ {
			base := bases[seg][t]
			if a >= base && a < base+cellCapacity {
				return seg, t, nil
			}
		}
	}
	return 0, 0, fmt.Errorf("address %d outside all segment ranges", a)
}
