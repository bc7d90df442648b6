// frame.go defines the VM's activation record.
package vm

import "github.com/JosueSosa01/Patito-1/internal/semantic"

// Frame owns one function invocation's local and temp storage plus the
// instruction pointer to resume the caller at.
type Frame struct {
	FuncName string
	RetIP    int // -1 for the outermost (global/main) frame.
	locals   map[semantic.Address]any
	temps    map[semantic.Address]any
}

// newFrame returns an empty frame for funcName, returning to retIP.
func newFrame(funcName string, retIP int) *Frame {
	return &Frame{
		FuncName: funcName,
		RetIP:    retIP,
		locals:   make(map[semantic.Address]any),
		temps:    make(map[semantic.Address]any),
	}
}

func (f *Frame) read(seg semantic.Segment, addr semantic.Address) (any, bool) {
	m := f.segment(seg)
	v, ok := m[addr]
	return v, ok
}

func (f *Frame) write(seg semantic.Segment, addr semantic.Address, v any) {
	f.segment(seg)[addr] = v
}

func (f *Frame) segment(seg semantic.Segment) map[semantic.Address]any {
	if seg == semantic.SegLocal {
		return f.locals
	}
	return f.temps
}
