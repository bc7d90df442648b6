package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_VirtualMemory_AllocVar(t *testing.T) {
	vm := NewVirtualMemory()
	a1, err := vm.AllocVar(Int, SegGlobal)
	require.NoError(t, err)
	assert.Equal(t, Address(1000), a1)

	a2, err := vm.AllocVar(Int, SegGlobal)
	require.NoError(t, err)
	assert.Equal(t, Address(1001), a2)

	a3, err := vm.AllocVar(Float, SegGlobal)
	require.NoError(t, err)
	assert.Equal(t, Address(2000), a3)

	_, err = vm.AllocVar(Int, SegTemp)
	assert.Error(t, err, "temp is not a valid AllocVar segment")
}

func Test_VirtualMemory_ResetLocals(t *testing.T) {
	vm := NewVirtualMemory()
	_, err := vm.AllocVar(Int, SegLocal)
	require.NoError(t, err)
	_, err = vm.AllocTemp(Int)
	require.NoError(t, err)

	vm.ResetLocals()

	a, err := vm.AllocVar(Int, SegLocal)
	require.NoError(t, err)
	assert.Equal(t, Address(13000), a, "local counters reset to the cell base")

	ta, err := vm.AllocTemp(Int)
	require.NoError(t, err)
	assert.Equal(t, Address(5000), ta, "temp counters reset to the cell base")
}

func Test_VirtualMemory_AllocConst_interns(t *testing.T) {
	vm := NewVirtualMemory()
	a1, err := vm.AllocConst(2, Int)
	require.NoError(t, err)
	a2, err := vm.AllocConst(2, Int)
	require.NoError(t, err)
	assert.Equal(t, a1, a2, "identical literal values share one address")

	a3, err := vm.AllocConst(2.0, Float)
	require.NoError(t, err)
	assert.NotEqual(t, a1, a3, "same value, different type, distinct address")
}

func Test_VirtualMemory_alloc_capacity(t *testing.T) {
	vm := NewVirtualMemory()
	for i := 0; i < cellCapacity; i++ {
		_, err := vm.AllocVar(Int, SegGlobal)
		require.NoError(t, err)
	}
	_, err := vm.AllocVar(Int, SegGlobal)
	assert.Error(t, err, "the 1001st allocation in a cell must fail rather than collide")
}

func Test_Resolve(t *testing.T) {
	vm := NewVirtualMemory()
	addr, err := vm.AllocVar(Bool, SegLocal)
	require.NoError(t, err)

	seg, typ, err := Resolve(addr)
	require.NoError(t, err)
	assert.Equal(t, SegLocal, seg)
	assert.Equal(t, Bool, typ)

	_, _, err = Resolve(Address(999999))
	assert.Error(t, err)
}
