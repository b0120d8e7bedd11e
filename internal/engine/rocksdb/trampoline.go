//go:build rocksdb

package rocksdb

/*
#include <stdlib.h>
#include <stddef.h>
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/rzbill/kvbind/internal/engine"
)

// mergeState is what RocksDB holds as the operator's state pointer.
type mergeState struct {
	op     engine.MergeOperator
	name   *C.char
	handle cgo.Handle
}

func newMergeState(op engine.MergeOperator) *mergeState {
	st := &mergeState{op: op, name: C.CString(op.Name())}
	st.handle = cgo.NewHandle(st)
	return st
}

func stateOf(p unsafe.Pointer) *mergeState {
	return cgo.Handle(uintptr(p)).Value().(*mergeState)
}

// borrow views engine memory without copying. A null pointer is absent.
func borrow(p *C.char, n C.size_t) []byte {
	if p == nil {
		return nil
	}
	if n == 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), int(n))
}

func operandsOf(list **C.char, lens *C.size_t, n C.int) *engine.MergeOperands {
	if n <= 0 || list == nil || lens == nil {
		return engine.NewMergeOperandsFunc(0, nil)
	}
	ptrs := unsafe.Slice(list, int(n))
	sizes := unsafe.Slice(lens, int(n))
	return engine.NewMergeOperandsFunc(int(n), func(i int) []byte {
		return borrow(ptrs[i], sizes[i])
	})
}

// handBack copies out into malloc'd memory that RocksDB frees. A declined
// merge clears the success flag and returns null.
func handBack(out []byte, ok bool, success *C.uchar, newLen *C.size_t) *C.char {
	if !ok {
		*success = 0
		*newLen = 0
		return nil
	}
	buf := C.malloc(C.size_t(max(len(out), 1)))
	copy(unsafe.Slice((*byte)(buf), len(out)), out)
	*newLen = C.size_t(len(out))
	*success = 1
	return (*C.char)(buf)
}

// guard turns a panicking operator into a failed merge; a panic must not
// unwind through RocksDB's stack frames.
func guard(success *C.uchar, newLen *C.size_t, result **C.char) {
	if recover() != nil {
		*success = 0
		*newLen = 0
		*result = nil
	}
}

//export kvbindFullMerge
func kvbindFullMerge(state unsafe.Pointer, key *C.char, keyLen C.size_t,
	existing *C.char, existingLen C.size_t,
	list **C.char, lens *C.size_t, n C.int,
	success *C.uchar, newLen *C.size_t) (result *C.char) {
	defer guard(success, newLen, &result)
	st := stateOf(state)
	out, ok := st.op.FullMerge(borrow(key, keyLen), borrow(existing, existingLen), operandsOf(list, lens, n))
	return handBack(out, ok, success, newLen)
}

//export kvbindPartialMerge
func kvbindPartialMerge(state unsafe.Pointer, key *C.char, keyLen C.size_t,
	list **C.char, lens *C.size_t, n C.int,
	success *C.uchar, newLen *C.size_t) (result *C.char) {
	defer guard(success, newLen, &result)
	st := stateOf(state)
	out, ok := st.op.PartialMerge(borrow(key, keyLen), operandsOf(list, lens, n))
	return handBack(out, ok, success, newLen)
}

//export kvbindMergeOperatorName
func kvbindMergeOperatorName(state unsafe.Pointer) *C.char {
	return stateOf(state).name
}

//export kvbindMergeOperatorDestroy
func kvbindMergeOperatorDestroy(state unsafe.Pointer) {
	st := stateOf(state)
	C.free(unsafe.Pointer(st.name))
	st.name = nil
	st.handle.Delete()
}
