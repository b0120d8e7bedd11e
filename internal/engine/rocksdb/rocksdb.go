//go:build rocksdb

package rocksdb

/*
#cgo LDFLAGS: -lrocksdb
#include <stdlib.h>
#include <stdint.h>
#include <rocksdb/c.h>
#include "_cgo_export.h"

static char* kvbind_full_merge(void* state,
	const char* key, size_t key_length,
	const char* existing_value, size_t existing_value_length,
	const char* const* operands_list, const size_t* operands_list_length,
	int num_operands, unsigned char* success, size_t* new_value_length) {
	return kvbindFullMerge(state, (char*)key, key_length,
		(char*)existing_value, existing_value_length,
		(char**)operands_list, (size_t*)operands_list_length,
		num_operands, success, new_value_length);
}

static char* kvbind_partial_merge(void* state,
	const char* key, size_t key_length,
	const char* const* operands_list, const size_t* operands_list_length,
	int num_operands, unsigned char* success, size_t* new_value_length) {
	return kvbindPartialMerge(state, (char*)key, key_length,
		(char**)operands_list, (size_t*)operands_list_length,
		num_operands, success, new_value_length);
}

static const char* kvbind_name(void* state) {
	return kvbindMergeOperatorName(state);
}

static void kvbind_destroy(void* state) {
	kvbindMergeOperatorDestroy(state);
}

static rocksdb_mergeoperator_t* kvbind_mergeoperator_create(uintptr_t state) {
	return rocksdb_mergeoperator_create((void*)state, kvbind_destroy,
		kvbind_full_merge, kvbind_partial_merge, NULL, kvbind_name);
}
*/
import "C"

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
	"unsafe"

	"github.com/rzbill/kvbind/internal/engine"
	logpkg "github.com/rzbill/kvbind/pkg/log"
)

// Name is the registry key of this driver.
const Name = "rocksdb"

func init() {
	engine.Register(Driver{})
}

// Driver opens RocksDB stores.
type Driver struct{}

var _ engine.Driver = Driver{}

func (Driver) Name() string { return Name }

// NewOptions allocates a rocksdb_options_t.
func (Driver) NewOptions() (engine.Options, error) {
	opts := C.rocksdb_options_create()
	if opts == nil {
		return nil, errors.New("rocksdb: could not create options")
	}
	return &Options{opts: opts}, nil
}

// Open opens the store at path. Only a missing handle with no message maps to
// engine.ErrInitFailed.
func (Driver) Open(opts engine.Options, path string) (engine.DB, error) {
	o, err := asOptions(opts)
	if err != nil {
		return nil, err
	}
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	var cErr *C.char
	db := C.rocksdb_open(o.opts, cPath, &cErr)
	if cErr != nil {
		msg := takeError(cErr)
		if db != nil {
			C.rocksdb_close(db)
		}
		switch {
		case msg == "" || !utf8.ValidString(msg):
			return nil, engine.ErrInitFailed
		case strings.Contains(msg, "does not exist (create_if_missing is false)"):
			return nil, fmt.Errorf("%w: %s", engine.ErrNotExist, msg)
		default:
			return nil, errors.New(msg)
		}
	}
	if db == nil {
		return nil, engine.ErrInitFailed
	}

	ro := C.rocksdb_readoptions_create()
	wo := C.rocksdb_writeoptions_create()
	if ro == nil || wo == nil {
		panic("rocksdb: could not allocate read/write options")
	}
	if o.logger != nil {
		o.logger.Debug("rocksdb opened", logpkg.Str("path", path))
	}
	return &DB{db: db, ro: ro, wo: wo}, nil
}

// Destroy calls rocksdb_destroy_db.
func (Driver) Destroy(opts engine.Options, path string) error {
	o, err := asOptions(opts)
	if err != nil {
		return err
	}
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	var cErr *C.char
	_, errno := C.rocksdb_destroy_db(o.opts, cPath, &cErr)
	if cErr != nil {
		return engine.Failure(takeError(cErr), errno)
	}
	return nil
}

func asOptions(opts engine.Options) (*Options, error) {
	o, ok := opts.(*Options)
	if !ok || o == nil {
		return nil, fmt.Errorf("rocksdb: options of type %T were not created by this driver", opts)
	}
	if o.opts == nil {
		return nil, errors.New("rocksdb: options already destroyed")
	}
	return o, nil
}

// takeError copies the engine's error string and frees it.
func takeError(cErr *C.char) string {
	msg := C.GoString(cErr)
	C.rocksdb_free(unsafe.Pointer(cErr))
	return msg
}

// Options wraps rocksdb_options_t.
type Options struct {
	opts   *C.rocksdb_options_t
	logger logpkg.Logger
}

var _ engine.Options = (*Options)(nil)

func (o *Options) SetCreateIfMissing(v bool) {
	var flag C.uchar
	if v {
		flag = 1
	}
	C.rocksdb_options_set_create_if_missing(o.opts, flag)
}

func (o *Options) IncreaseParallelism(n int) {
	C.rocksdb_options_increase_parallelism(o.opts, C.int(n))
}

func (o *Options) OptimizeLevelStyleCompaction(budget uint64) {
	C.rocksdb_options_optimize_level_style_compaction(o.opts, C.uint64_t(budget))
}

// SetMergeOperator registers op. RocksDB shares the operator between these
// options and every DB opened from them and destroys it after the last user.
func (o *Options) SetMergeOperator(op engine.MergeOperator) {
	st := newMergeState(op)
	mo := C.kvbind_mergeoperator_create(C.uintptr_t(st.handle))
	C.rocksdb_options_set_merge_operator(o.opts, mo)
}

// SetLogger sets the logger for driver messages. RocksDB keeps its own LOG
// file in the data directory.
func (o *Options) SetLogger(logger logpkg.Logger) { o.logger = logger }

func (o *Options) Destroy() {
	if o.opts != nil {
		C.rocksdb_options_destroy(o.opts)
		o.opts = nil
	}
}

// DB wraps rocksdb_t with fixed read and write options.
type DB struct {
	db *C.rocksdb_t
	ro *C.rocksdb_readoptions_t
	wo *C.rocksdb_writeoptions_t
}

var _ engine.DB = (*DB)(nil)

func bytesPtr(b []byte) (*C.char, C.size_t) {
	if len(b) == 0 {
		return nil, 0
	}
	return (*C.char)(unsafe.Pointer(&b[0])), C.size_t(len(b))
}

func (db *DB) Put(key, value []byte) error {
	k, kl := bytesPtr(key)
	v, vl := bytesPtr(value)
	var cErr *C.char
	_, errno := C.rocksdb_put(db.db, db.wo, k, kl, v, vl, &cErr)
	if cErr != nil {
		return engine.Failure(takeError(cErr), errno)
	}
	return nil
}

func (db *DB) Delete(key []byte) error {
	k, kl := bytesPtr(key)
	var cErr *C.char
	_, errno := C.rocksdb_delete(db.db, db.wo, k, kl, &cErr)
	if cErr != nil {
		return engine.Failure(takeError(cErr), errno)
	}
	return nil
}

func (db *DB) Merge(key, operand []byte) error {
	k, kl := bytesPtr(key)
	v, vl := bytesPtr(operand)
	var cErr *C.char
	_, errno := C.rocksdb_merge(db.db, db.wo, k, kl, v, vl, &cErr)
	if cErr != nil {
		return engine.Failure(takeError(cErr), errno)
	}
	return nil
}

// Get returns the engine-allocated value. A null value with no error is
// absent.
func (db *DB) Get(key []byte) (engine.Slice, error) {
	k, kl := bytesPtr(key)
	var (
		cErr *C.char
		n    C.size_t
	)
	val, errno := C.rocksdb_get(db.db, db.ro, k, kl, &n, &cErr)
	if cErr != nil {
		if val != nil {
			C.rocksdb_free(unsafe.Pointer(val))
		}
		return nil, engine.Failure(takeError(cErr), errno)
	}
	if val == nil {
		return nil, nil
	}
	return &slice{ptr: val, n: n}, nil
}

func (db *DB) Close() error {
	C.rocksdb_readoptions_destroy(db.ro)
	C.rocksdb_writeoptions_destroy(db.wo)
	C.rocksdb_close(db.db)
	db.db, db.ro, db.wo = nil, nil, nil
	return nil
}

// slice owns a value allocated by rocksdb_get.
type slice struct {
	ptr *C.char
	n   C.size_t
}

func (s *slice) Data() []byte {
	if s.ptr == nil {
		return nil
	}
	if s.n == 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(s.ptr)), int(s.n))
}

func (s *slice) Free() {
	if s.ptr != nil {
		C.rocksdb_free(unsafe.Pointer(s.ptr))
		s.ptr = nil
	}
}
