// Package rocksdb is an engine driver over the RocksDB C API.
//
// It is compiled only with the rocksdb build tag and needs librocksdb and its
// headers:
//
//	go build -tags rocksdb ./...
//
// Merge operators are registered through rocksdb_mergeoperator_create. The
// engine receives a cgo.Handle as its state pointer and calls back into the
// exported trampolines in trampoline.go. The handle is released from the
// operator's destructor, which RocksDB runs once the options and every DB
// opened from them have let go of the operator.
package rocksdb
