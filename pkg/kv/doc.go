// Package kv is an ownership-checked binding over embedded key-value
// engines.
//
// A store is opened from Options, which are consumed by the first Open or
// Destroy. Reads return a Result that tells "found" from "absent" from
// "failed"; a found value is a Buffer over engine memory that must be
// released exactly once:
//
//	db, err := kv.OpenDefault("/tmp/t1")
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	_ = db.Put([]byte("k1"), []byte("v1111"))
//	res := db.Get([]byte("k1"))
//	if res.IsFound() {
//	    buf := res.Value()
//	    defer buf.Release()
//	    fmt.Printf("%s\n", buf.Bytes())
//	}
//
// Merge operators are plain functions registered on Options. They run on
// engine goroutines, possibly long after Open returns, and may decline to
// combine their operands by returning false.
package kv
