// Package badgerstore is an engine driver backed by BadgerDB.
//
// Badger has no merge operator of its own, so Merge is applied eagerly: the
// driver reads the current value and writes the operator's result inside one
// transaction, retrying on conflict. Reads therefore never invoke the
// operator.
//
// Importing the package registers the driver under the name "badger".
package badgerstore
