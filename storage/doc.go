// Package storage is the durable key-value store behind dyne's cache,
// options and definition records. Keys are slash-separated relative paths
// such as "model/dataset/corr/3f2a.../000004.json".
//
// Backends register themselves with RegisterFactory from their init
// functions; import the ones you need:
//
//	import _ "github.com/kbukum/dyne/storage/local"
//	import _ "github.com/kbukum/dyne/storage/s3"
package storage
