// Package fstore implements store.IStore on top of a single JSON document on
// disk. It plays the role of the browser's local persistent storage for the
// command line: state survives restarts and can be inspected by hand.
//
// Every operation re-reads the document, so several processes working on the
// same file see each other's writes. Reads take a shared and writes an
// exclusive advisory lock (gofrs/flock) on "<path>.lock"; writes go to a temp
// file that is renamed over the document. The lock makes single writes
// atomic; read-modify-write sequences spanning several calls (such as an id
// allocation) are still last-writer-wins across processes.
package fstore
