// Package candidate defines the candidate record shape consumed by the
// matching engine, its collection helpers, pool loading and the exclude file.
package candidate
