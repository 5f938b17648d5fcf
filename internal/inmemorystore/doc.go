// Package inmemorystore provides a thread-safe, in-memory implementation
// of the paramstore.Store interface. It is suitable for any graph whose
// parameters live only as long as the process.
package inmemorystore
