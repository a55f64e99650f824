// Package pipe defines the contract every processing stage satisfies, the
// packets that flow between stages, the factory registry used to resolve
// identifiers, and the category link rules that govern which stages may be
// chained.
package pipe
