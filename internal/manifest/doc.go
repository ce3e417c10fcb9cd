// Package manifest resolves assembled method and event records into the
// contract ABI: canonical types, signatures, selectors and host type hints.
// It also renders the per-class host fragments (typed ABI constant and
// declaration-only types).
package manifest
