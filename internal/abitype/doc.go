// Package abitype is the closed ABI type system of the pass.
//
// Every accepted spelling (canonical, host built-in, legacy snake_case, or
// enum-qualified such as "ABIDataTypes.UINT256") resolves to exactly one Tag,
// and every Tag has exactly one canonical spelling. Canonical spellings are the
// only strings that ever reach a method signature.
//
// Tuple strings of the form `tuple(<list>)[]` are parsed by the helpers in
// tuple.go. Only two tuple shapes are types in their own right (the
// address-with-amount idioms); any other inner-type combination can be
// validated and canonicalized but never resolves to a Tag.
package abitype
