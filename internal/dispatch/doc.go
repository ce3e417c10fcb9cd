// Package dispatch synthesizes the selector routing procedure of a contract
// class and splices it into the class member list.
package dispatch
