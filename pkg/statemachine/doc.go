// Package statemachine guards status transitions against an explicit
// allow-list, rejecting moves that are not declared up front.
package statemachine
