// Package launch reads the parameters the host application was launched with.
//
// A Source yields an Intent: raw key-value extras plus an optional deep-link
// action and URI. Extras carry an optional type prefix ("int:5", "bool:true",
// "list:a,b") that DecodeValue turns into a typed value.
package launch
