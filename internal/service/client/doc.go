// Package client implements the notifyctl operations.
//
// A Session dials notifyd and prints the result of each facade call in a
// script-friendly form. WriteLaunch prepares the intent file notifyd reads as
// launch parameters on its next resume cycle.
package client
