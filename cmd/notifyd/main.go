package main

import "github.com/oshokin/local-notification/cmd/notifyd/cmd"

func main() {
	cmd.Execute()
}
