package main

import "github.com/oshokin/local-notification/cmd/notifyctl/cmd"

func main() {
	cmd.Execute()
}
