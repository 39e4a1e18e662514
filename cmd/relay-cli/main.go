package main

import "webremote/cmd/relay-cli/command"

func main() {
	command.Execute()
}
