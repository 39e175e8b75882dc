package main

import "warbler/cmd/warblerctl/commands"

func main() {
	commands.Execute()
}
