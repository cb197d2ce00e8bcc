package main

import "crewdeck/cmd/crewdeck/commands"

func main() {
	commands.Execute()
}
