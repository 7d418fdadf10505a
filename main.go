package main

import "github.com/piggymobile/piggy/cmd"

func main() {
	cmd.Execute()
}
