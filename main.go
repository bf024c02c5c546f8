package main

import "github.com/cakedaybot/cakeday/cmd"

func main() {
	cmd.Execute()
}
