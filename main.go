package main

import "offrows/cmd"

func main() {
	cmd.Execute()
}
