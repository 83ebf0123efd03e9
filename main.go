package main

import "portfolio-server/cmd"

func main() {
	cmd.Execute()
}
