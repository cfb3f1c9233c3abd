package main

import "github.com/encodeous/rtsim/cmd"

func main() {
	cmd.Execute()
}
