package main

import "github.com/aitests/aitests/cmd"

func main() {
	cmd.Execute()
}
