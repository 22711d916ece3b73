package main

import "github.com/f1stint/f1-tiredata-manager-go/cmd"

func main() {
	cmd.Execute()
}
