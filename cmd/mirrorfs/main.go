package main

import "github.com/aweris/mirrorfs/cmd/mirrorfs/cmd"

func main() {
	cmd.Execute()
}
