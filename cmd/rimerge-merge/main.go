package main

import "github.com/marco-oliva/rimerge/cmd/rimerge-merge/cmd"

func main() {
	cmd.Run()
}
