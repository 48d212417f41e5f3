package main

import "github.com/dotcommander/glsllint/cmd"

func main() {
	cmd.Execute()
}
