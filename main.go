package main

import "github.com/hoppxi/brux/internal/cmd"

func main() {
	cmd.Execute()
}
