package main

import "github.com/pipeforge/pipeforge/cmd/pipeforge/internal"

func main() {
	internal.Execute()
}
