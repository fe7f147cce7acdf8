package main

import "github.com/oratio-ai/oratio/cmd/oratio/cmd"

func main() {
	cmd.Execute()
}
