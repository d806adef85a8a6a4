package main

import "github.com/docriver/gateway/cmd"

func main() {
	cmd.Execute()
}
