package main

import "github.com/lepinkainen/shelf/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
