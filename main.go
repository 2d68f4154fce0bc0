package main

import "github.com/filmspin/filmspin/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
