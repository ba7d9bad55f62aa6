package main

import "github.com/librarydirecto/catalogapi/cmd/catalogapi/cmd"

func main() {
	cmd.Execute()
}
