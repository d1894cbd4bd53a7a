package main

import "github.com/vietdv277/keyrot/cmd"

func main() {
	cmd.Execute()
}
