package main

import "oniazusa/cmd"

func main() {
	cmd.Execute()
}
