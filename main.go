package main

import "github.com/jake-scott/netilion-client/cmd"

func main() {
	cmd.Execute()
}
