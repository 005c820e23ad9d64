package main

import "github.com/cosplay-angola/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
