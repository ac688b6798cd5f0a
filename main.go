package main

import "github.com/vibast-solutions/go-donation-client/cmd"

func main() {
	cmd.Execute()
}
