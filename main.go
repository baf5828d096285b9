package main

import "github.com/mselser95/binarybot/cmd"

func main() {
	cmd.Execute()
}
