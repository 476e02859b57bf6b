package main

import "mspro-labs/tea-buddy/cmd"

func main() {
	cmd.Execute()
}
