package main

import "vehicle-sync/cmd"

func main() {
	cmd.Execute()
}
