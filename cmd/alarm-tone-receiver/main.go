package main

import "github.com/oshokin/alarm-tone/cmd/alarm-tone-receiver/cmd"

func main() {
	cmd.Execute()
}
