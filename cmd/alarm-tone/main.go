package main

import "github.com/oshokin/alarm-tone/cmd/alarm-tone/cmd"

func main() {
	cmd.Execute()
}
