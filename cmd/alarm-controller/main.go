package main

import "github.com/oshokin/vent-alarm/cmd/alarm-controller/cmd"

func main() {
	cmd.Execute()
}
