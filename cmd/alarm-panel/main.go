package main

import "github.com/oshokin/vent-alarm/cmd/alarm-panel/cmd"

func main() {
	cmd.Execute()
}
