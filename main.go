package main

import "github.com/outboundops/smartlead-sync/cmd"

func main() {
	cmd.Execute()
}
