package main

import "github.com/osinstall/flatsource/cmd/flatsource/cmd"

func main() {
	cmd.Execute()
}
