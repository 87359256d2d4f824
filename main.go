package main

import "github.com/sap-gg/clifeed/cmd"

func main() {
	cmd.Execute()
}
