package main

import "github.com/Mohsinsiddi/andycoin/cmd"

func main() {
	cmd.Execute()
}
