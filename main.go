package main

import "github.com/frahmantamala/inventory-lending/cmd"

func main() {
	cmd.Execute()
}
