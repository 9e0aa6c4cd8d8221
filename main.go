package main

import "github.com/andresmejia3/facepill/cmd"

func main() {
	cmd.Execute()
}
