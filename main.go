package main

import "github.com/andresmejia3/attend/cmd"

func main() {
	cmd.Execute()
}
