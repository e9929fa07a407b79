package main

import "github.com/abhi01978/Panda/cmd"

func main() {
	cmd.Execute()
}
