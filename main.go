package main

import "github.com/KaramelBytes/pitchloom/cmd"

func main() {
	cmd.Execute()
}
