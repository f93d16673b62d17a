package main

import "github.com/clipstream/clipstream-go/internal/cmd"

func main() {
	cmd.Execute()
}
