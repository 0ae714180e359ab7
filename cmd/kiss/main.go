package main

import "github.com/hud-software/kiss/cmd/kiss/internal"

func main() {
	internal.Execute()
}
