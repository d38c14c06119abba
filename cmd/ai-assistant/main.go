package main

import "github.com/jasperwreed/ai-assistant/internal/cli"

func main() {
	cli.Execute()
}
