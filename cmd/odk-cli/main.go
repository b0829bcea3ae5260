package main

import (
	"context"
	"odk-pull/cmd/odk-cli/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
