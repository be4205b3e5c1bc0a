package main

import (
	"github.com/joho/godotenv"

	"replycast/cmd"
)

func main() {
	_ = godotenv.Load()

	cmd.Execute()
}
