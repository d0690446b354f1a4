package main

import (
	"os"

	"github.com/OliveiraNt/polyglot/cmd"
	"github.com/OliveiraNt/polyglot/internal/utils"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	utils.InitLogger()

	if err := cmd.Execute(); err != nil {
		utils.Logger.Error("polyglot failed", "err", err)
		os.Exit(1)
	}
}
