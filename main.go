package main

import (
	"log"
	"os"

	"github.com/anicoll/iotawatt-chargehq/cmd"
)

func main() {
	app := cmd.NewApp(cmd.RelayCommand)

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
