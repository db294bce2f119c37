package main

import (
	"flag"
	"log"

	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/vietanh2810/registration-api/cmd/app"
)

// @title        Event registration API
// @version      1.0
// @description  Accepts festival registrations with a payment receipt, appends them to the ledger and emails a confirmation.
//
// @contact.name   Festival Tech Team
// @contact.email  tech@example.com
//
// @accept   json,mpfd
// @produce  plain
//
// @externalDocs.description  OpenAPI
// @externalDocs.url          https://swagger.io/resources/open-api/
func main() {
	configPath := flag.String("config", "./cmd/app/config.yml", "path to the YAML config file")
	flag.Parse()

	if err := app.Start(*configPath); err != nil {
		log.Fatalf("registration-api: %v", err)
	}
}
