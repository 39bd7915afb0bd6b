// Command migrate runs the schema AutoMigrate pass and exits, mirroring the
// teacher's `./be03_app migrate` lightweight subcommand for CI/manual setup.
package main

import (
	"fmt"
	"log"

	"github.com/lucianoflow8/FlowTracking-Backend/internal/store/gormstore"
)

func main() {
	if _, err := gormstore.Open(); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	fmt.Println("migration completed")
}
