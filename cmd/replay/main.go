// Command replay runs the receipt pipeline over a single attachment file and
// prints the recognized fields, the teacher's own cmd_debug_ocr workflow
// generalized to the full pipeline instead of just amount extraction.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucianoflow8/FlowTracking-Backend/internal/receipt"
)

var extMime = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".pdf":  "application/pdf",
}

func main() {
	file := flag.String("file", "", "receipt attachment to replay through the pipeline")
	mimeFlag := flag.String("mime", "", "mimetype override, inferred from extension if omitted")
	mpForceX1000 := flag.Bool("mp-force-x1000", true, "apply the Mercado Pago x1000 amount-scale rule")
	flag.Parse()

	if *file == "" {
		log.Fatal("-file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("replay: read %s: %v", *file, err)
	}

	mime := *mimeFlag
	if mime == "" {
		mime = extMime[strings.ToLower(filepath.Ext(*file))]
	}
	if mime == "" {
		log.Fatalf("replay: cannot infer mimetype for %s, pass -mime", *file)
	}

	rec, err := receipt.Process(data, mime, *mpForceX1000)
	if err != nil {
		log.Fatalf("replay: pipeline error: %v", err)
	}

	fmt.Printf("accepted=%v rule=%q score=%d amount=%.2f provider=%q\n", rec.Accepted, rec.Rule, rec.Score, rec.Amount, rec.Provider)
	fmt.Printf("origin=%+v\n", rec.Fields.Origin)
	fmt.Printf("destination=%+v\n", rec.Fields.Destination)
	fmt.Printf("concept=%q reference=%q transaction=%q\n", rec.Fields.Concept, rec.Fields.Reference, rec.Fields.Transaction)
}
