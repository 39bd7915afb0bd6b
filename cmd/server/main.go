// Command server boots the WhatsApp receipt-ingestion HTTP service:
// config, persistence, the line session manager, and the gin HTTP surface.
package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/lucianoflow8/FlowTracking-Backend/internal/adsevent"
	"github.com/lucianoflow8/FlowTracking-Backend/internal/config"
	"github.com/lucianoflow8/FlowTracking-Backend/internal/httpapi"
	"github.com/lucianoflow8/FlowTracking-Backend/internal/router"
	"github.com/lucianoflow8/FlowTracking-Backend/internal/session"
	"github.com/lucianoflow8/FlowTracking-Backend/internal/store/fsobjectstore"
	"github.com/lucianoflow8/FlowTracking-Backend/internal/store/gormstore"
)

func main() {
	cfg := config.Load()

	rows, err := gormstore.Open()
	if err != nil {
		log.Fatalf("server: connect to database: %v", err)
	}

	objects, err := fsobjectstore.New(cfg.UploadBase, cfg.PublicMediaURL)
	if err != nil {
		log.Fatalf("server: prepare object store: %v", err)
	}

	var ads *adsevent.Client
	if cfg.AdsPixelID != "" && cfg.AdsAccessToken != "" {
		ads = adsevent.NewClient(cfg.AdsPixelID, cfg.AdsAccessToken)
	}

	inbound := router.New(rows, objects, ads).WithMPForceX1000(cfg.MPForceX1000)

	// session.NewFakeClient is the documented seam for a real WhatsApp Web
	// driver (out of scope for this service, see DESIGN.md); it opens no
	// browser, emits no events, and reports ready to the health probe.
	sessions := session.NewManager(cfg.AuthRoot, session.NewFakeClient)

	srv := &httpapi.Server{
		Sessions: sessions,
		Router:   inbound,
		Rows:     rows,
		Pricing:  httpapi.Pricing{UnitUSD: 0.05, MinCredits: 100},
	}

	r := gin.Default()
	r.Use(httpapi.CORSMiddleware(cfg.AllowedOrigins))
	srv.Routes(r)

	log.Printf("server: listening on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
