// Package httpapi is the line-control HTTP surface: a thin gin layer over
// the session manager and router, following the teacher's handlers.go
// conventions (writeError, plain gin.H bodies, no middleware framework
// beyond gin's own).
package httpapi

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/lucianoflow8/FlowTracking-Backend/internal/router"
	"github.com/lucianoflow8/FlowTracking-Backend/internal/session"
	"github.com/lucianoflow8/FlowTracking-Backend/internal/store"
)

// Pricing is the static pricing the /pricing endpoint reports.
type Pricing struct {
	UnitUSD    float64
	MinCredits int
}

// Server wires the session manager, inbound router, and row store into the
// line-control HTTP surface.
type Server struct {
	Sessions *session.Manager
	Router   *router.Router
	Rows     store.RowStore
	Pricing  Pricing
}

func writeError(c *gin.Context, status int, code, msg string, extra gin.H) {
	body := gin.H{"error": code}
	if msg != "" {
		body["message"] = msg
	}
	for k, v := range extra {
		body[k] = v
	}
	if status >= 500 {
		log.Printf("HTTP %d error code=%s msg=%s path=%s", status, code, msg, c.FullPath())
	}
	c.AbortWithStatusJSON(status, body)
}

// Routes registers every endpoint from the line-control surface onto r.
func (s *Server) Routes(r *gin.Engine) {
	r.GET("/health", s.healthHandler)
	r.GET("/qr", s.qrPageHandler)
	r.GET("/lines/:id/events", s.lineEventsHandler)
	r.POST("/lines/:id/qr", s.lineQRHandler)
	r.GET("/lines/:id/status", s.lineStatusHandler)
	r.GET("/lines/:id/qr.png", s.lineQRPNGHandler)
	r.POST("/lines/:id/restart", s.lineRestartHandler)
	r.POST("/lines/:id/start", s.lineStartHandler)
	r.POST("/api/chats/new", s.chatsNewHandler)
	r.POST("/dev/incoming", s.devIncomingHandler)
	r.GET("/pricing", s.pricingHandler)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) pricingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"unit_usd":    s.Pricing.UnitUSD,
		"min_credits": s.Pricing.MinCredits,
		"currency":    "USD",
	})
}

// qrPageHandler serves a minimal HTML page that drives its QR image off the
// SSE stream at /lines/:id/events, matching the teacher's own preference for
// hand-rolled HTML over a templating dependency for a single static page.
func (s *Server) qrPageHandler(c *gin.Context) {
	lineID := c.Query("line_id")
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, qrPageHTML, lineID)
}

const qrPageHTML = `<!doctype html>
<html><head><meta charset="utf-8"><title>WhatsApp QR</title></head>
<body>
<h3 id="status">Generando QR…</h3>
<img id="qr" style="display:none" />
<script>
const lineID = %q;
const es = new EventSource("/lines/" + lineID + "/events");
es.onmessage = (ev) => {
  const data = JSON.parse(ev.data);
  const status = document.getElementById("status");
  const img = document.getElementById("qr");
  if (data.qr) {
    img.src = "/lines/" + lineID + "/qr.png?t=" + Date.now();
    img.style.display = "block";
    status.textContent = "Escaneá el código";
  } else if (data.status === "ready" || data.status === "authenticated") {
    status.textContent = "Conectado";
    img.style.display = "none";
  } else if (data.status === "disconnected" || data.status === "restarting") {
    status.textContent = "Reconectando…";
  }
};
</script>
</body></html>`

// lineEventsHandler streams {status, phone, qr} as Server-Sent Events,
// polling the in-memory line state at ~700ms the way the teacher's QR page
// is documented to.
func (s *Server) lineEventsHandler(c *gin.Context) {
	lineID := c.Param("id")
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ticker := time.NewTicker(700 * time.Millisecond)
	defer ticker.Stop()

	var lastState session.State
	var lastQR string
	first := true

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-ticker.C:
		}

		line, ok := s.Sessions.Line(lineID)
		if !ok {
			if first {
				fmt.Fprintf(w, "data: %s\n\n", `{"status":"not_initialized"}`)
				first = false
			}
			return true
		}

		state, qr := line.State(), line.QR()
		if first || state != lastState || qr != lastQR {
			fmt.Fprintf(w, "data: {\"status\":%q,\"phone\":%q,\"qr\":%q}\n\n", state, line.Phone(), qr)
			lastState, lastQR, first = state, qr, false
		}
		return true
	})
}

// lineQRHandler waits up to ~30s for a line to reach the QR state, polling
// every 500ms, and reports whatever it last saw.
func (s *Server) lineQRHandler(c *gin.Context) {
	lineID := c.Param("id")
	deadline := time.Now().Add(30 * time.Second)

	for {
		line, ok := s.Sessions.Line(lineID)
		if !ok {
			writeError(c, http.StatusNotFound, "qr_failed", "line not initialized", nil)
			return
		}
		if qr := line.QR(); qr != "" {
			c.JSON(http.StatusOK, gin.H{"status": string(line.State()), "qr": qr})
			return
		}
		if line.State() == session.StateReady || line.State() == session.StateAuthenticated {
			c.JSON(http.StatusOK, gin.H{"status": string(line.State()), "qr": nil})
			return
		}
		if time.Now().After(deadline) {
			c.JSON(http.StatusOK, gin.H{"status": string(line.State()), "qr": nil})
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func (s *Server) lineStatusHandler(c *gin.Context) {
	lineID := c.Param("id")
	line, ok := s.Sessions.Line(lineID)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": "not_initialized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(line.State()), "phone": line.Phone()})
}

func (s *Server) lineQRPNGHandler(c *gin.Context) {
	lineID := c.Param("id")
	line, ok := s.Sessions.Line(lineID)
	if !ok || line.QR() == "" {
		c.Status(http.StatusNotFound)
		return
	}
	png, err := qrcode.Encode(line.QR(), qrcode.Medium, 256)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "qr_failed", "", nil)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) lineRestartHandler(c *gin.Context) {
	lineID := c.Param("id")
	line, ok := s.Sessions.Line(lineID)
	if !ok {
		writeError(c, http.StatusNotFound, "restart_failed", "line not initialized", nil)
		return
	}
	go s.Sessions.Restart(context.Background(), line)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) lineStartHandler(c *gin.Context) {
	lineID := c.Param("id")
	if err := s.Rows.Upsert(c.Request.Context(), &store.Line{ID: lineID, State: "qr_ready"}, []string{"id"}); err != nil {
		writeError(c, http.StatusInternalServerError, "status_failed", "", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) chatsNewHandler(c *gin.Context) {
	var req struct {
		ProjectID string `json:"project_id" binding:"required"`
		PageID    string `json:"page_id"`
		Slug      string `json:"slug"`
		LineID    string `json:"line_id"`
		WaPhone   string `json:"wa_phone"`
		Contact   string `json:"contact" binding:"required"`
		Message   string `json:"message"`
		Name      string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_body", "", nil)
		return
	}

	msg := router.IncomingMessage{
		MessageID: fmt.Sprintf("manual-%d", time.Now().UnixNano()),
		LineID:    req.LineID,
		ChatID:    req.Contact,
		Phone:     req.WaPhone,
		Contact:   req.Contact,
		Name:      req.Name,
		Text:      req.Message,
		Timestamp: time.Now(),
	}
	if err := s.Router.Dispatch(c.Request.Context(), msg); err != nil {
		writeError(c, http.StatusInternalServerError, "insert_failed", "", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// devIncomingHandler simulates an inbound message for local testing,
// optionally carrying a base64-free raw attachment body.
func (s *Server) devIncomingHandler(c *gin.Context) {
	var req struct {
		LineID    string `json:"line_id" binding:"required"`
		ChatID    string `json:"chat_id"`
		Phone     string `json:"phone"`
		Text      string `json:"text"`
		MediaMime string `json:"media_mime"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_body", "", nil)
		return
	}

	msg := router.IncomingMessage{
		MessageID: fmt.Sprintf("dev-%d", time.Now().UnixNano()),
		LineID:    req.LineID,
		ChatID:    req.ChatID,
		Phone:     req.Phone,
		Text:      req.Text,
		MediaMime: req.MediaMime,
		HasMedia:  req.MediaMime != "",
		Timestamp: time.Now(),
	}
	if err := s.Router.Dispatch(c.Request.Context(), msg); err != nil {
		writeError(c, http.StatusInternalServerError, "insert_failed", "", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// CORSMiddleware mirrors the teacher's ALLOWED_ORIGINS-driven CORS
// middleware, generalized to take its allowlist as a parameter instead of
// reading the environment directly.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimSpace(o)] = struct{}{}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if _, ok := allowed[origin]; ok {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
