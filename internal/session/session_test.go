package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStartTransitionsThroughQRToReady(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, NewFakeClient)

	line, err := m.Start(context.Background(), "line-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if line.State() != StateLoading {
		t.Fatalf("expected loading after initialize, got %s", line.State())
	}

	fc := line.client.(*FakeClient)
	fc.Emit(Event{Type: EventQR, QR: "qr-payload"})
	if line.State() != StateQR || line.QR() != "qr-payload" {
		t.Fatalf("expected qr state with payload, got state=%s qr=%s", line.State(), line.QR())
	}

	fc.Emit(Event{Type: EventAuthenticated})
	if line.State() != StateAuthenticated {
		t.Fatalf("expected authenticated, got %s", line.State())
	}

	fc.Emit(Event{Type: EventReady})
	if line.State() != StateReady || line.QR() != "" {
		t.Fatalf("expected ready with cleared qr, got state=%s qr=%s", line.State(), line.QR())
	}
}

func TestReadyResolvesPhoneFromClient(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, NewFakeClient)

	line, err := m.Start(context.Background(), "line-phone")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	fc := line.client.(*FakeClient)
	fc.Phone = "5491122334455"
	fc.Emit(Event{Type: EventReady})

	deadline := time.Now().Add(2 * time.Second)
	for line.Phone() == "" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if line.Phone() != "5491122334455" {
		t.Fatalf("expected resolved phone, got %q", line.Phone())
	}
}

func TestDisconnectClearsResolvedPhone(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, NewFakeClient)

	line, err := m.Start(context.Background(), "line-phone-2")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	fc := line.client.(*FakeClient)
	fc.Phone = "5491100000000"
	fc.Emit(Event{Type: EventReady})

	deadline := time.Now().Add(2 * time.Second)
	for line.Phone() == "" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if line.Phone() == "" {
		t.Fatalf("expected phone resolved before disconnect")
	}

	fc.Emit(Event{Type: EventDisconnected})
	if line.Phone() != "" {
		t.Fatalf("expected phone cleared after disconnect, got %q", line.Phone())
	}
}

func TestLogoutPurgesAuthDir(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, NewFakeClient)

	line, err := m.Start(context.Background(), "line-2")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	marker := filepath.Join(line.AuthDir, "session.json")
	if err := os.WriteFile(marker, []byte("{}"), 0o644); err != nil {
		t.Fatalf("seed auth dir: %v", err)
	}

	fc := line.client.(*FakeClient)
	fc.Emit(Event{Type: EventLogout})

	if line.State() != StateDisconnected {
		t.Fatalf("expected disconnected after logout, got %s", line.State())
	}
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Fatalf("expected auth dir contents purged, stat err=%v", err)
	}
	if _, err := os.Stat(line.AuthDir); err != nil {
		t.Fatalf("expected auth dir recreated: %v", err)
	}
}

func TestRestartReinitializesClientAndIncrementsCounter(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, NewFakeClient)
	m.restartDelay = time.Millisecond

	line, err := m.Start(context.Background(), "line-3")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	original := line.client.(*FakeClient)

	m.restart(context.Background(), line)

	if line.restarts != 1 {
		t.Fatalf("expected restarts=1, got %d", line.restarts)
	}
	if !original.destroyed {
		t.Fatalf("expected original client destroyed")
	}
	if line.client.(*FakeClient) == original {
		t.Fatalf("expected a fresh client instance after restart")
	}
	if line.State() != StateLoading {
		t.Fatalf("expected loading after successful restart, got %s", line.State())
	}
}
