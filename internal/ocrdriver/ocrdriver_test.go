package ocrdriver

import "testing"

func TestNormalizeOCRTextCollapsesWhitespace(t *testing.T) {
	got := normalizeOCRText("Mercado   Pago\t\n\n$  15.000,00  ")
	want := "Mercado Pago\n\n$ 15.000,00"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestTextFromMediaRejectsUnsupportedMimetype(t *testing.T) {
	_, err := TextFromMedia([]byte("whatever"), "text/plain")
	if err != ErrUnsupportedMedia {
		t.Fatalf("expected ErrUnsupportedMedia, got %v", err)
	}
}

func TestTextFromMediaRejectsBrokenPDF(t *testing.T) {
	_, err := TextFromMedia([]byte("not a pdf"), "application/pdf")
	if err == nil {
		t.Fatalf("expected error for malformed pdf")
	}
}

func TestTextFromMediaRejectsBrokenImage(t *testing.T) {
	_, err := TextFromMedia([]byte("not an image"), "image/png")
	if err == nil {
		t.Fatalf("expected error for malformed image")
	}
}
