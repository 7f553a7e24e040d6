package extractor

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestRegistrySupportsByExtension(t *testing.T) {
	reg := Default()
	for _, name := range []string{"services.json", "Use_Cases.JSON", "faq.yaml", "faq.yml", "notes.md", "a.txt", "deck.pdf", "roi.xlsx"} {
		if !reg.Supports(name) {
			t.Fatalf("expected %s to be supported", name)
		}
	}
	for _, name := range []string{"image.png", "README", "archive.zip"} {
		if reg.Supports(name) {
			t.Fatalf("expected %s to be ignored", name)
		}
	}
}

func TestJSONIsCompactAndKeepsUnicode(t *testing.T) {
	src := `{
  "service": "Café <AI> & Automation",
  "metrics": {"roi": "180-260%"}
}`
	text, err := Default().Extract(context.Background(), "services.json", strings.NewReader(src))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := `{"metrics":{"roi":"180-260%"},"service":"Café <AI> & Automation"}`
	if text != want {
		t.Fatalf("Extract() = %s, want %s", text, want)
	}
}

func TestJSONRejectsMalformedInput(t *testing.T) {
	if _, err := Default().Extract(context.Background(), "broken.json", strings.NewReader(`{"a":`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestYAMLBecomesCompactJSON(t *testing.T) {
	src := "service: Chatbots\nmetrics:\n  roi: 150%\n  weeks: 6\n"
	text, err := Default().Extract(context.Background(), "services.yaml", strings.NewReader(src))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := `{"metrics":{"roi":"150%","weeks":6},"service":"Chatbots"}`
	if text != want {
		t.Fatalf("Extract() = %s, want %s", text, want)
	}
}

func TestYAMLStringifiesNonStringKeys(t *testing.T) {
	text, err := Default().Extract(context.Background(), "years.yml", strings.NewReader("2024: growth\n"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != `{"2024":"growth"}` {
		t.Fatalf("unexpected text %s", text)
	}
}

func TestPlainTextRejectsBinary(t *testing.T) {
	if _, err := Default().Extract(context.Background(), "a.txt", bytes.NewReader([]byte{0xff, 0xfe, 0xfd})); err == nil {
		t.Fatalf("expected error for invalid utf-8")
	}
	text, err := Default().Extract(context.Background(), "a.md", strings.NewReader("  # Title\n"))
	if err != nil || text != "# Title" {
		t.Fatalf("unexpected result %q, %v", text, err)
	}
}

func TestXLSXRendersRows(t *testing.T) {
	book := excelize.NewFile()
	defer book.Close()
	if err := book.SetSheetRow("Sheet1", "A1", &[]any{"Use case", "ROI"}); err != nil {
		t.Fatalf("SetSheetRow() error = %v", err)
	}
	if err := book.SetSheetRow("Sheet1", "A2", &[]any{"Claims triage", "180-260%"}); err != nil {
		t.Fatalf("SetSheetRow() error = %v", err)
	}
	var buf bytes.Buffer
	if err := book.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	text, err := Default().Extract(context.Background(), "use_cases.xlsx", &buf)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := "# Sheet1\nUse case\tROI\nClaims triage\t180-260%"
	if text != want {
		t.Fatalf("Extract() = %q, want %q", text, want)
	}
}

func TestPDFRejectsGarbage(t *testing.T) {
	if _, err := Default().Extract(context.Background(), "deck.pdf", strings.NewReader("not a pdf")); err == nil {
		t.Fatalf("expected error")
	}
}
