package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func render(t *testing.T, in string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := RenderMarkdown(&buf, in); err != nil {
		t.Fatalf("RenderMarkdown(%q) error: %v", in, err)
	}
	return buf.String()
}

func TestRenderMarkdownInline(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"~~gone~~", "<del>gone</del>"},
		{"`code`", "<code>code</code>"},
	}
	for _, tt := range tests {
		got := render(t, tt.input)
		if !strings.Contains(got, tt.expected) {
			t.Errorf("RenderMarkdown(%q) = %q, want it to contain %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderMarkdownHeadingIDs(t *testing.T) {
	got := render(t, "## Overview")
	if !strings.Contains(got, `<h2 id="overview">Overview</h2>`) {
		t.Errorf("heading missing auto id: %q", got)
	}
}

func TestRenderMarkdownDropsRawHTML(t *testing.T) {
	got := render(t, "<script>alert(1)</script>\n\ntext")
	if strings.Contains(got, "<script>") {
		t.Errorf("raw HTML should be omitted: %q", got)
	}
	if !strings.Contains(got, "text") {
		t.Errorf("text missing: %q", got)
	}
}

func TestRenderMarkdownLazyImages(t *testing.T) {
	got := render(t, "![cover](/uploads/a.jpg)")
	if !strings.Contains(got, `loading="lazy"`) {
		t.Errorf("image should load lazily: %q", got)
	}
}

func TestRenderMarkdownTable(t *testing.T) {
	got := render(t, "| a | b |\n|---|---|\n| 1 | 2 |")
	if !strings.Contains(got, "<table>") || !strings.Contains(got, "<td>1</td>") {
		t.Errorf("table not rendered: %q", got)
	}
}

func TestMarkdownComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown("- one\n- two").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "<li>one</li>") {
		t.Errorf("list not rendered: %q", buf.String())
	}
}
