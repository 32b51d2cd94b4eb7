package ingest

import (
	"errors"
	"strings"
	"testing"

	"nexlify-ingest/internal/service"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
		wantErr  bool
		contains []string
		excludes []string
	}{
		{
			name:     "plain text passes through",
			filename: "notes.txt",
			data:     "line one\nline two",
			contains: []string{"line one", "line two"},
		},
		{
			name:     "html is stripped",
			filename: "page.html",
			data:     "<html><body><h1>Deploy Guide</h1><p>Step one &amp; two</p></body></html>",
			contains: []string{"Deploy Guide", "Step one & two"},
			excludes: []string{"<h1>", "<p>"},
		},
		{
			name:     "htm extension also handled",
			filename: "page.htm",
			data:     "<p>hello</p>",
			contains: []string{"hello"},
		},
		{
			name:     "markdown is flattened",
			filename: "README.md",
			data:     "# Title\n\nSome *emphasised* text.\n\n- item one\n- item two\n",
			contains: []string{"Title", "emphasised", "item one", "item two"},
			excludes: []string{"#", "*", "- "},
		},
		{
			name:     "unsupported extension rejected",
			filename: "scan.pdf",
			data:     "%PDF-1.4",
			wantErr:  true,
		},
		{
			name:     "no extension rejected",
			filename: "archive",
			data:     "data",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractText(tt.filename, []byte(tt.data))

			if tt.wantErr {
				if err == nil {
					t.Fatal("ExtractText() expected error, got nil")
				}
				if !errors.Is(err, service.ErrInvalidInput) {
					t.Errorf("ExtractText() error = %v, want ErrInvalidInput", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("ExtractText() unexpected error: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("ExtractText() = %q, missing %q", got, want)
				}
			}
			for _, exclude := range tt.excludes {
				if strings.Contains(got, exclude) {
					t.Errorf("ExtractText() = %q, should not contain %q", got, exclude)
				}
			}
		})
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "block elements become line breaks",
			html: "<p>first</p><p>second</p>",
			want: "first\nsecond",
		},
		{
			name: "script and style removed entirely",
			html: "<style>body{}</style><p>visible</p><script>alert(1)</script>",
			want: "visible",
		},
		{
			name: "comments removed",
			html: "<!-- hidden --><p>shown</p>",
			want: "shown",
		},
		{
			name: "entities decoded",
			html: "<p>a &lt; b &amp;&amp; c &gt; d</p>",
			want: "a < b && c > d",
		},
		{
			name: "br becomes newline",
			html: "one<br/>two<br>three",
			want: "one\ntwo\nthree",
		},
		{
			name: "table rows split into lines",
			html: "<table><tr><td>cell one</td></tr><tr><td>cell two</td></tr></table>",
			want: "cell one\ncell two",
		},
		{
			name: "blank lines dropped and spaces collapsed",
			html: "<div>   spaced    out   </div><div></div><div>next</div>",
			want: "spaced out\nnext",
		},
		{
			name: "empty input",
			html: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripHTML(tt.html)
			if got != tt.want {
				t.Errorf("StripHTML() = %q, want %q", got, tt.want)
			}
		})
	}
}
