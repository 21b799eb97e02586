package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestURLFor(t *testing.T) {
	tests := []struct {
		ext     string
		want    string
		wantErr bool
	}{
		{"zip", ZipURL, false},
		{"tar.gz", TarGzURL, false},
		{"rar", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			got, err := URLFor(tt.ext)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("URLFor(%q): %v", tt.ext, err)
			}
			if got != tt.want {
				t.Errorf("URLFor(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("dump-bytes"))
	}))
	defer srv.Close()

	outfile := filepath.Join(t.TempDir(), "taxdmp.zip")
	if err := Fetch(context.Background(), srv.URL, outfile); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	content, err := os.ReadFile(outfile)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "dump-bytes" {
		t.Errorf("downloaded content = %q", content)
	}
}

func TestFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	outfile := filepath.Join(t.TempDir(), "taxdmp.zip")
	if err := Fetch(context.Background(), srv.URL, outfile); err == nil {
		t.Fatal("expected error for 404 response")
	}
	if _, err := os.Stat(outfile); !os.IsNotExist(err) {
		t.Error("partial file left behind after failed fetch")
	}
}
