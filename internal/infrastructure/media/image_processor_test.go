package media

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractExtension(t *testing.T) {
	cases := map[string]string{
		"data:image/png;base64,AAAA":  "png",
		"data:image/jpeg;base64,AAAA": "jpg",
		"data:image/jpg;base64,AAAA":  "jpg",
		"data:image/webp;base64,AAAA": "webp",
		"data:image/gif;base64,AAAA":  "",
		"not a data uri":              "",
	}
	for data, want := range cases {
		if got := extractExtension(data); got != want {
			t.Errorf("extractExtension(%q) = %q, want %q", data, got, want)
		}
	}
}

func TestWriteBinaryImage(t *testing.T) {
	dir := t.TempDir()
	payload := []byte{0x89, 0x50, 0x4e, 0x47}
	data := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

	path, err := writeBinaryImage(data, "cover.png", dir)
	if err != nil {
		t.Fatalf("writeBinaryImage: %v", err)
	}

	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if string(written) != string(payload) {
		t.Errorf("written bytes = %v, want %v", written, payload)
	}
}

func TestWriteBinaryImageRejectsMalformedPrefix(t *testing.T) {
	if _, err := writeBinaryImage("garbage", "x.png", t.TempDir()); err == nil {
		t.Fatal("expected error for malformed data URI")
	}
}

func TestDeleteCoverImageMissingFilesOK(t *testing.T) {
	p := NewCoverProcessor(t.TempDir())
	if err := p.DeleteCoverImage("/media/covers/prod-123.png"); err != nil {
		t.Fatalf("DeleteCoverImage on missing files: %v", err)
	}
}

func TestDeleteCoverImageRemovesRenditions(t *testing.T) {
	base := t.TempDir()
	p := NewCoverProcessor(base)

	coversDir := filepath.Join(base, "covers")
	thumbsDir := filepath.Join(coversDir, "thumbs")
	if err := os.MkdirAll(thumbsDir, 0755); err != nil {
		t.Fatal(err)
	}
	original := filepath.Join(coversDir, "prod-9.png")
	if err := os.WriteFile(original, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	thumb := filepath.Join(thumbsDir, "prod-9_600px.webp")
	if err := os.WriteFile(thumb, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := p.DeleteCoverImage("/media/covers/prod-9.png"); err != nil {
		t.Fatalf("DeleteCoverImage: %v", err)
	}
	if _, err := os.Stat(original); !os.IsNotExist(err) {
		t.Error("original still present")
	}
	if _, err := os.Stat(thumb); !os.IsNotExist(err) {
		t.Error("rendition still present")
	}
}
