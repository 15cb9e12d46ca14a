package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"neonclub_backend/internal/config"
)

func TestLocalStorageUpload(t *testing.T) {
	root := t.TempDir()
	svc := NewStorageService(&config.StorageConfig{Type: "local", LocalPath: root})

	url, err := svc.Upload(context.Background(), "thumbnails/a.png", strings.NewReader("png"), 3, "image/png")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "/uploads/thumbnails/a.png" {
		t.Fatalf("url = %q", url)
	}
	data, err := os.ReadFile(filepath.Join(root, "thumbnails", "a.png"))
	if err != nil || string(data) != "png" {
		t.Fatalf("stored file = %q, %v", data, err)
	}

	src := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(src, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	url, err = svc.UploadFile(context.Background(), "videos/clip.mp4", src, "video/mp4")
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if url != "/uploads/videos/clip.mp4" {
		t.Fatalf("url = %q", url)
	}
}

func TestStorageUnknownTypeUsesLocal(t *testing.T) {
	svc := NewStorageService(&config.StorageConfig{Type: "ftp", LocalPath: t.TempDir()})
	if _, ok := svc.Store.(*localStore); !ok {
		t.Fatalf("store = %T, want local fallback", svc.Store)
	}
}
