package storage_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/ordersync/ordersync/config"
	"github.com/ordersync/ordersync/pkg/storage"
)

func setup(t *testing.T) {
	t.Helper()
	config.Set("STORAGE_LOCAL_ROOT", t.TempDir())
	config.Set("STORAGE_DISK", "local")
	storage.Connect()
}

func TestLocalDiskRoundtrip(t *testing.T) {
	setup(t)

	if storage.Exists("images/photo.jpg") {
		t.Fatal("file exists before Put")
	}
	if err := storage.Put("images/photo.jpg", []byte("jpeg bytes")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !storage.Exists("images/photo.jpg") {
		t.Fatal("file missing after Put")
	}

	got, err := storage.Get("images/photo.jpg")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "jpeg bytes" {
		t.Errorf("content = %q", got)
	}

	size, err := storage.Default().Size("images/photo.jpg")
	if err != nil || size != int64(len("jpeg bytes")) {
		t.Errorf("size = %d, err = %v", size, err)
	}

	if err := storage.Delete("images/photo.jpg"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if storage.Exists("images/photo.jpg") {
		t.Error("file survived Delete")
	}
	// Deleting a missing file is not an error.
	if err := storage.Delete("images/photo.jpg"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestPutStream(t *testing.T) {
	setup(t)

	if err := storage.PutStream("uploads/a.bin", bytes.NewReader([]byte{1, 2, 3})); err != nil {
		t.Fatalf("putstream: %v", err)
	}
	rc, err := storage.Default().GetStream("uploads/a.bin")
	if err != nil {
		t.Fatalf("getstream: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if len(got) != 3 || got[2] != 3 {
		t.Errorf("content = %v", got)
	}
}

func TestURLUsesConfiguredPrefix(t *testing.T) {
	config.Set("STORAGE_URL", "http://localhost:5000/storage")
	setup(t)

	url := storage.URL("orders/x.png")
	if !strings.HasPrefix(url, "http://localhost:5000/storage/") || !strings.HasSuffix(url, "orders/x.png") {
		t.Errorf("url = %q", url)
	}
}

type nullDisk struct{ storage.Disk }

func TestRegisterCustomDisk(t *testing.T) {
	setup(t)
	storage.Register("null", nullDisk{})
	if storage.Use("null") == nil {
		t.Error("registered disk not returned")
	}
}
