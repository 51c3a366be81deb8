package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalWriteRecipeImage(t *testing.T) {
	baseDir := t.TempDir()
	store := NewLocal(baseDir, "/files")
	data := []byte("png bytes")

	urlPath, err := store.WriteRecipeImage(context.Background(), "01ABC.png", data)
	if err != nil {
		t.Fatalf("WriteRecipeImage() error = %v", err)
	}
	if urlPath != "/files/recipes/01ABC.png" {
		t.Errorf("WriteRecipeImage() urlPath = %q, want %q", urlPath, "/files/recipes/01ABC.png")
	}

	content, err := os.ReadFile(filepath.Join(baseDir, "recipes", "01ABC.png"))
	if err != nil {
		t.Fatalf("failed to read written file: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("file content = %q, want %q", content, data)
	}
}

func TestLocalURLPrefixNormalized(t *testing.T) {
	store := NewLocal(t.TempDir(), "files/")

	urlPath, err := store.WriteRecipeImage(context.Background(), "x.png", []byte("data"))
	if err != nil {
		t.Fatalf("WriteRecipeImage() error = %v", err)
	}
	if urlPath != "/files/recipes/x.png" {
		t.Errorf("urlPath = %q, want %q", urlPath, "/files/recipes/x.png")
	}
}

func TestLocalDeleteRecipeImage(t *testing.T) {
	baseDir := t.TempDir()
	store := NewLocal(baseDir, "/files")

	if _, err := store.WriteRecipeImage(context.Background(), "gone.png", []byte("data")); err != nil {
		t.Fatalf("WriteRecipeImage() error = %v", err)
	}
	if err := store.DeleteRecipeImage(context.Background(), "gone.png"); err != nil {
		t.Fatalf("DeleteRecipeImage() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(baseDir, "recipes", "gone.png")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected file to be removed, stat error = %v", err)
	}
}
