package statefile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAndReadCurrentPage(t *testing.T) {
	dir := t.TempDir()
	n := 3
	name := "main"
	overlay := false
	if err := WriteCurrentPage(dir, CurrentPage{Number: &n, Name: &name, IsOverlay: &overlay}); err != nil {
		t.Fatalf("WriteCurrentPage: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, CurrentPageName))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty file")
	}
}

func TestSetCurrentPageReadAndClear(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, SetCurrentPageName)
	if err := os.WriteFile(path, []byte(`{"page":"2","is_overlay":true}`), 0o644); err != nil {
		t.Fatal(err)
	}

	req, ok := ReadAndClearSetCurrentPage(dir)
	if !ok {
		t.Fatal("expected ok")
	}
	if req.Page != "2" || !req.IsOverlay {
		t.Errorf("got %+v", req)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected file to be removed after read")
	}
}

func TestSetCurrentPageMalformedDiscarded(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, SetCurrentPageName)
	if err := os.WriteFile(path, []byte(`not json`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, ok := ReadAndClearSetCurrentPage(dir)
	if ok {
		t.Error("expected malformed file to be discarded")
	}
}

func TestSetCurrentPageAbsent(t *testing.T) {
	dir := t.TempDir()
	_, ok := ReadAndClearSetCurrentPage(dir)
	if ok {
		t.Error("expected absent file to report not-ok")
	}
}

func TestIsReserved(t *testing.T) {
	if !IsReserved(".current_page") || !IsReserved(".set_current_page") {
		t.Error("expected both reserved names recognized")
	}
	if IsReserved("PAGE_1") {
		t.Error("did not expect PAGE_1 to be reserved")
	}
}
