package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadDaemonDefaults(t *testing.T) {
	d, err := LoadDaemon(viper.New(), "")
	if err != nil {
		t.Fatalf("LoadDaemon: %v", err)
	}
	if d.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", d.LogLevel)
	}
	if d.ImageWriterDelayMS != 10 {
		t.Errorf("ImageWriterDelayMS = %d, want 10", d.ImageWriterDelayMS)
	}
}

func TestModelRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := Model{DeviceClass: "original-v2", Serial: "AB12"}
	if err := WriteModel(dir, want); err != nil {
		t.Fatalf("WriteModel: %v", err)
	}

	got, err := LoadModel(dir)
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestLoadModelMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadModel(filepath.Join(dir, "nope"))
	if err == nil {
		t.Error("expected error for missing .model file")
	}
}
