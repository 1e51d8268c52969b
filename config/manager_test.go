package config_test

import (
	"testing"

	"github.com/spf13/afero"

	"cinelog/config"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	manager := config.NewManagerWithFs("data/settings.json", afero.NewMemMapFs())

	settings, err := manager.Load()
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if settings.Server.ListenAddr != ":8686" {
		t.Fatalf("unexpected default listen addr %q", settings.Server.ListenAddr)
	}
	if settings.Metadata.Language != "ja-JP" || settings.Metadata.Region != "JP" {
		t.Fatalf("unexpected metadata defaults: %+v", settings.Metadata)
	}
	if settings.GenAI.Model == "" {
		t.Fatalf("expected a default model")
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := []byte(`{"server": {"listenAddr": ":9999"}, "metadata": {"apiKey": "k", "language": "ja-JP", "region": "JP"}}`)
	if err := afero.WriteFile(fs, "data/settings.json", content, 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	manager := config.NewManagerWithFs("data/settings.json", fs)
	settings, err := manager.Load()
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if settings.Server.ListenAddr != ":9999" {
		t.Fatalf("file value not applied: %q", settings.Server.ListenAddr)
	}
	if settings.Metadata.APIKey != "k" {
		t.Fatalf("file value not applied: %q", settings.Metadata.APIKey)
	}
	// Fields absent from the file keep their defaults.
	if settings.Database.Path != "data/cinelog.db" {
		t.Fatalf("default not preserved: %q", settings.Database.Path)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "settings.json", []byte("{not json"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	manager := config.NewManagerWithFs("settings.json", fs)
	if _, err := manager.Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	manager := config.NewManagerWithFs("nested/dir/settings.json", fs)

	settings := config.DefaultSettings()
	settings.Metadata.APIKey = "tmdb-key"
	settings.GenAI.APIKey = "genai-key"
	if err := manager.Save(settings); err != nil {
		t.Fatalf("save returned error: %v", err)
	}

	// A fresh manager sees the persisted values.
	reloaded, err := config.NewManagerWithFs("nested/dir/settings.json", fs).Load()
	if err != nil {
		t.Fatalf("reload returned error: %v", err)
	}
	if reloaded.Metadata.APIKey != "tmdb-key" || reloaded.GenAI.APIKey != "genai-key" {
		t.Fatalf("persisted values lost: %+v", reloaded)
	}
}

func TestLoadCachesAfterFirstRead(t *testing.T) {
	fs := afero.NewMemMapFs()
	manager := config.NewManagerWithFs("settings.json", fs)

	first, err := manager.Load()
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	// A later change on disk is not picked up until the process restarts.
	data := []byte(`{"server": {"listenAddr": ":1"}}`)
	if err := afero.WriteFile(fs, "settings.json", data, 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	second, err := manager.Load()
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if second.Server.ListenAddr != first.Server.ListenAddr {
		t.Fatalf("expected cached settings, got %q", second.Server.ListenAddr)
	}
}
