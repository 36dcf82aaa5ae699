package internal

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestHTTPConfigPortBounds(t *testing.T) {
	c := HTTPConfig{Port: 0}
	if err := c.Validate(); err == nil {
		t.Error("port 0 should be invalid")
	}
	c.Port = 70000
	if err := c.Validate(); err == nil {
		t.Error("port 70000 should be invalid")
	}
	c.Port = 1313
	if err := c.Validate(); err != nil {
		t.Errorf("port 1313 should be valid: %v", err)
	}
}

func TestExportConfigOffsetValidation(t *testing.T) {
	c := NewDefaultConfig().Export
	c.UTCOffset = "UTC+2"
	if err := c.Validate(); err == nil {
		t.Error("malformed offset should be invalid")
	}
	c.UTCOffset = "+05:30"
	if err := c.Validate(); err != nil {
		t.Errorf("+05:30 should be valid: %v", err)
	}
}

func TestExportConfigLocation(t *testing.T) {
	c := ExportConfig{ContentDir: "./content", UTCOffset: "+02:00", Workers: 1}
	loc, err := c.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, loc)
	if ts.Format(time.RFC3339) != "2024-03-01T10:00:00+02:00" {
		t.Errorf("offset not applied: %s", ts.Format(time.RFC3339))
	}

	c.UTCOffset = "-04:00"
	loc, err = c.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	ts = time.Date(2024, 3, 1, 10, 0, 0, 0, loc)
	if ts.Format(time.RFC3339) != "2024-03-01T10:00:00-04:00" {
		t.Errorf("negative offset not applied: %s", ts.Format(time.RFC3339))
	}

	c.UTCOffset = "+00:00"
	loc, err = c.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc != time.UTC {
		t.Errorf("zero offset should be UTC, got %v", loc)
	}
}

func TestSourceConfigRequiresPath(t *testing.T) {
	c := SourceConfig{}
	if err := c.Validate(); err == nil {
		t.Error("empty source path should be invalid")
	}
}
