package dryrun

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestWithDryRun(t *testing.T) {
	if !IsEnabled(WithDryRun(context.Background(), true)) {
		t.Error("IsEnabled should return true when dry-run is enabled")
	}
	if IsEnabled(context.Background()) {
		t.Error("IsEnabled should return false by default")
	}
	if IsEnabled(WithDryRun(context.Background(), false)) {
		t.Error("IsEnabled should return false when dry-run is explicitly disabled")
	}
}

func TestPreview_Write(t *testing.T) {
	p := &Preview{
		Method:   "POST",
		Resource: "motorcycle",
		Paths:    []string{"/api/v1/Motos", "/api/Motos"},
		Fields: []Field{
			{Name: "placa", Value: "ABC1D23"},
			{Name: "idArea", Value: 2},
		},
		Warnings: []string{"plate does not match the Mercosul format"},
	}

	var buf bytes.Buffer
	p.Write(&buf)
	output := buf.String()

	for _, want := range []string{
		"[DRY-RUN] Would POST motorcycle",
		"endpoints: /api/v1/Motos, /api/Motos",
		"placa: ABC1D23",
		"! plate does not match",
		"No changes made",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Index(output, "placa") > strings.Index(output, "idArea") {
		t.Error("fields should be printed in order")
	}
}
