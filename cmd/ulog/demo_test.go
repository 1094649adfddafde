package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWrittenFiles(t *testing.T) {
	tests := []struct {
		name  string
		first string
		last  string
		want  []string
	}{
		{"NoRotation", "demo.ulg", "demo.ulg", []string{"demo.ulg"}},
		{"Rotated", "logs/demo.ulg", "logs/demo.2.ulg", []string{"logs/demo.ulg", "logs/demo.1.ulg", "logs/demo.2.ulg"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := writtenFiles(tt.first, tt.last)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("files mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := writtenFiles("demo.ulg", "other.ulg"); err == nil {
		t.Error("expected an error for an unrelated last file")
	}
}
