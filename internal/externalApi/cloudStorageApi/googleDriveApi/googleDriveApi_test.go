package googleDriveApi

import (
	"testing"
	"time"
)

func TestExpired(t *testing.T) {
	deadline := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		created string
		want    bool
	}{
		{"older", "2024-01-09T23:59:59Z", true},
		{"newer", "2024-01-10T00:00:01Z", false},
		{"same instant", "2024-01-10T00:00:00Z", false},
		{"offset", "2024-01-10T05:00:00+05:30", true},
		{"garbage", "yesterday", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expired(tt.created, deadline); got != tt.want {
				t.Errorf("expired(%q) = %v, want %v", tt.created, got, tt.want)
			}
		})
	}
}
