package config

import "testing"

func TestValidateCurrency(t *testing.T) {
	tests := []struct {
		currency string
		want     string
		wantErr  bool
	}{
		{"INR", "INR", false},
		{" usd ", "USD", false},
		{"RUPEES", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		cfg := &Config{Report: Report{Currency: tt.currency}}
		err := cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%q) error = %v, wantErr %v", tt.currency, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && cfg.Report.Currency != tt.want {
			t.Errorf("Validate(%q) currency = %q, want %q", tt.currency, cfg.Report.Currency, tt.want)
		}
	}
}
