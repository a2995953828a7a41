package cmd

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-faces/internal/config"
)

func newServeFlagsCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.Flags().Int("port", 0, "")
	cmd.Flags().String("host", "", "")
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func TestApplyServeFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantPort int
		wantHost string
		wantErr  string
	}{
		{"no flags keeps config", nil, 8080, "0.0.0.0", ""},
		{"port and host", []string{"--port", "9000", "--host", "127.0.0.1"}, 9000, "127.0.0.1", ""},
		{"zero port", []string{"--port", "0"}, 0, "", "web port"},
		{"negative port", []string{"--port", "-1"}, 0, "", "web port"},
		{"port too large", []string{"--port", "65536"}, 0, "", "web port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			err := applyServeFlags(newServeFlagsCommand(t, tt.args...), cfg)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("applyServeFlags() = %v, want error containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("applyServeFlags() = %v", err)
			}
			if cfg.Web.Port != tt.wantPort || cfg.Web.Host != tt.wantHost {
				t.Errorf("web = %s:%d, want %s:%d", cfg.Web.Host, cfg.Web.Port, tt.wantHost, tt.wantPort)
			}
		})
	}
}
