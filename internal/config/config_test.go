package config

import "testing"

func TestLoad_RequiredValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("RABBITMQ_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/annotations")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when RABBITMQ_URL is missing")
	}

	t.Setenv("RABBITMQ_URL", "amqp://localhost")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("expected default server port 8080, got %s", cfg.ServerPort)
	}
	if cfg.ClusterThreshold != 3 {
		t.Errorf("expected default cluster threshold 3, got %d", cfg.ClusterThreshold)
	}
}

func TestLoad_ClusterThreshold(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/annotations")
	t.Setenv("RABBITMQ_URL", "amqp://localhost")

	t.Setenv("CLUSTER_THRESHOLD", "5")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ClusterThreshold != 5 {
		t.Errorf("expected cluster threshold 5, got %d", cfg.ClusterThreshold)
	}

	t.Setenv("CLUSTER_THRESHOLD", "-1")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative threshold")
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"true", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"0", false},
		{"garbage", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			if got := getEnvBool("TEST_BOOL", false); got != tt.expected {
				t.Errorf("getEnvBool(%q) = %v, expected %v", tt.value, got, tt.expected)
			}
		})
	}
}
