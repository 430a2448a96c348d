package ldap

import (
	"testing"
	"time"
)

func TestConfigNormalize_Defaults(t *testing.T) {
	cfg := &Config{Host: "dc1.example.com"}

	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize() failed: %v", err)
	}

	if cfg.Port != 636 {
		t.Errorf("expected default port 636, got %d", cfg.Port)
	}
	if !DefaultConfig().UseTLS {
		t.Error("expected DefaultConfig to enable TLS")
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected 30s default timeout, got %v", cfg.Timeout)
	}
	if cfg.Logger == nil {
		t.Error("expected a non-nil logger after Normalize")
	}
	if cfg.TLSConfig == nil {
		t.Error("expected a TLS config after Normalize")
	}
}

func TestConfigNormalize_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Host:    "dc1.example.com",
		Port:    3268,
		Timeout: 5 * time.Second,
	}

	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize() failed: %v", err)
	}

	if cfg.Port != 3268 {
		t.Errorf("explicit port overwritten: got %d", cfg.Port)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("explicit timeout overwritten: got %v", cfg.Timeout)
	}
}

func TestConfigNormalize_RequiresServer(t *testing.T) {
	cfg := &Config{}

	if err := cfg.Normalize(); err == nil {
		t.Error("expected error for config without URL or Host")
	}
}

func TestConfigAddress(t *testing.T) {
	testCases := []struct {
		name     string
		config   Config
		expected string
	}{
		{
			name:     "explicit URL wins",
			config:   Config{URL: "ldap://dc1.example.com:389", Host: "other", Port: 636, UseTLS: true},
			expected: "ldap://dc1.example.com:389",
		},
		{
			name:     "ldaps from host and port",
			config:   Config{Host: "dc1.example.com", Port: 636, UseTLS: true},
			expected: "ldaps://dc1.example.com:636",
		},
		{
			name:     "plain ldap when TLS off",
			config:   Config{Host: "dc1.example.com", Port: 389},
			expected: "ldap://dc1.example.com:389",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if addr := tc.config.Address(); addr != tc.expected {
				t.Errorf("Address() = %q, expected %q", addr, tc.expected)
			}
		})
	}
}

func TestSearchScope(t *testing.T) {
	valid := []SearchScope{ScopeBaseObject, ScopeSingleLevel, ScopeWholeSubtree}
	for _, scope := range valid {
		if !scope.Valid() {
			t.Errorf("scope %s unexpectedly invalid", scope)
		}
	}

	for _, scope := range []SearchScope{-1, 3, 42} {
		if scope.Valid() {
			t.Errorf("scope %d unexpectedly valid", int(scope))
		}
	}

	if ScopeBaseObject.String() != "base" || ScopeSingleLevel.String() != "one" || ScopeWholeSubtree.String() != "sub" {
		t.Error("unexpected scope names")
	}
	if SearchScope(42).String() != "unknown" {
		t.Error("out-of-range scope should stringify as unknown")
	}
}
