package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
server:
  port: 9000
auth:
  token: "secret"
devices:
  printers:
    - id: "p1"
      device_type: "network"
      connection: "192.168.1.50:9100"
    - id: "p2"
      device_type: "serial"
      connection: "COM3:19200"
  drawers:
    - id: "d1"
      device_type: "printer_driven"
      connection: "p1"
  displays:
    - id: "v1"
      device_type: "serial"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want loopback default", cfg.Server.Host)
	}
	if cfg.Auth.Token != "secret" {
		t.Errorf("Auth.Token = %q, want %q", cfg.Auth.Token, "secret")
	}
	if len(cfg.Devices.Printers) != 2 {
		t.Fatalf("len(Printers) = %d, want 2", len(cfg.Devices.Printers))
	}
	if cfg.Devices.Printers[1].Connection != "COM3:19200" {
		t.Errorf("Printers[1].Connection = %q", cfg.Devices.Printers[1].Connection)
	}
	if cfg.Devices.Drawers[0].Connection != "p1" {
		t.Errorf("Drawers[0].Connection = %q, want p1", cfg.Devices.Drawers[0].Connection)
	}
	if cfg.Devices.Displays[0].Connection != "" {
		t.Errorf("Displays[0].Connection = %q, want empty", cfg.Devices.Displays[0].Connection)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	_, err := Load(writeConfig(t, "server:\n  port: 8080\n"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load() error = %v, want ErrInvalidConfig for missing auth token", err)
	}
}

func TestLoad_EnvTokenSatisfiesValidation(t *testing.T) {
	t.Setenv("POSBRIDGE_AUTH_TOKEN", "from-env")

	cfg, err := Load(writeConfig(t, "server:\n  port: 8080\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.Token != "from-env" {
		t.Errorf("Auth.Token = %q, want from-env", cfg.Auth.Token)
	}
}

func TestLoad_BadPortEnv(t *testing.T) {
	t.Setenv("POSBRIDGE_SERVER_PORT", "eighty")

	_, err := Load(writeConfig(t, "auth:\n  token: x\n"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Auth.Token = "secret"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{
			name:   "hash only",
			mutate: func(c *Config) { c.Auth.Token = ""; c.Auth.TokenHash = "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA" },
		},
		{name: "missing secret", mutate: func(c *Config) { c.Auth.Token = "" }, wantErr: true},
		{name: "invalid port low", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "invalid port high", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "relative websocket path", mutate: func(c *Config) { c.WebSocket.Path = "ws" }, wantErr: true},
		{
			name: "duplicate printer id",
			mutate: func(c *Config) {
				c.Devices.Printers = []DeviceConfig{{ID: "p1", DeviceType: "mock"}, {ID: "p1", DeviceType: "mock"}}
			},
			wantErr: true,
		},
		{
			name: "same id across kinds",
			mutate: func(c *Config) {
				c.Devices.Printers = []DeviceConfig{{ID: "x", DeviceType: "mock"}}
				c.Devices.Drawers = []DeviceConfig{{ID: "x", DeviceType: "mock"}}
			},
		},
		{
			name:    "empty display id",
			mutate:  func(c *Config) { c.Devices.Displays = []DeviceConfig{{DeviceType: "serial"}} },
			wantErr: true,
		},
		{
			name:    "unknown device type is allowed",
			mutate:  func(c *Config) { c.Devices.Printers = []DeviceConfig{{ID: "p1", DeviceType: "laser"}} },
			wantErr: false,
		},
		{name: "invalid qos when mqtt enabled", mutate: func(c *Config) { c.MQTT.Enabled = true; c.MQTT.QoS = 3 }, wantErr: true},
		{name: "invalid qos ignored when mqtt disabled", mutate: func(c *Config) { c.MQTT.QoS = 3 }},
		{name: "influx without url", mutate: func(c *Config) { c.InfluxDB.Enabled = true; c.InfluxDB.Bucket = "b" }, wantErr: true},
		{name: "journal without path", mutate: func(c *Config) { c.Journal.Enabled = true; c.Journal.Path = "" }, wantErr: true},
		{name: "file output without path", mutate: func(c *Config) { c.Logging.Output = "file"; c.Logging.File.Path = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			Timeouts: ServerTimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}
	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}
	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("POSBRIDGE_SERVER_HOST", "0.0.0.0")
	t.Setenv("POSBRIDGE_SERVER_PORT", "9123")
	t.Setenv("POSBRIDGE_AUTH_TOKEN", "env-secret")
	t.Setenv("POSBRIDGE_LOG_LEVEL", "debug")
	t.Setenv("POSBRIDGE_JOURNAL_PATH", "/custom/journal.db")
	t.Setenv("POSBRIDGE_MQTT_HOST", "mqtt.example.com")
	t.Setenv("POSBRIDGE_MQTT_USERNAME", "testuser")
	t.Setenv("POSBRIDGE_MQTT_PASSWORD", "testpass")
	t.Setenv("POSBRIDGE_INFLUXDB_TOKEN", "secret-token")

	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"Server.Host", cfg.Server.Host, "0.0.0.0"},
		{"Server.Port", cfg.Server.Port, 9123},
		{"Auth.Token", cfg.Auth.Token, "env-secret"},
		{"Logging.Level", cfg.Logging.Level, "debug"},
		{"Journal.Path", cfg.Journal.Path, "/custom/journal.db"},
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "mqtt.example.com"},
		{"MQTT.Auth.Username", cfg.MQTT.Auth.Username, "testuser"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "testpass"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("defaultConfig Server.Host = %q, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("defaultConfig Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.WebSocket.Path != "/" {
		t.Errorf("defaultConfig WebSocket.Path = %q, want /", cfg.WebSocket.Path)
	}
	if cfg.Journal.Enabled || cfg.MQTT.Enabled || cfg.InfluxDB.Enabled {
		t.Error("defaultConfig should leave optional subsystems disabled")
	}
	if cfg.Addr() != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}
