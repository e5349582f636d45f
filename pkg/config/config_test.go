package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	c, err := Parse([]byte("environment: test\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Server.Port != 8080 {
		t.Errorf("port = %d", c.Server.Port)
	}
	if c.Cache.Backend != CacheBackendNone || c.Sink.Backend != SinkBackendNone {
		t.Errorf("backends = %s/%s", c.Cache.Backend, c.Sink.Backend)
	}
	if c.Cache.Retention != 24*time.Hour {
		t.Errorf("retention = %s", c.Cache.Retention)
	}
	if c.RealEstate.SaleLimit != 50 || c.RealEstate.RentLimit != 50 || c.RealEstate.SoldLimit != 30 {
		t.Errorf("limits = %d/%d/%d", c.RealEstate.SaleLimit, c.RealEstate.RentLimit, c.RealEstate.SoldLimit)
	}
	if c.RealEstate.BaseURL != "https://us-real-estate.p.rapidapi.com" {
		t.Errorf("base url = %s", c.RealEstate.BaseURL)
	}
}

func TestParseLocations(t *testing.T) {
	y := `
environment: test
realestate:
  locations:
    - { city: Austin, state: TX, zip_code: "78701" }
`
	c, err := Parse([]byte(y))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(c.RealEstate.Locations) != 1 || c.RealEstate.Locations[0].ZipCode != "78701" {
		t.Fatalf("locations = %+v", c.RealEstate.Locations)
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := decode([]byte("environment: test\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	env := map[string]string{
		"RAPIDAPI_KEY":  "rk",
		"CACHE_BACKEND": "redis",
		"REDIS_HOST":    "cache.local",
		"KAFKA_BROKERS": "a:9092,b:9092",
	}
	c.applyEnv(func(k string) string { return env[k] })

	if c.RealEstate.APIKey != "rk" {
		t.Errorf("api key = %q", c.RealEstate.APIKey)
	}
	if c.Cache.Backend != CacheBackendRedis || c.Cache.Redis.Host != "cache.local" {
		t.Errorf("cache = %s %s", c.Cache.Backend, c.Cache.Redis.Host)
	}
	if len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[1] != "b:9092" {
		t.Errorf("brokers = %v", c.Kafka.Brokers)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing environment", "server: {port: 1}\n", "environment is required"},
		{"postgres without dsn", "environment: t\ncache: {backend: postgres}\n", "cache.postgres.dsn"},
		{"unknown cache", "environment: t\ncache: {backend: disk}\n", "cache.backend must be one of"},
		{"kafka without brokers", "environment: t\nsink: {backend: kafka}\n", "kafka.brokers"},
		{"clickhouse without host", "environment: t\nsink: {backend: clickhouse}\n", "clickhouse.host"},
		{"unknown sink", "environment: t\nsink: {backend: s3}\n", "sink.backend must be one of"},
		{"consumer without clickhouse", "environment: t\nkafka: {consumer: {enabled: true}}\n", "kafka.consumer requires"},
		{"incomplete location", "environment: t\nrealestate: {locations: [{city: Austin}]}\n", "realestate.locations[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}
