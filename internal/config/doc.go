// Package config loads and validates outlet.json.
//
// Every field is optional:
//
//	{
//	  "address": ":8080",
//	  "manifest": "routes.yaml",
//	  "loader": {"strategy": "parallel", "concurrency": 8},
//	  "metrics": {"enabled": true, "namespace": "shop"},
//	  "tracing": {"enabled": true},
//	  "log": {"level": "debug", "format": "json"},
//	  "cache": {"backend": "redis", "addr": "localhost:6379", "ttl": "1h"},
//	  "shutdownTimeout": "15s"
//	}
package config
