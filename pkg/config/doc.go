// Package config manages configuration parsing and validation for yamlkey.
//
// 	                  +-------------+
// 	                  |   Config    |
// 	                  | (Settings)  |
// 	                  +------+------+
// 	                         |
// 	    +----------+---------+---------+----------+
// 	    |          |                   |          |
// 	+---+---+  +---+---+           +---+---+  +---+---+
// 	| YAML  |  |  HCL  |           | JSON  |  | TOML  |
// 	+-------+  +-------+           +-------+  +-------+
//
// 🎯 Purpose:
// - Loads .yamlkey.{yaml,yml,hcl,json,toml} by extension through the Parser registry
// - Fills in defaults (include/exclude globs, concurrency, atomic writes)
// - Rejects unknown fields, bad globs, unknown locate modes and log levels
//
// 📝 Example (.yamlkey.yaml):
//
// 	include: ["**/*.yml", "**/*.yaml"]
// 	exclude: ["**/node_modules/**"]
// 	concurrency: 4
// 	atomic_write: true
// 	locate: node
// 	log_level: info
//
// Command line flags override whatever the file sets.
package config
