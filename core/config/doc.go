// Package config fills settings structs from the process environment.
//
// Struct fields are bound with caarlos0/env tags. A .env file in the working
// directory is read once, before the first load, and never overrides
// variables that are already set. The result for each struct type is kept,
// so later loads of the same type return the first value without
// re-reading the environment:
//
//	var pipe pipeline.Config
//	if err := config.Load(&pipe); err != nil {
//		return err
//	}
//
//	var cache redis.Config
//	config.MustLoad(&cache) // panics when parsing fails
//
// Tests that change the environment call Reset to drop the kept values.
package config
