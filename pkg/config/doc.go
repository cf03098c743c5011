// Package config loads deployer configuration.
//
// Layers, lowest first: the embedded defaults, an optional .deployer.toml or
// deployer.toml in the working directory (or an explicit file), then
// DEPLOYER_<SECTION>_<KEY> environment variables. The result seeds the
// variable store without overriding variables already present.
package config
