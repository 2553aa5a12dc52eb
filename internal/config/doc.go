// Package config provides configuration structures and utilities for scamguard.
// It defines provider endpoints and credentials, classifier tuning, session
// and server settings, and the order in which defaults, the YAML file, the
// .env file and environment variables are layered.
package config
