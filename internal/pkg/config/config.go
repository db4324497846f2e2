package config

import (
	"io"
	"time"
)

// Config defines a set of methods for retrieving configuration values of
// various types. Implementations handle the retrieval and type conversion of
// configuration data, providing default behaviors where a key is absent.
type Config interface {
	io.Closer

	// GetBool retrieves the configuration value associated with the given key
	// as a bool. Absent keys yield false.
	GetBool(key string) bool

	// GetString retrieves the configuration value associated with the given
	// key as a string. Absent keys yield the empty string.
	GetString(key string) string

	// GetInt retrieves the configuration value associated with the given key
	// as an int. Absent or non-numeric values yield zero.
	GetInt(key string) int

	// GetSecond retrieves the configuration value associated with the given
	// key as a duration in seconds.
	GetSecond(key string) time.Duration
}
