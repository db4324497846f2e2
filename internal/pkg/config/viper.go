package config

import (
	"time"

	"github.com/spf13/viper"
)

// Env is a Config implementation backed by github.com/spf13/viper reading the
// process environment. The job is configured purely by environment variables
// (it runs under an external cron-like scheduler), so no config file is read.
type Env struct {
	v *viper.Viper
}

// NewEnv returns an environment-backed Config. Keys map 1:1 to environment
// variable names, e.g. GetString("MONGO_URI") reads $MONGO_URI.
func NewEnv() *Env {
	v := viper.New()
	v.AutomaticEnv()

	return &Env{v: v}
}

// GetBool returns the value for key as bool.
func (ec *Env) GetBool(key string) bool {
	return ec.v.GetBool(key)
}

// GetString returns the value for key as string.
func (ec *Env) GetString(key string) string {
	return ec.v.GetString(key)
}

// GetInt returns the value for key as int.
func (ec *Env) GetInt(key string) int {
	return ec.v.GetInt(key)
}

// GetSecond returns the value for key as seconds.
func (ec *Env) GetSecond(key string) time.Duration {
	return time.Duration(ec.v.GetInt64(key)) * time.Second
}

// Close implements io.Closer for interface compatibility.
func (ec *Env) Close() error {
	// No resources to close for the environment source.
	return nil
}
