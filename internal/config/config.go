package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port           string
	DefaultPlayers int
	DefaultRoom    string
	RelayURL       string
	ClaimTimeout   time.Duration
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.DefaultPlayers = getint("DEFAULT_PLAYERS", 4)
	c.DefaultRoom = getenv("ROOM", "ffa")
	c.RelayURL = os.Getenv("RELAY_URL")
	c.ClaimTimeout = time.Duration(getint("HOST_CLAIM_MS", 2500)) * time.Millisecond
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
