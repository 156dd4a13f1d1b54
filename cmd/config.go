package main

import (
	"fmt"
	"time"
)

type Config struct {
	Addr         string `env:"ADDR,default=:4000"`
	ClientOrigin string `env:"CLIENT_URL,default=http://localhost:5173"`

	BadgerFilepath string `env:"BADGER_FILEPATH,default=./data/badger"`
	UploadsDir     string `env:"UPLOADS_DIR,default=./uploads"`
	LogLevel       string `env:"LOG_LEVEL,default=info"`

	TokenSecret   string        `env:"TOKEN_SECRET"`
	TokenTTL      time.Duration `env:"TOKEN_TTL,default=24h"`
	SecureCookies bool          `env:"SECURE_COOKIES,default=false"`

	PingInterval time.Duration `env:"PING_INTERVAL,default=5s"`
	PongTimeout  time.Duration `env:"PONG_TIMEOUT,default=1s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	SendBuffer   int           `env:"SEND_BUFFER,default=256"`
	MaxFrameSize int64         `env:"MAX_FRAME_SIZE,default=1048576"`

	CharReplacement string `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`

	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	TelemetryInterval time.Duration `env:"TELEMETRY_INTERVAL,default=30s"`
	BadgerGCInterval  time.Duration `env:"BADGER_GC_INTERVAL,default=5m"`

	LoginRatePerSecond float64 `env:"LOGIN_RATE_PER_SECOND,default=5"`
	LoginBurst         int     `env:"LOGIN_BURST,default=10"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"MODERATION_CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
