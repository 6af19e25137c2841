// Copyright (c) 2026 Daniel Lazaro
//
// MIT License

//go:build debug
// +build debug

package ordd

import (
	"log"
	"os"
)

const _DEBUG bool = true

var _LOGLEVEL int = 1 + loglevelFromEnv()

func init() {
	log.SetOutput(os.Stdout)
}
