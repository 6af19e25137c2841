// Copyright (c) 2026 Daniel Lazaro
//
// MIT License

//go:build !debug
// +build !debug

package ordd

const _DEBUG bool = false

var _LOGLEVEL int = loglevelFromEnv()
