//go:build !unix

package server

import "syscall"

func reuseAddrControl(_, _ string, _ syscall.RawConn) error { return nil }
