//go:build windows

package main

func hideInterruptEcho() (restore func()) { return func() {} }
