//go:build !unix

package pipeline

func terminalWidth(uintptr) int { return 0 }
