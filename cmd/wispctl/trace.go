package main

import (
	"io"
	"log"
	"os"
)

// trace is an optional file-backed debug logger: discarded by default,
// redirected to a file only when --trace names one.
var trace = log.New(io.Discard, "", log.LstdFlags)

// initTrace redirects trace output to path's file when path is non-empty.
// Failure to open the file is non-fatal: wispctl falls back to discarding
// trace output rather than refusing to run the command the user asked for.
func initTrace(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmtTraceOpenFailure(err)
		return
	}
	trace = log.New(f, "", log.LstdFlags)
}

func fmtTraceOpenFailure(err error) {
	log.Printf("wispctl: could not open trace log: %v", err)
}
