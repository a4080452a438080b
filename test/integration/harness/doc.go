// Package harness provides utilities for integration testing the notelab
// server. It boots the server in-process on a background goroutine, waits
// for it to accept requests, and tears it down deterministically.
//
// Environment variables managed for the suite's duration:
//   - HOME: isolated per suite (temp directory)
//   - NOTELAB_HOME: pointed inside the isolated HOME
package harness
