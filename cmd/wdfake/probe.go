// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// probePort dials port until it accepts a connection or timeout is up. An
// error received on failed, such as the listener failing to bind, ends the
// wait early and is returned.
func probePort(port int, timeout time.Duration, failed <-chan error) error {
	address := fmt.Sprintf("127.0.0.1:%d", port)
	start := time.Now()
	for {
		conn, err := net.DialTimeout("tcp", address, time.Second)
		if err == nil {
			return conn.Close()
		}
		if time.Since(start) > timeout {
			return errors.New("start failed: timeout expired")
		}
		select {
		case err := <-failed:
			return fmt.Errorf("start failed: %w", err)
		case <-time.After(50 * time.Millisecond):
		}
	}
}
