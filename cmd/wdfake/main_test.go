// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phayes/freeport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedesog/webdriver/v2/wdtest"
)

func TestAddPages(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<title>index</title>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "page.html"), []byte("<title>page</title>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))

	srv := wdtest.New()
	n, err := addPages(srv, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ts := httptest.NewServer(srv)
	defer ts.Close()
	post := func(path, body string) *http.Response {
		resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}
	ids := srv.SessionIDs()
	require.Empty(t, ids)
	require.Equal(t, http.StatusOK, post("/session", "{}").StatusCode)
	id := srv.SessionIDs()[0]
	resp := post("/session/"+id+"/url", `{"url":"http://anywhere.test/sub/page.html"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = addPages(srv, filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestProbePort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	require.NoError(t, probePort(ln.Addr().(*net.TCPAddr).Port, time.Second, nil))

	port, err := freeport.GetFreePort()
	require.NoError(t, err)
	assert.EqualError(t, probePort(port, 100*time.Millisecond, nil), "start failed: timeout expired")

	failed := make(chan error, 1)
	failed <- errors.New("listen tcp: bind: permission denied")
	start := time.Now()
	err = probePort(port, 5*time.Second, failed)
	assert.EqualError(t, err, "start failed: listen tcp: bind: permission denied")
	assert.Less(t, time.Since(start), time.Second)
}

func TestRunRejectsBadFlags(t *testing.T) {
	assert.Error(t, run([]string{"-port", "many"}))
	assert.Error(t, run([]string{"-pages", filepath.Join(t.TempDir(), "missing")}))
}
