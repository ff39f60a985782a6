//go:build js && wasm

package main

import (
	"io"
	"net/http"
	"strings"
	"syscall/js"
	"testing"
	"time"

	"github.com/bnema/miniapp-telemetry/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubFetch(t *testing.T, fetch func(args []js.Value) js.Value) {
	t.Helper()

	previous := js.Global().Get("fetch")
	stub := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fetch(args)
	})
	js.Global().Set("fetch", stub)
	t.Cleanup(func() {
		js.Global().Set("fetch", previous)
		stub.Release()
	})
}

func TestInstallSkipsInvalidConfig(t *testing.T) {
	js.Global().Delete("MT_CONFIG")
	js.Global().Delete(exportName)

	assert.False(t, install(js.Global()))
	assert.True(t, js.Global().Get(exportName).IsUndefined())

	js.Global().Set("MT_CONFIG", js.ValueOf(map[string]any{"startPath": "/start"}))
	t.Cleanup(func() { js.Global().Delete("MT_CONFIG") })

	assert.False(t, install(js.Global()))
	assert.True(t, js.Global().Get(exportName).IsUndefined())
}

func TestKeepaliveTransportSendsThroughFetch(t *testing.T) {
	var target string
	var init js.Value
	stubFetch(t, func(args []js.Value) js.Value {
		target = args[0].String()
		init = args[1]
		response := js.Global().Get("Response").New(`{"status":"ended"}`, js.ValueOf(map[string]any{
			"status":  200,
			"headers": map[string]any{"Content-Type": "application/json"},
		}))
		return js.Global().Get("Promise").Call("resolve", response)
	})

	payload := `{"session_id":"abc-123","reason":"unload"}`
	client := &http.Client{Transport: keepaliveTransport{}}
	resp, err := client.Post("https://game.example.com/api/session/end", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ended"}`, string(body))

	assert.Equal(t, "https://game.example.com/api/session/end", target)
	assert.True(t, init.Get("keepalive").Bool())
	assert.Equal(t, http.MethodPost, init.Get("method").String())
	assert.Equal(t, len(payload), init.Get("body").Get("length").Int())
}

func TestKeepaliveTransportReportsRejectedFetch(t *testing.T) {
	stubFetch(t, func([]js.Value) js.Value {
		return js.Global().Get("Promise").Call("reject", js.Global().Get("Error").New("network down"))
	})

	client := &http.Client{Transport: keepaliveTransport{}}
	_, err := client.Get("https://game.example.com/api/player/register")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network down")
}

func TestSessionValueUsesStoredKeys(t *testing.T) {
	record := domain.SessionRecord{ID: "abc-123", StartedAt: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)}

	value, ok := sessionValue(record, true).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "abc-123", value["id"])
	assert.Equal(t, "2026-03-01T10:30:00.000Z", value["started_at"])
	assert.NotContains(t, value, "startedAt")

	assert.Nil(t, sessionValue(domain.SessionRecord{}, false))
}
