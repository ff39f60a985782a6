//go:build js && wasm

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"syscall/js"
)

// keepaliveTransport sends requests through window.fetch with keepalive set,
// so an end call issued from beforeunload outlives the page. Keepalive bodies
// are capped by the browser at 64KiB; telemetry payloads are far below that.
type keepaliveTransport struct{}

var _ http.RoundTripper = keepaliveTransport{}

func (keepaliveTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		body = data
	}

	headers := js.Global().Get("Headers").New()
	for key, values := range req.Header {
		for _, value := range values {
			headers.Call("append", key, value)
		}
	}

	controller := js.Global().Get("AbortController").New()
	stop := context.AfterFunc(req.Context(), func() {
		controller.Call("abort")
	})
	defer stop()

	init := map[string]any{
		"method":    req.Method,
		"headers":   headers,
		"keepalive": true,
		"signal":    controller.Get("signal"),
	}
	if len(body) > 0 {
		payload := js.Global().Get("Uint8Array").New(len(body))
		js.CopyBytesToJS(payload, body)
		init["body"] = payload
	}

	res, err := await(js.Global().Call("fetch", req.URL.String(), js.ValueOf(init)))
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	forEach := js.FuncOf(func(_ js.Value, args []js.Value) any {
		header.Add(args[1].String(), args[0].String())
		return nil
	})
	res.Get("headers").Call("forEach", forEach)
	forEach.Release()

	buf, err := await(res.Call("arrayBuffer"))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	view := js.Global().Get("Uint8Array").New(buf)
	data := make([]byte, view.Get("length").Int())
	js.CopyBytesToGo(data, view)

	status := res.Get("status").Int()
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, res.Get("statusText").String()),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: int64(len(data)),
		Request:       req,
	}, nil
}

// await blocks the calling goroutine until promise settles. It must not be
// called from inside a js.Func callback.
func await(promise js.Value) (js.Value, error) {
	settled := make(chan js.Value, 1)
	failed := make(chan js.Value, 1)

	onFulfilled := js.FuncOf(func(_ js.Value, args []js.Value) any {
		settled <- args[0]
		return nil
	})
	defer onFulfilled.Release()
	onRejected := js.FuncOf(func(_ js.Value, args []js.Value) any {
		failed <- args[0]
		return nil
	})
	defer onRejected.Release()

	promise.Call("then", onFulfilled).Call("catch", onRejected)

	select {
	case value := <-settled:
		return value, nil
	case reason := <-failed:
		return js.Undefined(), fmt.Errorf("fetch: %s", reason.Call("toString").String())
	}
}
