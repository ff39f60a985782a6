//go:build js && wasm

package main

import (
	"context"
	"fmt"
	"syscall/js"

	"github.com/bnema/miniapp-telemetry/internal/domain"
	"github.com/bnema/miniapp-telemetry/internal/ports"
)

// localStorage backs session persistence in the page. Access can throw when
// storage is disabled; that surfaces as an error so the chain falls back.
type localStorage struct {
	prefix string
}

var _ ports.KeyValueStore = localStorage{}

func (s localStorage) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var value string
	err := guardJS(func() error {
		item := js.Global().Get("localStorage").Call("getItem", s.prefix+key)
		if item.IsNull() || item.IsUndefined() {
			return fmt.Errorf("%w: %s", domain.ErrKeyNotFound, key)
		}
		value = item.String()
		return nil
	})
	return value, err
}

func (s localStorage) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return guardJS(func() error {
		js.Global().Get("localStorage").Call("setItem", s.prefix+key, value)
		return nil
	})
}

func (s localStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return guardJS(func() error {
		js.Global().Get("localStorage").Call("removeItem", s.prefix+key)
		return nil
	})
}

// guardJS turns a thrown JS exception into an error.
func guardJS(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("local storage unavailable: %v", r)
		}
	}()

	return fn()
}
