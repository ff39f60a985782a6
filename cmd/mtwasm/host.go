//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/bnema/miniapp-telemetry/internal/domain"
	"github.com/bnema/miniapp-telemetry/internal/ports"
)

// webAppHost reads window.Telegram.WebApp, which the host page script
// populates before the module loads.
type webAppHost struct {
	webApp js.Value
}

var _ ports.HostSDK = webAppHost{}

func lookupHost() (ports.HostSDK, bool) {
	telegram := js.Global().Get("Telegram")
	if !telegram.Truthy() {
		return nil, false
	}

	webApp := telegram.Get("WebApp")
	if !webApp.Truthy() {
		return nil, false
	}

	return webAppHost{webApp: webApp}, true
}

func (h webAppHost) UnsafeUser() (domain.IdentityContext, bool) {
	unsafe := h.webApp.Get("initDataUnsafe")
	if !unsafe.Truthy() {
		return domain.IdentityContext{}, false
	}

	user := unsafe.Get("user")
	if !user.Truthy() || user.Get("id").Type() != js.TypeNumber {
		return domain.IdentityContext{}, false
	}

	return domain.IdentityContext{
		UserID:    domain.UserID(int64(user.Get("id").Float())),
		Username:  stringProp(user, "username"),
		FirstName: stringProp(user, "first_name"),
		LastName:  stringProp(user, "last_name"),
	}, true
}

func (h webAppHost) StartParam() string {
	unsafe := h.webApp.Get("initDataUnsafe")
	if !unsafe.Truthy() {
		return ""
	}
	return stringProp(unsafe, "start_param")
}

func (h webAppHost) InitData() string {
	return stringProp(h.webApp, "initData")
}

func stringProp(v js.Value, name string) string {
	prop := v.Get(name)
	if prop.Type() != js.TypeString {
		return ""
	}
	return prop.String()
}
