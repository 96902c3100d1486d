//go:build js && wasm

// Command lvp-wasm runs the last-visited-petition initializer once inside a
// browser page. Load it from a userscript on the petition site.
package main

import (
	"syscall/js"

	"go.uber.org/zap"

	"github.com/vidyasagar/petsurf/internal/lastvisit"
	"github.com/vidyasagar/petsurf/internal/logging"
)

type jsLocation struct{}

func (jsLocation) Pathname() string {
	return js.Global().Get("location").Get("pathname").String()
}

func (jsLocation) Search() string {
	return js.Global().Get("location").Get("search").String()
}

type jsHistory struct{}

func (jsHistory) CurrentEntry() (lastvisit.Entry, bool) {
	nav := js.Global().Get("navigation")
	if nav.IsUndefined() || nav.IsNull() {
		return lastvisit.Entry{}, false
	}
	entry := nav.Get("currentEntry")
	if entry.IsUndefined() || entry.IsNull() {
		return lastvisit.Entry{}, false
	}
	return lastvisit.Entry{Index: entry.Get("index").Int(), URL: entry.Get("url").String()}, true
}

type jsStorage struct{}

func (jsStorage) GetItem(key string) (string, bool, error) {
	v := js.Global().Get("localStorage").Call("getItem", key)
	if v.IsNull() {
		return "", false, nil
	}
	return v.String(), true, nil
}

func (jsStorage) SetItem(key, value string) error {
	js.Global().Get("localStorage").Call("setItem", key, value)
	return nil
}

func (jsStorage) RemoveItem(key string) error {
	js.Global().Get("localStorage").Call("removeItem", key)
	return nil
}

func navigate(rawURL string) error {
	js.Global().Get("location").Set("href", rawURL)
	return nil
}

func main() {
	logger, err := logging.NewConsole("warn")
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync()

	in := &lastvisit.Initializer{
		Location:  jsLocation{},
		History:   jsHistory{},
		Store:     jsStorage{},
		Navigator: lastvisit.NavigatorFunc(navigate),
	}
	res, err := in.Run()
	if err != nil {
		// The page stays as it is.
		logger.Warn("last visited petition", zap.Error(err))
		return
	}
	logger.Debug("last visited petition", zap.Stringer("outcome", res.Outcome))
}
