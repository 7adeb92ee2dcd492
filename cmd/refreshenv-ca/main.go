//go:build windows && cgo
// +build windows,cgo

// Command refreshenv-ca builds the RefreshEnvironmentVariables custom action
// DLL:
//
//	go build -buildmode=c-shared -o RefreshEnvAction.dll ./cmd/refreshenv-ca
//
// The installer loads the DLL into its custom action server and calls the
// exported entry point with the session handle.
package main

import "C"

import (
	"reflect"
	"unsafe"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"

	"github.com/containers/refreshenv/pkg/broadcast"
	"github.com/containers/refreshenv/pkg/config"
	"github.com/containers/refreshenv/pkg/customaction"
	"github.com/containers/refreshenv/pkg/msi"
)

var module *customaction.Module

// The Go runtime owns the loader callback of a c-shared library and such a
// library is never unloaded, so process attach is delivered from package
// initialization.
func init() {
	cfg, err := config.Load("")
	if err != nil {
		logrus.Warnf("Using default configuration: %v", err)
		cfg = config.Default()
	}
	module = customaction.NewModule(customaction.Options{
		Config: cfg,
		Opener: msi.Installer{},
		Sender: broadcast.User32{},
	})
	module.Main(selfHandle(), customaction.DLL_PROCESS_ATTACH)
}

//export RefreshEnvironmentVariables
func RefreshEnvironmentVariables(hInstall C.uint) C.uint {
	return C.uint(module.RefreshEnvironmentVariables(msi.Handle(hInstall)))
}

// selfHandle returns the base address this DLL was loaded at.
func selfHandle() uintptr {
	var h windows.Handle
	addr := reflect.ValueOf(RefreshEnvironmentVariables).Pointer()
	err := windows.GetModuleHandleEx(
		windows.GET_MODULE_HANDLE_EX_FLAG_FROM_ADDRESS|windows.GET_MODULE_HANDLE_EX_FLAG_UNCHANGED_REFCOUNT,
		(*uint16)(unsafe.Pointer(addr)),
		&h)
	if err != nil {
		logrus.Debugf("Could not resolve module handle: %v", err)
		return 0
	}
	return uintptr(h)
}

func main() {}
