//go:build unicorn
// +build unicorn

package main

import "github.com/wnxd/microx86/emulator/unicorn"

func init() {
	backends["unicorn"] = unicorn.New
}
