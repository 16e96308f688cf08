//go:build windows

package command

import "os/exec"

func shell() (name, flag string) { return "cmd", "/C" }

func setProcessGroup(_ *exec.Cmd) {}
