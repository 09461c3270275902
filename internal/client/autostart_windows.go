//go:build windows

package client

import "os/exec"

func applyServerSysProcAttr(cmd *exec.Cmd) {}
