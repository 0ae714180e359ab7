//go:build windows

package toolchain

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/hud-software/kiss/internal/process"
)

const sdkRegistryPath = `SOFTWARE\WOW6432Node\Microsoft\Microsoft SDKs\Windows`

type windowsHost struct {
	vswhere string
	runner  process.Runner
}

// NewHost returns the host of the running OS. vswhere is the path of
// vswhere.exe.
func NewHost(vswhere string) Host {
	return &windowsHost{vswhere: vswhere, runner: process.Exec}
}

func (h *windowsHost) Instances(ctx context.Context) ([]Instance, error) {
	var out collector
	cmd := process.Command{Name: h.vswhere, Args: VSWhereArgs}
	if err := h.runner.Run(ctx, cmd, &out); err != nil {
		return nil, fmt.Errorf("failed to query Visual Studio instances: %w", err)
	}
	return ParseVSWhere(out.stdout.Bytes())
}

func (h *windowsHost) SDKs(ctx context.Context) ([]SDKEntry, error) {
	root, err := registry.OpenKey(registry.LOCAL_MACHINE, sdkRegistryPath, registry.ENUMERATE_SUB_KEYS|registry.QUERY_VALUE)
	if err != nil {
		if err == registry.ErrNotExist {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", sdkRegistryPath, err)
	}
	defer root.Close()

	names, err := root.ReadSubKeyNames(-1)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", sdkRegistryPath, err)
	}
	entries := make([]SDKEntry, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		k, err := registry.OpenKey(root, name, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		e := SDKEntry{Key: name}
		e.InstallationFolder, _, _ = k.GetStringValue("InstallationFolder")
		e.ProductVersion, _, _ = k.GetStringValue("ProductVersion")
		k.Close()
		entries = append(entries, e)
	}
	return entries, nil
}

func (h *windowsHost) OSVersion() string {
	v := windows.RtlGetVersion()
	return fmt.Sprintf("%d.%d.%d", v.MajorVersion, v.MinorVersion, v.BuildNumber)
}

type collector struct {
	stdout bytes.Buffer
}

func (c *collector) Stdout(line string) {
	c.stdout.WriteString(line)
	c.stdout.WriteByte('\n')
}

func (c *collector) Stderr(string) {}
