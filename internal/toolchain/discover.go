// Package toolchain finds an installed C++ compiler suite and a platform SDK
// matching the running OS.
package toolchain

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hud-software/kiss/internal/logs"
)

var (
	ErrNotFound            = errors.New("no Visual Studio toolset found")
	ErrComponentMissing    = errors.New("the C++ Build Tool is not installed")
	ErrCompilerDirNotFound = errors.New("compiler directory not found")
	ErrCompilerNotFound    = errors.New("compiler not found")
)

// markerFile holds the default MSVC tools version of an installation.
var markerFile = filepath.Join("VC", "Auxiliary", "Build", "Microsoft.VCToolsVersion.default.txt")

// Installation is a classified instance of a supported product line.
type Installation struct {
	Instance

	Kind               Kind
	ProductLineVersion string
	ProductName        string
	MajorVersion       string

	// Complete reports whether the C++ workload and tools are installed.
	Complete bool
	// ToolVersion is the default MSVC version, empty when unknown.
	ToolVersion string
}

// SDK is a platform SDK.
type SDK struct {
	InstallationPath string
	// OSVersion is the registry version with the "v" prefix removed.
	OSVersion      string
	ProductVersion string
}

// Toolchain is a resolved compiler pair and the SDK to build against. SDK is
// nil when no installed SDK matches the OS.
type Toolchain struct {
	CCompiler   string
	CXXCompiler string
	SDK         *SDK
	Installation
}

// List enumerates the host instances and returns those of a supported
// product line. Instances that are not both local and registered, or that
// lack catalog metadata, are dropped.
func List(ctx context.Context, host Host) ([]Installation, error) {
	instances, err := host.Instances(ctx)
	if err != nil {
		return nil, err
	}
	var out []Installation
	for _, inst := range instances {
		if !inst.State.Has(StateLocal | StateRegistered) {
			logs.Debugf("toolchain: skip %s: state %#x", inst.InstallationPath, uint32(inst.State))
			continue
		}
		lineVersion, ok := catalogValue(inst.Catalog, "productLineVersion")
		if !ok {
			continue
		}
		productName, ok := catalogValue(inst.Catalog, "productName")
		if !ok {
			continue
		}
		kind, ok := classify(lineVersion, inst.ProductID)
		if !ok {
			logs.Debugf("toolchain: skip %s: unsupported product %s %s", inst.InstallationPath, inst.ProductID, lineVersion)
			continue
		}
		major, _, _ := strings.Cut(inst.InstallationVersion, ".")
		out = append(out, Installation{
			Instance:           inst,
			Kind:               kind,
			ProductLineVersion: lineVersion,
			ProductName:        productName,
			MajorVersion:       major,
			Complete:           hasWorkload(inst, kinds[kind].workload) && fileExists(filepath.Join(inst.InstallationPath, markerFile)),
			ToolVersion:        defaultToolVersion(inst.InstallationPath),
		})
	}
	return out, nil
}

// Discover selects the first installation of kind and resolves its compiler
// and SDK. Progress is printed to console, or to the standard console when
// console is nil.
func Discover(ctx context.Context, host Host, kind Kind, console *logs.Console) (*Toolchain, error) {
	if console == nil {
		console = logs.Std()
	}
	installs, err := List(ctx, host)
	if err != nil {
		return nil, err
	}
	for _, inst := range installs {
		logs.Debugf("toolchain: found %s", describe(inst))
	}

	var selected *Installation
	for i := range installs {
		// First match wins; installer enumeration order is not specified.
		if installs[i].Kind == kind {
			selected = &installs[i]
			break
		}
	}
	if selected == nil {
		return nil, fmt.Errorf("%w for %s", ErrNotFound, kind)
	}
	console.Tips("Selected %s", describe(*selected))

	if !selected.Complete {
		return nil, fmt.Errorf("%s: %w", selected.InstallationPath, ErrComponentMissing)
	}
	compilerDir := filepath.Join(selected.InstallationPath, "VC", "Tools", "MSVC", selected.ToolVersion, "bin", "Hostx64", "x64")
	if info, err := os.Stat(compilerDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrCompilerDirNotFound, compilerDir)
	}
	compiler := filepath.Join(compilerDir, "cl.exe")
	if !fileExists(compiler) {
		return nil, fmt.Errorf("%w: %s", ErrCompilerNotFound, compiler)
	}

	sdk, err := selectSDK(ctx, host, console)
	if err != nil {
		return nil, err
	}
	return &Toolchain{
		CCompiler:    compiler,
		CXXCompiler:  compiler,
		SDK:          sdk,
		Installation: *selected,
	}, nil
}

// SDKs returns the well-formed SDK entries of host. Malformed entries are
// reported on console and skipped.
func SDKs(ctx context.Context, host Host, console *logs.Console) ([]SDK, error) {
	entries, err := host.SDKs(ctx)
	if err != nil {
		return nil, err
	}
	sdks := make([]SDK, 0, len(entries))
	for _, e := range entries {
		version, ok := strings.CutPrefix(e.Key, "v")
		switch {
		case !ok:
			console.Error("SDK version %q is not formatted correctly", e.Key)
			continue
		case e.InstallationFolder == "":
			console.Error("Cannot retrieve SDK %s \"InstallationFolder\"", e.Key)
			continue
		case e.ProductVersion == "":
			console.Error("Cannot retrieve SDK %s \"ProductVersion\"", e.Key)
			continue
		}
		sdks = append(sdks, SDK{
			InstallationPath: e.InstallationFolder,
			OSVersion:        version,
			ProductVersion:   e.ProductVersion,
		})
	}
	return sdks, nil
}

func selectSDK(ctx context.Context, host Host, console *logs.Console) (*SDK, error) {
	sdks, err := SDKs(ctx, host, console)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate Windows SDKs: %w", err)
	}
	osVersion := host.OSVersion()
	for i := range sdks {
		if strings.HasPrefix(osVersion, sdks[i].OSVersion) {
			return &sdks[i], nil
		}
	}
	console.Warn("No default Windows SDK found for Windows %s", osVersion)
	return nil, nil
}

func describe(inst Installation) string {
	return fmt.Sprintf("%s (%s %s, %s) at %s, C++ tools installed: %t, default version: %s",
		inst.Kind, inst.ProductName, inst.ProductLineVersion, inst.ProductID,
		inst.InstallationPath, inst.Complete, inst.ToolVersion)
}

func catalogValue(catalog map[string]string, key string) (string, bool) {
	for k, v := range catalog {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

func hasWorkload(inst Instance, workload string) bool {
	for _, p := range inst.Packages {
		if strings.EqualFold(p.Type, "Workload") && strings.EqualFold(p.ID, workload) {
			return true
		}
	}
	return false
}

func defaultToolVersion(installPath string) string {
	f, err := os.Open(filepath.Join(installPath, markerFile))
	if err != nil {
		return ""
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	if sc.Scan() {
		return strings.TrimSpace(sc.Text())
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
