package toolchain

import (
	"fmt"
	"strings"
)

// Kind is a supported compiler suite, and with it the CMake generator that
// drives it.
type Kind int

const (
	VS2022BuildTools Kind = iota + 1
	VS2022Community
)

type kindInfo struct {
	name    string
	alias   string
	product string
	// workload that must be installed for C++ builds.
	workload string
	line     string
}

var kinds = map[Kind]kindInfo{
	VS2022BuildTools: {
		name:     "Visual Studio 2022 BuildTools",
		alias:    "vs2022-buildtools",
		product:  ProductBuildTools,
		workload: "Microsoft.VisualStudio.Workload.VCTools",
		line:     "2022",
	},
	VS2022Community: {
		name:     "Visual Studio 2022 Community",
		alias:    "vs2022-community",
		product:  ProductCommunity,
		workload: "Microsoft.VisualStudio.Workload.NativeDesktop",
		line:     "2022",
	},
}

// Product identifiers reported by the Visual Studio installer.
const (
	ProductBuildTools = "Microsoft.VisualStudio.Product.BuildTools"
	ProductCommunity  = "Microsoft.VisualStudio.Product.Community"
)

// Kinds returns every supported kind in declaration order.
func Kinds() []Kind {
	return []Kind{VS2022BuildTools, VS2022Community}
}

// ParseKind accepts a display name such as "Visual Studio 2022 Community" or
// its short alias, case-insensitively.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	for _, k := range Kinds() {
		info := kinds[k]
		if strings.EqualFold(s, info.name) || strings.EqualFold(s, info.alias) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown generator %q", s)
}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Alias returns the short command line name of k.
func (k Kind) Alias() string {
	return kinds[k].alias
}

func classify(lineVersion, product string) (Kind, bool) {
	for _, k := range Kinds() {
		info := kinds[k]
		if info.line == lineVersion && info.product == product {
			return k, true
		}
	}
	return 0, false
}
