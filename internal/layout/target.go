package layout

import (
	"fmt"
	"strings"
)

// Target describes the ABI target and its pointer properties.
type Target struct {
	Name     string // e.g. "x86_64"
	Triple   string // e.g. "x86_64-linux-gnu"
	PtrSize  int    // bytes
	PtrAlign int    // bytes
	// Int64Align is the alignment of 64-bit scalars, which i686 lowers to 4.
	Int64Align int
	// Int128Align is the alignment of __int128 and unsigned __int128.
	Int128Align int
}

func X86_64LinuxGNU() Target {
	return Target{
		Name:        "x86_64",
		Triple:      "x86_64-linux-gnu",
		PtrSize:     8,
		PtrAlign:    8,
		Int64Align:  8,
		Int128Align: 16,
	}
}

func I686LinuxGNU() Target {
	return Target{
		Name:        "i686",
		Triple:      "i686-linux-gnu",
		PtrSize:     4,
		PtrAlign:    4,
		Int64Align:  4,
		Int128Align: 16,
	}
}

func AArch64LinuxGNU() Target {
	return Target{
		Name:        "aarch64",
		Triple:      "aarch64-linux-gnu",
		PtrSize:     8,
		PtrAlign:    8,
		Int64Align:  8,
		Int128Align: 16,
	}
}

// Targets lists the supported target names.
func Targets() []string {
	return []string{"x86_64", "i686", "aarch64"}
}

// TargetByName resolves a target name or triple.
func TargetByName(name string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "x86_64", "x86_64-linux-gnu", "amd64":
		return X86_64LinuxGNU(), nil
	case "i686", "i686-linux-gnu", "x86", "386":
		return I686LinuxGNU(), nil
	case "aarch64", "aarch64-linux-gnu", "arm64":
		return AArch64LinuxGNU(), nil
	}
	return Target{}, fmt.Errorf("unknown target %q (supported: %s)", name, strings.Join(Targets(), ", "))
}
