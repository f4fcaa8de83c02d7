package sharecell

// Version information for the shared mutable state toolkit.
const (
	// Version is the current toolkit version string.
	Version = "0.1.0"

	// VersionMajor is the major version number.
	VersionMajor = 0

	// VersionMinor is the minor version number.
	VersionMinor = 1

	// VersionPatch is the patch version number.
	VersionPatch = 0
)

// Info provides build-time information about the toolkit.
type Info struct {
	// Version is the toolkit version string.
	Version string

	// Primitives names the primitive families this build provides.
	Primitives []string
}

// GetInfo returns information about the toolkit build.
//
// Example:
//
//	info := sharecell.GetInfo()
//	fmt.Printf("sharecell %s\n", info.Version)
func GetInfo() Info {
	return Info{
		Version: Version,
		Primitives: []string{
			"rc", "arc", "borrow", "lock", "shared",
		},
	}
}
