package provider

import "github.com/hivefs/hivefs/pkg/types"

// PlaceholderFor synthesizes the metadata record the virtualization
// layer needs before it can mark a path as resolvable. Only name,
// kind and size are reported; timestamps and security metadata stay
// at their protocol defaults.
func PlaceholderFor(e types.Entry) types.PlaceholderInfo {
	info := types.PlaceholderInfo{
		Name:        e.Name,
		IsDirectory: e.IsDirectory(),
	}
	if !info.IsDirectory {
		info.Size = e.Size
	}
	return info
}
