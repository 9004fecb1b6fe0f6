package repositories

import (
	"context"
)

// ResourceCompilerRepository merges resource packs into one output pack using
// an external tool. The pack format is owned by the tool.
type ResourceCompilerRepository interface {
	Repack(ctx context.Context, tool []string, output string, inputs []string) error
}
