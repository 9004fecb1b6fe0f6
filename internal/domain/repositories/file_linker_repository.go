package repositories

// FileLinkerRepository copies exported files into the snapshot tree.
type FileLinkerRepository interface {
	// Clear empties dir, keeping the entries named in keep.
	Clear(dir string, keep []string) error

	// Link places src at dst, creating parent directories and replacing dst.
	Link(src, dst string) error
}
