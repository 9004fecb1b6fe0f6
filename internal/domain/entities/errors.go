package entities

import (
	"fmt"
	"strings"
)

// ManifestParseError is returned when a manifest cannot be read or lacks a deps mapping.
type ManifestParseError struct {
	Source string
	Line   int
	Reason string
}

func (e *ManifestParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("manifest %s:%d: %s", e.Source, e.Line, e.Reason)
	}
	return fmt.Sprintf("manifest %s: %s", e.Source, e.Reason)
}

// BranchMismatchError is returned when two platforms require different refs for one path.
type BranchMismatchError struct {
	Path        string
	ExistingRef string
	IncomingRef string
}

func (e *BranchMismatchError) Error() string {
	return fmt.Sprintf(
		"branch mismatch for %s (%s vs %s)", e.Path, e.ExistingRef, e.IncomingRef,
	)
}

// BaselineNotFoundError is returned when no snapshot commit mentions the target version.
type BaselineNotFoundError struct {
	Dir     string
	Version string
}

func (e *BaselineNotFoundError) Error() string {
	return fmt.Sprintf(
		"no baseline commit for version %s in %s, run initialize first", e.Version, e.Dir,
	)
}

// RemoteFetchError wraps a failed network operation against a remote.
type RemoteFetchError struct {
	Dir    string
	Remote string
	Ref    string
	Err    error
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("could not fetch %s from %s in %s: %v", e.Ref, e.Remote, e.Dir, e.Err)
}

func (e *RemoteFetchError) Unwrap() error { return e.Err }

// CheckoutError wraps a failed working copy state transition.
type CheckoutError struct {
	Dir    string
	Target string
	Err    error
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("checkout of %s failed in %s: %v", e.Target, e.Dir, e.Err)
}

func (e *CheckoutError) Unwrap() error { return e.Err }

// PatchApplyError is returned when a patch fails a three-way apply.
type PatchApplyError struct {
	OwnerDir string
	Patch    string
	Err      error
}

func (e *PatchApplyError) Error() string {
	return fmt.Sprintf("applying %s failed in %s: %v", e.Patch, e.OwnerDir, e.Err)
}

func (e *PatchApplyError) Unwrap() error { return e.Err }

// AnnotationMismatchError describes a patch whose owner tag does not match the
// paths it touches. These are collected and reported as a batch.
type AnnotationMismatchError struct {
	Patch   string
	Owner   string
	Touched map[string][]string // Actual owner dir -> changed paths
}

func (e *AnnotationMismatchError) Error() string {
	parts := make([]string, 0, len(e.Touched))
	for _, owner := range sortedKeys(e.Touched) {
		parts = append(parts, fmt.Sprintf("%s (%s)", owner, strings.Join(e.Touched[owner], ", ")))
	}
	return fmt.Sprintf(
		"%s is annotated <%s> but touches %s", e.Patch, e.Owner, strings.Join(parts, "; "),
	)
}
