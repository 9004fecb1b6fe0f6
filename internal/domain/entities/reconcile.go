package entities

import (
	"path"
	"slices"
	"sort"
	"strings"

	logger "github.com/sirupsen/logrus"
)

// ReconcilePolicy holds the allow and deny lists used while merging records.
type ReconcilePolicy struct {
	LaggingPlatforms []string // Platforms allowed to lag behind on a different branch
	Deny             []string // Paths removed after reconciliation (glob or segment sequence)
}

// Resolution is the deduplicated set of dependencies keyed by path.
type Resolution map[string]DependencyRecord

// Sorted returns the records ordered by path, for diagnostics.
func (r Resolution) Sorted() []DependencyRecord {
	records := make([]DependencyRecord, 0, len(r))
	for _, key := range sortedKeys(r) {
		records = append(records, r[key])
	}
	return records
}

// Paths returns the resolved paths in sorted order.
func (r Resolution) Paths() []string {
	return sortedKeys(r)
}

// Reconcile merges records that share a path and applies the deny list:
//   - a pinned record beats an unpinned one;
//   - between two pinned records the higher ordinal wins, then the smaller hash;
//   - an unpinned record that does not have a higher ordinal than the kept one
//     is skipped, whatever its ref;
//   - a newer record on a different ref replaces the kept one only when the kept
//     one is on a lagging platform, is skipped when it is itself on a lagging
//     platform, and is a BranchMismatchError otherwise.
func Reconcile(records []DependencyRecord, policy ReconcilePolicy) (Resolution, error) {
	resolution := make(Resolution, len(records))

	for _, incoming := range records {
		existing, found := resolution[incoming.Path]
		if !found {
			resolution[incoming.Path] = incoming
			continue
		}

		keepIncoming, err := policy.prefer(existing, incoming)
		if err != nil {
			return nil, err
		}
		if keepIncoming {
			logger.Infof(
				"Duplicate dependency %s, using %s (%s) over %s (%s)",
				incoming.Path, incoming.Revision(), incoming.PlatformLabel(),
				existing.Revision(), existing.PlatformLabel(),
			)
			resolution[incoming.Path] = incoming
		} else {
			logger.Debugf(
				"Duplicate dependency %s, keeping %s (%s)",
				existing.Path, existing.Revision(), existing.PlatformLabel(),
			)
		}
	}

	for _, key := range sortedKeys(resolution) {
		if policy.Denied(key) {
			logger.Debugf("Dropping denied dependency %s", key)
			delete(resolution, key)
		}
	}

	return resolution, nil
}

// prefer reports whether the incoming record replaces the existing one.
func (p ReconcilePolicy) prefer(existing, incoming DependencyRecord) (bool, error) {
	switch {
	case existing.IsPinned() && !incoming.IsPinned():
		return false, nil
	case !existing.IsPinned() && incoming.IsPinned():
		return true, nil
	case existing.IsPinned() && incoming.IsPinned():
		if existing.RevisionOrdinal != incoming.RevisionOrdinal {
			return incoming.RevisionOrdinal > existing.RevisionOrdinal, nil
		}
		if existing.PinnedRevision == incoming.PinnedRevision {
			return recordKey(incoming) < recordKey(existing), nil
		}
		logger.Warnf(
			"Conflicting pins for %s (%s vs %s)",
			existing.Path, existing.PinnedRevision, incoming.PinnedRevision,
		)
		return incoming.PinnedRevision < existing.PinnedRevision, nil
	}

	if incoming.RevisionOrdinal <= existing.RevisionOrdinal {
		return false, nil
	}
	if existing.Ref != "" && incoming.Ref != "" && existing.Ref != incoming.Ref {
		switch {
		case p.lags(incoming):
			return false, nil
		case p.lags(existing):
			return true, nil
		}
		return false, &BranchMismatchError{
			Path:        existing.Path,
			ExistingRef: existing.Ref,
			IncomingRef: incoming.Ref,
		}
	}
	return true, nil
}

func recordKey(record DependencyRecord) string {
	return record.PlatformLabel() + "\x00" + record.URL
}

// lags reports whether every platform of the record may lag behind.
func (p ReconcilePolicy) lags(record DependencyRecord) bool {
	if len(record.Platforms) == 0 {
		return false
	}
	for _, platform := range record.Platforms {
		if !slices.Contains(p.LaggingPlatforms, platform) {
			return false
		}
	}
	return true
}

// Denied reports whether a path matches the deny list. Entries with glob
// characters use path.Match, plain entries match a contiguous run of segments.
func (p ReconcilePolicy) Denied(location string) bool {
	segments := SplitPath(location)
	joined := "/" + strings.Join(segments, "/") + "/"
	for _, entry := range p.Deny {
		if strings.ContainsAny(entry, "*?[") {
			if matched, err := path.Match(entry, location); err == nil && matched {
				return true
			}
			continue
		}
		entry = CleanPath(entry)
		if entry != "" && strings.Contains(joined, "/"+entry+"/") {
			return true
		}
	}
	return false
}

// SortRecords orders records by path in place.
func SortRecords(records []DependencyRecord) {
	sort.SliceStable(records, func(i, j int) bool { return records[i].Path < records[j].Path })
}
