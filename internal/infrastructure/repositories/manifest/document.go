package manifest

import (
	"fmt"
	"regexp"
	"sort"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

const (
	depsName        = "deps"
	depsOSName      = "deps_os"
	recurseDepsName = "recursedeps"
	urlKey          = "url"
)

// placeholderPattern matches "{name}" references to vars inside URLs.
var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)}`)

// buildManifest maps the top-level names of a parsed document onto a Manifest.
// Unknown names (hooks, include_rules, ...) are ignored.
func buildManifest(source string, scope map[string]any) (*entities.Manifest, error) {
	manifest := &entities.Manifest{Source: source, Vars: map[string]string{}}

	if rawVars, found := scope[varsName]; found {
		vars, ok := rawVars.(map[string]any)
		if !ok {
			return nil, &entities.ManifestParseError{Source: source, Reason: "vars must be a mapping"}
		}
		for key, value := range vars {
			if text, isString := value.(string); isString {
				manifest.Vars[key] = text
			}
		}
	}

	if rawDeps, found := scope[depsName]; found {
		deps, err := dependencyMapping(source, depsName, rawDeps, manifest.Vars)
		if err != nil {
			return nil, err
		}
		manifest.Deps = deps
	}

	if rawDepsOS, found := scope[depsOSName]; found && rawDepsOS != nil {
		platforms, ok := rawDepsOS.(map[string]any)
		if !ok {
			return nil, &entities.ManifestParseError{Source: source, Reason: "deps_os must be a mapping"}
		}
		manifest.DepsOS = make(map[string]map[string]string, len(platforms))
		for platform, rawScope := range platforms {
			deps, err := dependencyMapping(source, depsOSName+"."+platform, rawScope, manifest.Vars)
			if err != nil {
				return nil, err
			}
			manifest.DepsOS[platform] = deps
		}
	}

	if rawRecurse, found := scope[recurseDepsName]; found && rawRecurse != nil {
		entries, ok := rawRecurse.([]any)
		if !ok {
			return nil, &entities.ManifestParseError{Source: source, Reason: "recursedeps must be a list"}
		}
		for _, entry := range entries {
			location, entryOK := recurseEntry(entry)
			if !entryOK {
				return nil, &entities.ManifestParseError{
					Source: source, Reason: fmt.Sprintf("unsupported recursedeps entry %v", entry),
				}
			}
			manifest.RecurseDeps = append(manifest.RecurseDeps, location)
		}
	}

	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// dependencyMapping flattens one deps scope into path -> "url@revision".
// Dict values use their url key, None values and url-less entries are skipped.
func dependencyMapping(source, label string, raw any, vars map[string]string) (map[string]string, error) {
	entries, ok := raw.(map[string]any)
	if !ok {
		return nil, &entities.ManifestParseError{Source: source, Reason: label + " must be a mapping"}
	}

	result := make(map[string]string, len(entries))
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch value := entries[key].(type) {
		case nil:
			continue
		case string:
			result[key] = expandPlaceholders(value, vars)
		case map[string]any:
			url, isString := value[urlKey].(string)
			if !isString {
				logger.Debugf("Skipping %s in %s, it has no url", key, label)
				continue
			}
			result[key] = expandPlaceholders(url, vars)
		default:
			return nil, &entities.ManifestParseError{
				Source: source, Reason: fmt.Sprintf("%s: unsupported value for %q", label, key),
			}
		}
	}
	return result, nil
}

// recurseEntry accepts a path or a list whose first element is the path.
func recurseEntry(entry any) (string, bool) {
	switch value := entry.(type) {
	case string:
		return value, true
	case []any:
		if len(value) > 0 {
			text, ok := value[0].(string)
			return text, ok
		}
	}
	return "", false
}

func expandPlaceholders(value string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(value, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if replacement, found := vars[name]; found {
			return replacement
		}
		return match
	})
}
