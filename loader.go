package hoist

import (
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/asyncapi-tools/hoist/hoisterrors"
	"github.com/asyncapi-tools/hoist/internal/pathutil"
)

// loader performs the on-demand file loading described in §4.4 step 2-3:
// locating a discriminator-mapping target on disk, parsing it, and
// recursively dereferencing and registering the schemas it contains.
type loader struct {
	cfg         *config
	reg         *registry
	scanned     bool
	filesLoaded int
}

func newLoader(cfg *config, reg *registry) *loader {
	return &loader{cfg: cfg, reg: reg}
}

// locate implements §4.4 step 2: compute a resolved origin path for
// mappingValue, given the origin of the schema whose discriminator
// referenced it (schemaOrigin may be "").
func (l *loader) locate(mappingValue, schemaOrigin string) (string, bool, error) {
	var candidates []string
	if schemaOrigin != "" && !isLocalRefOrigin(schemaOrigin) {
		joined := path.Join(path.Dir(normalizePath(schemaOrigin)), mappingValue)
		candidates = append(candidates, normalizePath(joined))
	}
	candidates = append(candidates, normalizePath(mappingValue), filepath.Base(mappingValue))

	for _, c := range candidates {
		if l.fileExists(c) {
			return c, true, nil
		}
	}

	matches, err := l.scanForBasename(filepath.Base(mappingValue))
	if err != nil {
		return "", false, err
	}
	switch len(matches) {
	case 0:
		return "", false, nil
	case 1:
		return matches[0], true, nil
	default:
		if schemaOrigin != "" {
			dirName := filepath.Base(filepath.Dir(schemaOrigin))
			var filtered []string
			for _, m := range matches {
				if strings.Contains(m, dirName) {
					filtered = append(filtered, m)
				}
			}
			if len(filtered) == 1 {
				return filtered[0], true, nil
			}
		}
		return "", false, nil
	}
}

func (l *loader) fileExists(relPath string) bool {
	info, err := os.Stat(filepath.Join(l.cfg.workingDir, filepath.FromSlash(relPath)))
	return err == nil && !info.IsDir()
}

// scanForBasename implements §4.4 step 2's fallback: a single recursive
// directory scan (excluding .git, node_modules, and lib), cached by
// basename in the registry's fileSearchCache so repeated lookups across
// the fixpoint loop don't re-walk the tree.
func (l *loader) scanForBasename(base string) ([]string, error) {
	if err := l.ensureScanned(); err != nil {
		return nil, err
	}
	return l.reg.fileSearchCache[base], nil
}

// ensureScanned performs the fallback directory scan once per Run. An I/O
// failure during the walk fails the whole pass (§7) rather than being
// treated as "nothing found" — the caller has no way to tell the two
// apart otherwise, and a partial scan could silently miss a real match.
func (l *loader) ensureScanned() error {
	if l.scanned {
		return nil
	}

	excluded := make(map[string]bool, len(fixedExcludeDirs)+len(l.cfg.excludeDirs))
	for _, d := range fixedExcludeDirs {
		excluded[d] = true
	}
	for _, d := range l.cfg.excludeDirs {
		excluded[d] = true
	}

	count := 0
	walkErr := filepath.WalkDir(l.cfg.workingDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != l.cfg.workingDir && excluded[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if count >= l.cfg.maxScanFiles {
			return filepath.SkipAll
		}
		count++
		rel, err := filepath.Rel(l.cfg.workingDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		base := filepath.Base(rel)
		l.reg.fileSearchCache[base] = append(l.reg.fileSearchCache[base], rel)
		return nil
	})
	if walkErr != nil {
		return hoisterrors.NewIOError(l.cfg.workingDir, "scanning working directory for discriminator-mapping targets", walkErr)
	}

	l.scanned = true
	for base := range l.reg.fileSearchCache {
		sort.Strings(l.reg.fileSearchCache[base])
	}
	return nil
}

// loadAndRegister implements §4.4 step 3: parse the file at relPath,
// recursively dereference any external $ref it contains against its own
// directory (tagging each dereferenced node's x-origin), tag the root with
// relPath, and register the root and every nested externally-originated
// schema subtree.
func (l *loader) loadAndRegister(relPath string) (string, error) {
	doc, err := l.readSchemaFile(relPath)
	if err != nil {
		return "", err
	}
	doc["x-origin"] = relPath
	l.dereference(doc, relPath, map[string]bool{relPath: true})
	l.filesLoaded++

	visit := newCollectorVisitor(l.reg)
	schemaWalk(doc, nodeSlot{}, nil, true, visit)

	name, _ := l.reg.nameByOrigin(relPath)
	return name, nil
}

func (l *loader) readSchemaFile(relPath string) (map[string]any, error) {
	full := filepath.Join(l.cfg.workingDir, filepath.FromSlash(relPath))
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, hoisterrors.NewIOError(relPath, "reading discriminator-mapping target", err)
	}

	var doc map[string]any
	if strings.EqualFold(filepath.Ext(relPath), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, hoisterrors.NewParseError(relPath, "invalid JSON", err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, hoisterrors.NewParseError(relPath, "invalid YAML", err)
	}
	return doc, nil
}

// dereference walks node looking for reference objects pointing at other
// external files, loading and inlining each one in place (tagging its
// x-origin), scoped to the directory of originPath. visited guards against
// a $ref cycle across files.
func (l *loader) dereference(node any, originPath string, visited map[string]bool) {
	switch v := node.(type) {
	case map[string]any:
		for k, val := range v {
			if child, ok := val.(map[string]any); ok {
				if isReferenceObject(child) {
					ref := child["$ref"].(string)
					if pathutil.IsLocalRef(ref) {
						continue
					}
					target := normalizePath(path.Join(path.Dir(originPath), ref))
					if visited[target] || !l.fileExists(target) {
						continue
					}
					visited[target] = true
					loaded, err := l.readSchemaFile(target)
					if err != nil {
						continue // soft failure (§7): leave the reference unresolved
					}
					loaded["x-origin"] = target
					l.dereference(loaded, target, visited)
					v[k] = loaded
					continue
				}
				l.dereference(child, originPath, visited)
			} else if arr, ok := val.([]any); ok {
				l.dereference(arr, originPath, visited)
			}
		}
	case []any:
		for _, item := range v {
			l.dereference(item, originPath, visited)
		}
	}
}

// withScopedWorkingDir changes the process working directory to dir for
// the duration of fn, restoring the original directory on every exit path
// including panics (§5, §9). The discriminator resolver is the only pass
// that loads files on demand, so it is the only pass that needs this.
func withScopedWorkingDir(dir string, fn func() error) error {
	original, err := os.Getwd()
	if err != nil {
		return err
	}
	if err := os.Chdir(dir); err != nil {
		return err
	}
	defer func() {
		_ = os.Chdir(original)
	}()
	return fn()
}
