package limbmass

import (
	"regexp"
	"sort"
	"sync"

	"avatar-morph/internal/logging"
	"avatar-morph/internal/scene"
)

// GroupPatterns maps a bone group to the name patterns of its members.
// Patterns are case-insensitive; a bone joins a group if any pattern matches.
type GroupPatterns map[string][]string

// Groups maps a group name to the rig's bones in traversal order.
type Groups map[string][]*scene.Node

// DefaultBoneGroups covers Mixamo, VRoid-style and generic rig naming.
var DefaultBoneGroups = GroupPatterns{
	"upperArm": {`^(mixamorig:?)?(left|right)[_.]?arm$`, `upper_?arm`, `^(l|r)[_.]arm$`},
	"forearm":  {`fore_?arm`, `lower_?arm`, `elbow`},
	"thigh":    {`thigh`, `up_?leg`, `upper_?leg`},
	"calf":     {`^(mixamorig:?)?(left|right)[_.]?leg$`, `calf`, `shin`, `lower_?leg`},
	"neck":     {`neck`},
	"hips":     {`hips?$`, `pelvis`},
	"spine":    {`spine\d*$`, `chest`, `torso`},
}

type compiledGroup struct {
	name     string
	patterns []*regexp.Regexp
}

// BoneGroupResolver matches rig bones against configured pattern groups.
// Patterns compile once; the result for a rig root is cached until Reset.
// It is safe for concurrent use.
type BoneGroupResolver struct {
	groups []compiledGroup

	mu    sync.RWMutex
	cache map[*scene.Node]Groups
}

// NewBoneGroupResolver compiles patterns. Invalid patterns are logged and
// treated as never matching.
func NewBoneGroupResolver(patterns GroupPatterns) *BoneGroupResolver {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)

	r := &BoneGroupResolver{cache: make(map[*scene.Node]Groups)}
	for _, name := range names {
		g := compiledGroup{name: name}
		for _, p := range patterns[name] {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				logging.Logger().Warn("bone group pattern dropped", "group", name, "pattern", p, "err", err)
				continue
			}
			g.patterns = append(g.patterns, re)
		}
		r.groups = append(r.groups, g)
	}
	return r
}

// Resolve walks the rig once and returns each group's bones. Matching bones
// are tagged with their group names. Repeated calls for the same root return
// the cached result.
func (r *BoneGroupResolver) Resolve(root *scene.Node) Groups {
	r.mu.RLock()
	cached, ok := r.cache[root]
	r.mu.RUnlock()
	if ok {
		return cached
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Double-check: another goroutine may have resolved it meanwhile
	if cached, ok := r.cache[root]; ok {
		return cached
	}
	out := make(Groups, len(r.groups))
	for _, g := range r.groups {
		out[g.name] = nil
	}
	root.Traverse(func(n *scene.Node) {
		if !n.IsBone {
			return
		}
		for _, g := range r.groups {
			for _, re := range g.patterns {
				if re.MatchString(n.Name) {
					out[g.name] = append(out[g.name], n)
					n.Tag(g.name)
					break
				}
			}
		}
	})
	r.cache[root] = out
	return out
}

// Reset forgets cached resolutions, e.g. after a new rig is loaded.
func (r *BoneGroupResolver) Reset() {
	r.mu.Lock()
	clear(r.cache)
	r.mu.Unlock()
}

// ResolveBoneGroups is a one-shot resolve without caching.
func ResolveBoneGroups(root *scene.Node, patterns GroupPatterns) Groups {
	return NewBoneGroupResolver(patterns).Resolve(root)
}
