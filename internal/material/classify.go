// Package material classifies a rig's materials, upgrades skin materials to a
// subsurface-capable variant and configures them from a skin tone.
package material

import (
	"strings"

	"avatar-morph/internal/scene"
)

// excludePatterns mark materials that never take skin parameters, even when
// an inclusion keyword also matches ("Eye_Skin", "HairBody").
var excludePatterns = []string{
	"eye", "cornea", "iris", "pupil", "sclera",
	"teeth", "tooth", "tongue", "gum",
	"hair", "lash", "brow", "beard",
	"nail",
	"metal", "glass", "mirror", "lens",
	"cloth", "shirt", "pant", "shoe", "armor", "armour", "jewel",
}

// facePatterns take precedence over skinPatterns so heads get the face role.
var facePatterns = []string{"face", "head", "cheek", "lip", "nose"}

var skinPatterns = []string{"skin", "body", "torso", "arm", "leg", "hand", "foot", "neck"}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// Classify returns the role for a material by its own name and the name of
// the node that renders it. Exclusion on either name wins.
func Classify(materialName, nodeName string) scene.Role {
	names := []string{strings.ToLower(materialName), strings.ToLower(nodeName)}
	for _, n := range names {
		if containsAny(n, excludePatterns) {
			return scene.RoleExcluded
		}
	}
	for _, n := range names {
		if containsAny(n, facePatterns) {
			return scene.RoleFace
		}
	}
	for _, n := range names {
		if containsAny(n, skinPatterns) {
			return scene.RoleSkin
		}
	}
	return scene.RoleOther
}

// TagCounts reports how many materials received each role.
type TagCounts map[scene.Role]int

// TagMaterials writes a Role onto every untagged material under root. With
// retag set, existing roles are recomputed too. Materials shared between
// meshes are classified by the first node that renders them.
func TagMaterials(root *scene.Node, retag bool) TagCounts {
	counts := make(TagCounts)
	seen := make(map[scene.Material]bool)
	for _, n := range root.Meshes() {
		for _, m := range n.Mesh.Materials {
			if m == nil || seen[m] {
				continue
			}
			seen[m] = true
			b := m.Base()
			if b.Role == scene.RoleUntagged || retag {
				b.Role = Classify(b.Name, n.Name)
			}
			counts[b.Role]++
		}
	}
	return counts
}
