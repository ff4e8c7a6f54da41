package scene

// Mesh holds blend-shape state and material slots for one renderable node.
// MorphInfluences is parallel to the indices in MorphDictionary.
type Mesh struct {
	MorphDictionary     map[string]int
	MorphInfluences     []float64
	Materials           []Material
	GeometryNeedsUpdate bool
}

// NewMesh builds a mesh whose morph channels are named in order.
func NewMesh(morphNames []string, materials ...Material) *Mesh {
	dict := make(map[string]int, len(morphNames))
	for i, name := range morphNames {
		dict[name] = i
	}
	return &Mesh{
		MorphDictionary: dict,
		MorphInfluences: make([]float64, len(morphNames)),
		Materials:       materials,
	}
}

// HasMorphTargets reports whether the mesh exposes any blend-shape channel.
func (m *Mesh) HasMorphTargets() bool {
	return m != nil && len(m.MorphDictionary) > 0 && len(m.MorphInfluences) > 0
}

// Influence returns the current influence of a named channel.
func (m *Mesh) Influence(name string) (float64, bool) {
	idx, ok := m.MorphDictionary[name]
	if !ok || idx < 0 || idx >= len(m.MorphInfluences) {
		return 0, false
	}
	return m.MorphInfluences[idx], true
}
