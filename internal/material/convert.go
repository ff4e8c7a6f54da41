package material

import (
	"errors"
	"fmt"
	"math"

	"avatar-morph/internal/scene"
)

// ErrIncompatible is returned for a material variant no converter handles.
var ErrIncompatible = errors.New("material: no subsurface converter")

type converter func(scene.Material) *scene.PhysicalMaterial

// converters upgrade each concrete variant to a physical material. A converter
// returns nil when the value is not the variant its Kind claims.
var converters = map[scene.Kind]converter{
	scene.KindBasic: func(m scene.Material) *scene.PhysicalMaterial {
		return physicalFrom(m.Base(), 1, 0, scene.Color{})
	},
	scene.KindLambert: func(m scene.Material) *scene.PhysicalMaterial {
		l, ok := m.(*scene.LambertMaterial)
		if !ok {
			return nil
		}
		return physicalFrom(m.Base(), 1, 0, l.Emissive)
	},
	scene.KindPhong: func(m scene.Material) *scene.PhysicalMaterial {
		p, ok := m.(*scene.PhongMaterial)
		if !ok {
			return nil
		}
		return physicalFrom(m.Base(), math.Sqrt(2/(math.Max(p.Shininess, 0)+2)), 0, p.Emissive)
	},
	scene.KindStandard: func(m scene.Material) *scene.PhysicalMaterial {
		s, ok := m.(*scene.StandardMaterial)
		if !ok {
			return nil
		}
		return physicalFrom(m.Base(), s.Roughness, s.Metalness, s.Emissive)
	},
}

// physicalFrom copies the shared parameters of src onto a new physical
// material. Disposal state is not copied.
func physicalFrom(src *scene.MaterialBase, roughness, metalness float64, emissive scene.Color) *scene.PhysicalMaterial {
	p := scene.NewPhysicalMaterial(src.Name)
	b := p.Base()
	b.Color = src.Color
	b.Map = src.Map
	b.NormalMap = src.NormalMap
	b.RoughnessMap = src.RoughnessMap
	b.Opacity = src.Opacity
	b.Transparent = src.Transparent
	b.Side = src.Side
	b.Skinning = src.Skinning
	b.MorphTargets = src.MorphTargets
	b.MorphNormals = src.MorphNormals
	b.Role = src.Role
	b.NeedsUpdate = true
	p.Roughness = roughness
	p.Metalness = metalness
	p.Emissive = emissive
	return p
}

// Upgrade returns m as a Subsurface material, converting it when needed.
// converted is false when m already had the capability.
func Upgrade(m scene.Material) (s scene.Subsurface, converted bool, err error) {
	if s, ok := m.(scene.Subsurface); ok && m.Capabilities()&scene.CapSubsurface == scene.CapSubsurface {
		return s, false, nil
	}
	conv, ok := converters[m.Kind()]
	if !ok {
		return nil, false, fmt.Errorf("%w for %s material %q", ErrIncompatible, m.Kind(), m.Base().Name)
	}
	p := conv(m)
	if p == nil {
		return nil, false, fmt.Errorf("%w: %q is not a %s material", ErrIncompatible, m.Base().Name, m.Kind())
	}
	return p, true, nil
}
