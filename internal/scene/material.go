package scene

import "math"

// Kind identifies a concrete material variant.
type Kind int

const (
	KindBasic Kind = iota
	KindLambert
	KindPhong
	KindStandard
	KindPhysical
)

func (k Kind) String() string {
	switch k {
	case KindBasic:
		return "basic"
	case KindLambert:
		return "lambert"
	case KindPhong:
		return "phong"
	case KindStandard:
		return "standard"
	case KindPhysical:
		return "physical"
	default:
		return "unknown"
	}
}

// Role is the classification written onto a material by the tagging pass.
type Role int

const (
	RoleUntagged Role = iota
	RoleOther
	RoleExcluded
	RoleSkin
	RoleFace
)

func (r Role) String() string {
	switch r {
	case RoleOther:
		return "other"
	case RoleExcluded:
		return "excluded"
	case RoleSkin:
		return "skin"
	case RoleFace:
		return "face"
	default:
		return "untagged"
	}
}

// IsSkin reports whether the role receives skin configuration.
func (r Role) IsSkin() bool {
	return r == RoleSkin || r == RoleFace
}

// Side selects which faces a material renders.
type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

// Capability is a bit set of surface parameters a material can carry.
type Capability uint16

const (
	CapColor Capability = 1 << iota
	CapTransmission
	CapThickness
	CapIOR
	CapAttenuation
	CapSheen
	CapClearcoat
	CapSpecular
)

// CapSubsurface is the set a material needs to take the layered skin model.
const CapSubsurface = CapColor | CapTransmission | CapThickness | CapIOR |
	CapAttenuation | CapSheen | CapClearcoat | CapSpecular

// Color is a linear float RGB triple.
type Color struct {
	R, G, B float64
}

// MaxDiff returns the largest per-channel absolute difference.
func (c Color) MaxDiff(o Color) float64 {
	return math.Max(math.Abs(c.R-o.R), math.Max(math.Abs(c.G-o.G), math.Abs(c.B-o.B)))
}

// White is the neutral tint.
var White = Color{1, 1, 1}

// MaterialBase holds the parameters every variant shares.
type MaterialBase struct {
	Name         string
	Color        Color
	Map          *Texture
	NormalMap    *Texture
	RoughnessMap *Texture
	Opacity      float64
	Transparent  bool
	Side         Side
	Skinning     bool
	MorphTargets bool
	MorphNormals bool
	Role         Role
	NeedsUpdate  bool
	disposed     bool
}

func (b *MaterialBase) Base() *MaterialBase { return b }

// Dispose marks the material released. Textures are not disposed here: they
// may be shared through the texture cache.
func (b *MaterialBase) Dispose() { b.disposed = true }

func (b *MaterialBase) Disposed() bool { return b.disposed }

// Material is implemented by every concrete variant.
type Material interface {
	Kind() Kind
	Capabilities() Capability
	Base() *MaterialBase
	Dispose()
	Disposed() bool
}

// Subsurface is the capability interface of materials that can express the
// layered skin model.
type Subsurface interface {
	Material
	BaseColor() Color
	SetBaseColor(Color)
	SetRoughness(float64)
	SetTransmission(float64)
	SetThickness(float64)
	SetIOR(float64)
	SetAttenuation(c Color, distance float64)
	SetSheen(intensity float64, c Color, roughness float64)
	SetClearcoat(intensity, roughness float64)
	SetSpecular(intensity float64, tint Color)
}

type BasicMaterial struct {
	MaterialBase
}

func (*BasicMaterial) Kind() Kind               { return KindBasic }
func (*BasicMaterial) Capabilities() Capability { return CapColor }

type LambertMaterial struct {
	MaterialBase
	Emissive Color
}

func (*LambertMaterial) Kind() Kind               { return KindLambert }
func (*LambertMaterial) Capabilities() Capability { return CapColor }

type PhongMaterial struct {
	MaterialBase
	Specular  Color
	Shininess float64
	Emissive  Color
}

func (*PhongMaterial) Kind() Kind               { return KindPhong }
func (*PhongMaterial) Capabilities() Capability { return CapColor | CapSpecular }

type StandardMaterial struct {
	MaterialBase
	Roughness float64
	Metalness float64
	Emissive  Color
}

func (*StandardMaterial) Kind() Kind               { return KindStandard }
func (*StandardMaterial) Capabilities() Capability { return CapColor }

// PhysicalMaterial extends the standard model with transmission, sheen,
// clearcoat and specular controls.
type PhysicalMaterial struct {
	StandardMaterial

	Transmission        float64
	Thickness           float64
	IOR                 float64
	AttenuationColor    Color
	AttenuationDistance float64

	Sheen          float64
	SheenColor     Color
	SheenRoughness float64

	Clearcoat          float64
	ClearcoatRoughness float64

	SpecularIntensity float64
	SpecularColor     Color
}

// NewPhysicalMaterial returns a physical material with renderer defaults.
func NewPhysicalMaterial(name string) *PhysicalMaterial {
	return &PhysicalMaterial{
		StandardMaterial: StandardMaterial{
			MaterialBase: MaterialBase{Name: name, Color: White, Opacity: 1},
			Roughness:    1,
		},
		IOR:                 1.5,
		AttenuationColor:    White,
		AttenuationDistance: math.Inf(1),
		SpecularIntensity:   1,
		SpecularColor:       White,
	}
}

func (*PhysicalMaterial) Kind() Kind               { return KindPhysical }
func (*PhysicalMaterial) Capabilities() Capability { return CapSubsurface }

func (p *PhysicalMaterial) BaseColor() Color          { return p.Color }
func (p *PhysicalMaterial) SetBaseColor(c Color)      { p.Color = c }
func (p *PhysicalMaterial) SetRoughness(v float64)    { p.Roughness = v }
func (p *PhysicalMaterial) SetTransmission(v float64) { p.Transmission = v }
func (p *PhysicalMaterial) SetThickness(v float64)    { p.Thickness = v }
func (p *PhysicalMaterial) SetIOR(v float64)          { p.IOR = v }

func (p *PhysicalMaterial) SetAttenuation(c Color, distance float64) {
	p.AttenuationColor = c
	p.AttenuationDistance = distance
}

func (p *PhysicalMaterial) SetSheen(intensity float64, c Color, roughness float64) {
	p.Sheen = intensity
	p.SheenColor = c
	p.SheenRoughness = roughness
}

func (p *PhysicalMaterial) SetClearcoat(intensity, roughness float64) {
	p.Clearcoat = intensity
	p.ClearcoatRoughness = roughness
}

func (p *PhysicalMaterial) SetSpecular(intensity float64, tint Color) {
	p.SpecularIntensity = intensity
	p.SpecularColor = tint
}

var _ Subsurface = (*PhysicalMaterial)(nil)
