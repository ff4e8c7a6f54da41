package material

import (
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"avatar-morph/internal/logging"
	"avatar-morph/internal/scene"
	"avatar-morph/internal/skinmodel"
	"avatar-morph/internal/skintone"
	"avatar-morph/internal/texgen"
)

var (
	// ErrNoMeshes means the scene has nothing renderable to configure.
	ErrNoMeshes = errors.New("material: scene has no meshes")
	// ErrInvalidTone means the tone's encodings disagree.
	ErrInvalidTone = errors.New("material: invalid skin tone")
)

// ColorEpsilon is the largest tolerated drift of a skin material's colour
// from the tone before it is corrected.
const ColorEpsilon = 1e-6

// Options controls Configure.
type Options struct {
	// ProceduralTextures layers normal and roughness maps from Cache onto
	// skin materials. Base colour maps are never applied.
	ProceduralTextures bool
	Cache              *texgen.Cache
	// Retag recomputes roles of already tagged materials.
	Retag bool
}

// Result summarizes one Configure call. It is meant for logging.
type Result struct {
	Success                   bool
	MaterialsProcessed        int
	MaterialsUpgraded         int
	SkinMaterialsModified     int
	ProceduralTexturesApplied int
	Errors                    []string
	Err                       error
}

func (r Result) String() string {
	if r.Err != nil {
		return "materials: " + r.Err.Error()
	}
	return fmt.Sprintf("materials: processed=%d upgraded=%d skin=%d textured=%d errors=%d success=%v",
		r.MaterialsProcessed, r.MaterialsUpgraded, r.SkinMaterialsModified, r.ProceduralTexturesApplied, len(r.Errors), r.Success)
}

// Configure applies tone to every skin and face material under root.
// Materials without the subsurface capability are replaced in their mesh
// slot by an upgraded copy and the old one is disposed; callers holding
// material references must re-read them from Mesh.Materials.
func Configure(root *scene.Node, tone skintone.Tone, opts Options) Result {
	log := logging.Logger()
	if !tone.Valid() {
		return Result{Err: ErrInvalidTone}
	}
	meshes := root.Meshes()
	if len(meshes) == 0 {
		return Result{Err: ErrNoMeshes}
	}

	TagMaterials(root, opts.Retag)
	model := skinmodel.Compute(tone)
	want := tone.SceneColor()

	var maps *texgen.Maps
	if opts.ProceduralTextures && opts.Cache != nil {
		maps = opts.Cache.Get(tone)
	}

	var res Result
	replaced := make(map[scene.Material]scene.Subsurface)
	done := make(map[scene.Material]bool)
	for _, n := range meshes {
		for i, m := range n.Mesh.Materials {
			if m == nil {
				continue
			}
			if up, ok := replaced[m]; ok {
				n.Mesh.Materials[i] = up
				continue
			}
			if done[m] {
				continue
			}
			done[m] = true
			res.MaterialsProcessed++
			if !m.Base().Role.IsSkin() {
				continue
			}

			sub, converted, err := Upgrade(m)
			if err != nil {
				log.Warn("skin material skipped", "node", n.Name, "material", m.Base().Name, "err", err)
				res.Errors = append(res.Errors, err.Error())
				continue
			}
			if converted {
				n.Mesh.Materials[i] = sub
				replaced[m] = sub
				done[sub] = true
				m.Dispose()
				res.MaterialsUpgraded++
				log.Debug("material upgraded", "node", n.Name, "material", m.Base().Name, "from", m.Kind())
			}

			sub.SetBaseColor(want)
			applyModel(sub, model)
			if maps != nil {
				b := sub.Base()
				b.NormalMap = maps.Normal
				b.RoughnessMap = maps.Roughness
				res.ProceduralTexturesApplied++
			}
			reassertColor(sub, want, n.Name)
			sub.Base().NeedsUpdate = true
			res.SkinMaterialsModified++
		}
	}

	res.Success = res.SkinMaterialsModified > 0 && len(res.Errors) == 0
	log.Info("skin materials configured", "tone", tone.Hex, "bucket", model.Bucket,
		"processed", res.MaterialsProcessed, "upgraded", res.MaterialsUpgraded,
		"skin", res.SkinMaterialsModified, "textured", res.ProceduralTexturesApplied,
		"errors", len(res.Errors))
	return res
}

func applyModel(s scene.Subsurface, cfg skinmodel.Config) {
	s.SetRoughness(cfg.Roughness)
	s.SetTransmission(cfg.Transmission)
	s.SetThickness(cfg.Thickness)
	s.SetIOR(cfg.IOR)
	s.SetAttenuation(sceneColor(cfg.AttenuationColor), cfg.AttenuationDistance)
	s.SetSheen(cfg.Sheen, sceneColor(cfg.SheenColor), cfg.SheenRoughness)
	s.SetClearcoat(cfg.Clearcoat, cfg.ClearcoatRoughness)
	s.SetSpecular(cfg.SpecularIntensity, sceneColor(cfg.SpecularTint))
}

// reassertColor is the final pass guaranteeing the rendered base colour is
// the measured tone.
func reassertColor(s scene.Subsurface, want scene.Color, node string) {
	got := s.BaseColor()
	if d := got.MaxDiff(want); d > ColorEpsilon {
		logging.Logger().Warn("skin colour diverged, corrected", "node", node, "material", s.Base().Name, "diff", d)
	}
	s.SetBaseColor(want)
}

func sceneColor(c colorful.Color) scene.Color {
	return scene.Color{R: c.R, G: c.G, B: c.B}
}
