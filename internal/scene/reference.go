package scene

import "avatar-morph/internal/mathutil"

// Morph channel names carried by the reference rig.
var (
	ReferenceBodyMorphs = []string{
		"bodyFat", "bodybuilderSize", "pregnant", "muscleDefinition",
		"shoulderWidth", "hipWidth", "waistSize", "chestSize", "legLength",
	}
	ReferenceFaceMorphs = []string{
		"jawWidth", "noseLength", "eyeSize", "cheekFullness", "lipFullness", "chinLength",
	}
)

// NewReferenceRig builds a small Mixamo-named humanoid: a bone hierarchy under
// "Armature" plus body, head, eye, teeth and hair meshes. Offline tools and tests
// use it in place of a loaded asset.
func NewReferenceRig() *Node {
	root := NewNode("Avatar")
	armature := NewNode("Armature")
	root.Add(armature)

	hips := NewBone("mixamorig:Hips", mathutil.Vec3{0, 1.0, 0})
	spine := NewBone("mixamorig:Spine", mathutil.Vec3{0, 0.1, 0})
	spine1 := NewBone("mixamorig:Spine1", mathutil.Vec3{0, 0.12, 0})
	spine2 := NewBone("mixamorig:Spine2", mathutil.Vec3{0, 0.12, 0})
	neck := NewBone("mixamorig:Neck", mathutil.Vec3{0, 0.15, 0})
	head := NewBone("mixamorig:Head", mathutil.Vec3{0, 0.1, 0})

	armature.Add(hips)
	hips.Add(spine)
	spine.Add(spine1)
	spine1.Add(spine2)
	spine2.Add(neck)
	neck.Add(head)

	for _, side := range []struct {
		name string
		sign float64
	}{{"Left", 1}, {"Right", -1}} {
		shoulder := NewBone("mixamorig:"+side.name+"Shoulder", mathutil.Vec3{side.sign * 0.06, 0.1, 0})
		arm := NewBone("mixamorig:"+side.name+"Arm", mathutil.Vec3{side.sign * 0.12, 0, 0})
		forearm := NewBone("mixamorig:"+side.name+"ForeArm", mathutil.Vec3{side.sign * 0.26, 0, 0})
		hand := NewBone("mixamorig:"+side.name+"Hand", mathutil.Vec3{side.sign * 0.24, 0, 0})
		spine2.Add(shoulder)
		shoulder.Add(arm)
		arm.Add(forearm)
		forearm.Add(hand)

		upLeg := NewBone("mixamorig:"+side.name+"UpLeg", mathutil.Vec3{side.sign * 0.09, -0.05, 0})
		leg := NewBone("mixamorig:"+side.name+"Leg", mathutil.Vec3{0, -0.42, 0})
		foot := NewBone("mixamorig:"+side.name+"Foot", mathutil.Vec3{0, -0.4, 0})
		hips.Add(upLeg)
		upLeg.Add(leg)
		leg.Add(foot)
	}

	bodyMat := &StandardMaterial{
		MaterialBase: MaterialBase{Name: "Body_Skin", Color: White, Opacity: 1, Skinning: true, MorphTargets: true},
		Roughness:    0.6,
	}
	faceMat := &PhongMaterial{
		MaterialBase: MaterialBase{Name: "Face_Mat", Color: White, Opacity: 1, Skinning: true, MorphTargets: true},
		Shininess:    30,
		Specular:     Color{0.1, 0.1, 0.1},
	}
	eyeMat := &StandardMaterial{
		MaterialBase: MaterialBase{Name: "Eye_Cornea", Color: White, Opacity: 0.9, Transparent: true},
		Roughness:    0.05,
	}
	teethMat := &BasicMaterial{MaterialBase: MaterialBase{Name: "Teeth", Color: Color{0.95, 0.93, 0.88}, Opacity: 1}}
	hairMat := &StandardMaterial{
		MaterialBase: MaterialBase{Name: "Hair_Strands", Color: Color{0.2, 0.12, 0.06}, Opacity: 1, Side: DoubleSide},
		Roughness:    0.8,
	}

	root.Add(
		NewMeshNode("Body", NewMesh(ReferenceBodyMorphs, bodyMat)),
		NewMeshNode("Head", NewMesh(ReferenceFaceMorphs, faceMat)),
		NewMeshNode("Eyes", NewMesh(nil, eyeMat)),
		NewMeshNode("Teeth", NewMesh(nil, teethMat)),
		NewMeshNode("Hair", NewMesh(nil, hairMat)),
	)

	root.UpdateWorldMatrix()
	return root
}
