package naming

import "strings"

// Class groups bones by how edits may touch them.
type Class int

// Bone classes.
const (
	ClassRegular Class = iota
	ClassPhysics       // driven by cloth/soft-body simulation; never written
	ClassWeapon        // weapon and sheath attach points; written only on override
)

// PhysicsPrefixes name bones the host simulates every frame, both in the
// race tables and as stored in skeleton layouts.
var PhysicsPrefixes = []string{
	"Cloth", "Breast", "Skirt", "Sash", "Earring",
	"j_mune", // breast
	"j_sk_",  // skirt and cloth panels
	"j_ex_",  // gear extras: hair, ears, tails, accessories
}

// WeaponPrefixes name weapon and sheath attach points.
var WeaponPrefixes = []string{
	"Weapon", "Sheath", "Scabbard", "Holster",
	"j_buki", "n_buki",
}

// Classify returns the class of a bone name.
func Classify(name string) Class {
	for _, p := range PhysicsPrefixes {
		if strings.HasPrefix(name, p) {
			return ClassPhysics
		}
	}
	for _, p := range WeaponPrefixes {
		if strings.HasPrefix(name, p) {
			return ClassWeapon
		}
	}
	return ClassRegular
}
