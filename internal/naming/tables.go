package naming

// Table is the static bone-name data of one race.
type Table struct {
	Body []string
	Head []string
}

// baseBody is the body layout shared by every race, in skeleton order.
var baseBody = []string{
	"Root", "Abdomen", "Throw", "Waist", "SpineA",
	"LegLeft", "LegRight", "HolsterLeft", "HolsterRight", "SheatheLeft",
	"SheatheRight", "SpineB", "ClothBackALeft", "ClothBackARight", "ClothFrontALeft",
	"ClothFrontARight", "ClothSideALeft", "ClothSideARight", "KneeLeft", "KneeRight",
	"BreastLeft", "BreastRight", "SpineC", "ClothBackBLeft", "ClothBackBRight",
	"ClothFrontBLeft", "ClothFrontBRight", "ClothSideBLeft", "ClothSideBRight", "CalfLeft",
	"CalfRight", "ScabbardLeft", "ScabbardRight", "Neck", "ClavicleLeft",
	"ClavicleRight", "ClothBackCLeft", "ClothBackCRight", "ClothFrontCLeft", "ClothFrontCRight",
	"ClothSideCLeft", "ClothSideCRight", "PoleynLeft", "PoleynRight", "FootLeft",
	"FootRight", "Head", "ArmLeft", "ArmRight", "PauldronLeft",
	"PauldronRight", "Unknown00", "ToesLeft", "ToesRight", "ForearmLeft",
	"ForearmRight", "ShoulderLeft", "ShoulderRight", "CouterLeft", "CouterRight",
	"WristLeft", "WristRight", "WeaponHandLeft", "WeaponHandRight", "HandLeft",
	"HandRight", "IndexALeft", "IndexARight", "MiddleALeft", "MiddleARight",
	"PinkyALeft", "PinkyARight", "RingALeft", "RingARight", "ThumbALeft",
	"ThumbARight", "WeaponSheathLeft", "WeaponSheathRight", "IndexBLeft", "IndexBRight",
	"MiddleBLeft", "MiddleBRight", "PinkyBLeft", "PinkyBRight", "RingBLeft",
	"RingBRight", "ThumbBLeft", "ThumbBRight",
}

// baseHead is the face layout shared by every race.
var baseHead = []string{
	"HeadRoot", "Jaw", "EyelidLowerLeft", "EyelidLowerRight", "EyeLeft",
	"EyeRight", "Nose", "CheekLeft", "CheekRight", "LipsLeft",
	"LipsRight", "EyebrowLeft", "EyebrowRight", "Bridge", "BrowLeft",
	"BrowRight", "LipUpperA", "EyelidUpperLeft", "EyelidUpperRight", "LipLowerA",
	"LipUpperB", "LipLowerB",
}

var (
	tailBones  = []string{"TailA", "TailB", "TailC", "TailD", "TailE"}
	earBones   = []string{"EarLeft", "EarRight"}
	vieraEars  = []string{"VieraEarALeft", "VieraEarARight", "VieraEarBLeft", "VieraEarBRight", "VieraEarCLeft", "VieraEarCRight"}
	hornBones  = []string{"HornLeft", "HornRight"}
	hrothMouth = []string{"HrothLipUpper", "HrothLipLower", "HrothWhiskersLeft", "HrothWhiskersRight"}
)

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// DefaultTables returns the built-in race tables.
func DefaultTables() map[Race]Table {
	return map[Race]Table{
		RaceHyur:     {Body: concat(baseBody), Head: concat(baseHead, earBones)},
		RaceElezen:   {Body: concat(baseBody), Head: concat(baseHead, earBones)},
		RaceLalafell: {Body: concat(baseBody), Head: concat(baseHead, earBones)},
		RaceMiqote:   {Body: concat(baseBody, tailBones), Head: concat(baseHead, earBones)},
		RaceRoegadyn: {Body: concat(baseBody), Head: concat(baseHead, earBones)},
		RaceAuRa:     {Body: concat(baseBody, tailBones), Head: concat(baseHead, hornBones)},
		RaceHrothgar: {Body: concat(baseBody, tailBones), Head: concat(baseHead, earBones, hrothMouth)},
		RaceViera:    {Body: concat(baseBody), Head: concat(baseHead, vieraEars)},
	}
}
