package render

import "strings"

// missionNames maps raw mission identifiers from game-server logs to
// human-readable names.
var missionNames = map[string]string{
	"GA_Airport_mis_01_SFPSACMission": "Airport Mission #1",
	"GA_Airport_mis_02_SFPSACMission": "Airport Mission #2",
	"GA_Airport_mis_03_SFPSACMission": "Airport Mission #3",
	"GA_Airport_mis_04_SFPSACMission": "Airport Mission #4",
	"GA_Military_02_Mis1":             "Military Base Mission #2",
	"GA_Military_03_Mis_01":           "Military Base Mission #3",
	"GA_Military_04_Mis1":             "Military Base Mission #4",
	"GA_Military_04_Mis_2":            "Military Base Mission #4B",
	"GA_Beregovoy_Mis1":               "Beregovoy Settlement Mission",
	"GA_Settle_05_ChernyLog_Mis1":     "Cherny Log Settlement Mission",
	"GA_Settle_09_Mis_1":              "Settlement Mission #9",
	"GA_Ind_01_m1":                    "Industrial Zone Mission #1",
	"GA_Ind_02_Mis_1":                 "Industrial Zone Mission #2",
	"GA_PromZone_6_Mis_1":             "Industrial Zone Mission #6",
	"GA_PromZone_Mis_01":              "Industrial Zone Mission A",
	"GA_PromZone_Mis_02":              "Industrial Zone Mission B",
	"GA_KhimMash_Mis_01":              "Chemical Plant Mission #1",
	"GA_KhimMash_Mis_02":              "Chemical Plant Mission #2",
	"GA_Bunker_01_Mis1":               "Underground Bunker Mission",
	"GA_Sawmill_01_Mis1":              "Sawmill Mission #1",
	"GA_Sawmill_02_1_Mis1":            "Sawmill Mission #2A",
	"GA_Sawmill_03_Mis_01":            "Sawmill Mission #3",
	"GA_Kamensk_Ind_3_Mis_1":          "Kamensk Industrial Mission",
	"GA_Kamensk_Mis_1":                "Kamensk City Mission #1",
	"GA_Kamensk_Mis_2":                "Kamensk City Mission #2",
	"GA_Kamensk_Mis_3":                "Kamensk City Mission #3",
	"GA_Krasnoe_Mis_1":                "Krasnoe City Mission",
	"GA_Vostok_Mis_1":                 "Vostok City Mission",
	"GA_Lighthouse_02_Mis1":           "Lighthouse Mission #2",
	"GA_Elevator_Mis_1":               "Elevator Complex Mission #1",
	"GA_Elevator_Mis_2":               "Elevator Complex Mission #2",
	"GA_Bochki_Mis_1":                 "Barrel Storage Mission",
	"GA_Dubovoe_0_Mis_1":              "Dubovoe Resource Mission",
}

var missionLevels = map[string]int{
	// High tier
	"GA_Airport_mis_04_SFPSACMission": 5,
	"GA_Military_04_Mis1":             5,
	"GA_Military_04_Mis_2":            5,
	"GA_Bunker_01_Mis1":               5,
	"GA_KhimMash_Mis_02":              5,
	// Medium-high tier
	"GA_Airport_mis_03_SFPSACMission": 4,
	"GA_Military_03_Mis_01":           4,
	"GA_KhimMash_Mis_01":              4,
	"GA_Kamensk_Mis_3":                4,
	"GA_Elevator_Mis_2":               4,
	// Medium tier
	"GA_Airport_mis_02_SFPSACMission": 3,
	"GA_Military_02_Mis1":             3,
	"GA_Ind_02_Mis_1":                 3,
	"GA_Kamensk_Mis_1":                3,
	"GA_Kamensk_Mis_2":                3,
	"GA_Krasnoe_Mis_1":                3,
	"GA_Vostok_Mis_1":                 3,
	"GA_Elevator_Mis_1":               3,
	"GA_Sawmill_03_Mis_01":            3,
}

// MissionName converts a raw mission identifier to a readable name.
// Unknown identifiers fall back to a de-underscored title.
func MissionName(missionID string) string {
	if name, ok := missionNames[missionID]; ok {
		return name
	}
	return titleCase(strings.ReplaceAll(missionID, "_", " "))
}

// MissionLevel returns the difficulty level (2-5) for a mission identifier.
func MissionLevel(missionID string) int {
	if level, ok := missionLevels[missionID]; ok {
		return level
	}
	return 2
}
