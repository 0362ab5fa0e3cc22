package extract

import (
	"regexp"
	"strconv"

	"github.com/bazario-group/pricing-cli/internal/model"
	"github.com/bazario-group/pricing-cli/internal/patterns"
)

// Discrete plausible values for phone hardware. Short titles are full of
// bare numbers (year, price, model number); these sets are what separates
// "12GB" the RAM claim from "2023" the year.
var (
	mobileRAMSet     = []float64{2, 3, 4, 6, 8, 12, 16, 18, 24}
	mobileStorageSet = []float64{8, 16, 32, 64, 128, 256, 512, 1024}
)

var (
	mobileRAMRule = numericRule{
		field: "ram",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(\d{1,3})\s*gb\s+ram`),
			regexp.MustCompile(`ram[\s:]*(\d{1,3})\s*gb`),
			regexp.MustCompile(`(\d{1,3})\s*gb\s+memory`),
		},
		plausible: inSet(mobileRAMSet...),
	}

	mobileStorageLabeled = numericRule{
		field: "storage_gb",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(\d{1,4})\s*gb\s*(?:rom|storage|internal)`),
			regexp.MustCompile(`(?:rom|storage)[\s:]*(\d{1,4})\s*gb`),
		},
		plausible: inSet(mobileStorageSet...),
	}

	// bare number near unit, last resort
	mobileStorageBareRe = regexp.MustCompile(`(\d{1,4})\s*gb`)

	mobileBatteryRule = numericRule{
		field: "battery_mah",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(\d{4,5})\s*mah`),
			regexp.MustCompile(`battery[\s:]*(\d{4,5})`),
		},
		plausible: inRange(1500, 10000),
	}

	mobileCameraRule = numericRule{
		field: "camera_mp",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(\d{1,3})\s*mp\b`),
			regexp.MustCompile(`camera[\s:]*(\d{1,3})`),
		},
		plausible: inRange(2, 200),
	}

	mobileScreenRule = numericRule{
		field: "screen_inches",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(\d{1,2}(?:\.\d)?)\s*(?:inch|inches|")`),
			regexp.MustCompile(`display[\s:]*(\d{1,2}(?:\.\d)?)`),
		},
		plausible: inRange(4, 8),
	}

	// "8/256" shorthand: RAM then storage.
	mobileSlashRe = regexp.MustCompile(`\b(\d{1,2})\s*/\s*(\d{2,4})\s*(?:gb)?\b`)
)

func (e *Extractor) extractMobile(spec *model.ExtractedSpec, lib *patterns.Library, lower string) {
	mobileRAMRule.apply(spec, lower)
	if !mobileStorageLabeled.apply(spec, lower) {
		applyBareStorage(spec, lower)
	}

	// Slash shorthand backfills whichever side the labeled rules missed.
	if !spec.Has("ram") || !spec.Has("storage_gb") {
		applyMobileSlash(spec, lower)
	}

	mobileBatteryRule.apply(spec, lower)
	mobileCameraRule.apply(spec, lower)
	mobileScreenRule.apply(spec, lower)

	extractProcessor(spec, lib.CPUFamilies, "chipset_tier", lower)

	mobileComposites(spec)
}

// applyBareStorage is the last-resort storage rule. A bare "<n>gb" is
// ambiguous with the RAM claim, so the already-extracted RAM value is
// skipped explicitly.
func applyBareStorage(spec *model.ExtractedSpec, lower string) {
	ram, hasRAM := spec.Get("ram")
	plausible := inSet(mobileStorageSet...)
	for _, m := range mobileStorageBareRe.FindAllStringSubmatch(lower, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || !plausible(v) {
			continue
		}
		if hasRAM && v == ram {
			continue
		}
		spec.Set("storage_gb", v)
		return
	}
}

func applyMobileSlash(spec *model.ExtractedSpec, lower string) {
	for _, m := range mobileSlashRe.FindAllStringSubmatch(lower, -1) {
		ram, err1 := strconv.ParseFloat(m[1], 64)
		st, err2 := strconv.ParseFloat(m[2], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		if !inSet(mobileRAMSet...)(ram) || !inSet(mobileStorageSet...)(st) {
			continue
		}
		if !spec.Has("ram") {
			spec.Set("ram", ram)
		}
		if !spec.Has("storage_gb") {
			spec.Set("storage_gb", st)
		}
		return
	}
}

// Composite weight constants for the phone grammar. Tuned empirically;
// shared by nothing else, so they live next to the formula.
const (
	mobileStorageRAMWeight   = 0.5
	mobileStorageUnitDivisor = 64.0
	mobileCameraDivisor      = 12.0

	mobileTotalBrandW   = 0.30
	mobileTotalStorageW = 0.25
	mobileTotalCondW    = 0.20
	mobileTotalChipW    = 0.15
	mobileTotalCameraW  = 0.10
)

// mobileComposites derives the engineered score fields from already
// extracted values. A composite is set only when at least one of its
// inputs was genuinely extracted; absent inputs contribute zero.
func mobileComposites(spec *model.ExtractedSpec) {
	ram, hasRAM := spec.Get("ram")
	st, hasStorage := spec.Get("storage_gb")
	if hasRAM || hasStorage {
		spec.Set("storage_score", mobileStorageRAMWeight*ram+st/mobileStorageUnitDivisor)
	}

	if cam, ok := spec.Get("camera_mp"); ok {
		spec.Set("camera_score", cam/mobileCameraDivisor)
	}

	total := mobileTotalBrandW*spec.GetOr("brand_score", 0) +
		mobileTotalStorageW*spec.GetOr("storage_score", 0) +
		mobileTotalCondW*spec.GetOr("condition_score", 0) +
		mobileTotalChipW*spec.GetOr("chipset_tier", 0) +
		mobileTotalCameraW*spec.GetOr("camera_score", 0)
	spec.Set("total_specs_score", total)
}
