package extract

import (
	"regexp"

	"github.com/bazario-group/pricing-cli/internal/model"
	"github.com/bazario-group/pricing-cli/internal/patterns"
)

// Laptop plausibility bounds. Storage is range-checked after TB→GB
// conversion so "1TB SSD" lands at 1024 inside [128, 8192].
const (
	laptopStorageMinGB = 128
	laptopStorageMaxGB = 8192
	laptopScreenMinIn  = 11
	laptopScreenMaxIn  = 18
)

var laptopRAMSet = []float64{2, 4, 6, 8, 12, 16, 24, 32, 48, 64, 96, 128}

var (
	laptopRAMRule = numericRule{
		field: "ram",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(\d{1,3})\s*gb\s+ram`),
			regexp.MustCompile(`ram[\s:]*(\d{1,3})\s*gb`),
			regexp.MustCompile(`(\d{1,3})\s*gb\s+ddr\d`),
		},
		plausible: inSet(laptopRAMSet...),
	}

	laptopStorageGBRule = numericRule{
		field: "storage_gb",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(\d{3,4})\s*gb\s*(?:ssd|hdd|nvme|storage)`),
			regexp.MustCompile(`(?:ssd|hdd|storage)[\s:]*(\d{3,4})\s*gb`),
			regexp.MustCompile(`(\d{3,4})\s*gb`), // bare number near unit, last resort
		},
		plausible: inRange(laptopStorageMinGB, laptopStorageMaxGB),
	}

	laptopStorageTBRule = numericRule{
		field: "storage_gb",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(\d{1,2})\s*tb`),
		},
		transform: func(v float64) float64 { return v * patterns.TBToGB },
		plausible: inRange(laptopStorageMinGB, laptopStorageMaxGB),
	}

	laptopScreenRule = numericRule{
		field: "screen_inches",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(\d{2}(?:\.\d)?)\s*(?:inch|inches|")`),
			regexp.MustCompile(`display[\s:]*(\d{2}(?:\.\d)?)`),
		},
		plausible: inRange(laptopScreenMinIn, laptopScreenMaxIn),
	}
)

func (e *Extractor) extractLaptop(spec *model.ExtractedSpec, lib *patterns.Library, lower string) {
	laptopRAMRule.apply(spec, lower)

	// TB claims win over GB claims: "1TB SSD" titles often also carry a
	// smaller GB number for RAM or an SD card.
	if !laptopStorageTBRule.apply(spec, lower) {
		laptopStorageGBRule.apply(spec, lower)
	}

	laptopScreenRule.apply(spec, lower)

	extractProcessor(spec, lib.CPUFamilies, "cpu_tier", lower)
	extractGeneration(spec, lower)
	extractProcessor(spec, lib.GPUFamilies, "gpu_tier", lower)

	laptopComposites(spec)
}

// Composite weights for the laptop grammar.
const (
	laptopGPUTierWeight   = 1.2
	laptopGPUGamingBonus  = 2.0
	laptopCPUGenWeight    = 0.3
	laptopStorageDivisor  = 256.0
	laptopStorageSSDBonus = 2.0
	laptopRAMDivisor      = 4.0

	laptopTotalCPUW     = 0.30
	laptopTotalGPUW     = 0.25
	laptopTotalRAMW     = 0.20
	laptopTotalStorageW = 0.15
	laptopTotalBrandW   = 0.10
)

func laptopComposites(spec *model.ExtractedSpec) {
	if cpu, ok := spec.Get("cpu_tier"); ok {
		spec.Set("cpu_score", cpu+spec.GetOr("cpu_generation", 0)*laptopCPUGenWeight)
	}

	if gpu, ok := spec.Get("gpu_tier"); ok {
		spec.Set("gpu_score", gpu*laptopGPUTierWeight+spec.GetOr("is_gaming", 0)*laptopGPUGamingBonus)
	}

	if st, ok := spec.Get("storage_gb"); ok {
		spec.Set("storage_score", st/laptopStorageDivisor+spec.GetOr("has_ssd", 0)*laptopStorageSSDBonus)
	}

	total := laptopTotalCPUW*spec.GetOr("cpu_score", 0) +
		laptopTotalGPUW*spec.GetOr("gpu_score", 0) +
		laptopTotalRAMW*spec.GetOr("ram", 0)/laptopRAMDivisor +
		laptopTotalStorageW*spec.GetOr("storage_score", 0) +
		laptopTotalBrandW*spec.GetOr("brand_score", 0)
	spec.Set("total_specs_score", total)
}
