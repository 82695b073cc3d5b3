package plan

// DefaultPlans returns the built-in catalog: a free tier with tight ceilings,
// a mid tier that lifts most of them, and a business tier with no ceilings.
// Prices are in Indonesian rupiah (no decimal minor unit).
func DefaultPlans() []Plan {
	return []Plan{
		{
			Tier:            TierFree,
			Name:            "Gratis",
			Description:     "1 blok lahan, 3 pekerja, 100 entri panen per bulan",
			PriceMinorUnits: 0,
			Limits: map[Resource]int64{
				ResourceBlocks:         1,
				ResourceWorkers:        3,
				ResourceHarvestEntries: 100,
			},
			Features: []Feature{FeatureBasicDashboard, FeatureEmailSupport},
		},
		{
			Tier:            TierPro,
			Name:            "Pro",
			Description:     "3 blok lahan, pekerja dan data panen tanpa batas",
			PriceMinorUnits: 149000,
			Limits: map[Resource]int64{
				ResourceBlocks:         3,
				ResourceWorkers:        Unlimited,
				ResourceHarvestEntries: Unlimited,
			},
			Features: []Feature{
				FeatureBasicDashboard, FeatureEmailSupport,
				FeatureExport, FeatureWhatsApp, FeaturePrioritySupport,
			},
		},
		{
			Tier:            TierBusiness,
			Name:            "Bisnis",
			Description:     "Semua tanpa batas, akses API dan aplikasi mobile",
			PriceMinorUnits: 499000,
			Limits: map[Resource]int64{
				ResourceBlocks:         Unlimited,
				ResourceWorkers:        Unlimited,
				ResourceHarvestEntries: Unlimited,
			},
			Features: []Feature{
				FeatureBasicDashboard, FeatureEmailSupport,
				FeatureExport, FeatureWhatsApp, FeaturePrioritySupport,
				FeatureAPI, FeatureMobileApp, FeatureWhiteLabel, FeatureDedicatedSupport,
			},
		},
	}
}
