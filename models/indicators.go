package models

// World Bank indicator codes used by the growth-accounting pipeline.
const (
	IndicatorGDPGrowth          = "NY.GDP.MKTP.KD.ZG" // GDP growth (annual %)
	IndicatorGDPPerCapitaGrowth = "NY.GDP.PCAP.KD.ZG" // GDP per capita growth (annual %)
	IndicatorCapitalFormation   = "NE.GDI.TOTL.KD.ZG" // gross capital formation growth (annual %)
	IndicatorLaborForce         = "SL.TLF.TOTL.IN.ZS" // labor force participation level
	IndicatorEmployment         = "SL.EMP.TOTL.SP.ZS" // employment to population level
)

// FRED series ids for the real GDP level series used by the filter pipelines.
const (
	SeriesUSRealGDP    = "GDPC1"
	SeriesJapanRealGDP = "JPNRGDPEXP"
	SeriesChinaGDP     = "MKTGDPCNA646NWDB"
)

// Default observation window for panel aggregation.
const (
	DefaultStartYear = 1990
	DefaultEndYear   = 2019
)

// Smoothing values conventional for this domain: annual, quarterly, and a
// lightly smoothed variant used for comparison charts.
const (
	SmoothingAnnual    = 100.0
	SmoothingQuarterly = 1600.0
	SmoothingLight     = 10.0
)
