// Package config defines the analysis configuration and the named constants
// shared by every script.
//
// Config values are layered: defaults from New, an optional YAML file named by
// FLARES_CONFIG, then FLARES_* environment variables (a .env file in the
// working directory is honoured).
package config

import (
	"fmt"
	"path/filepath"
)

// Chain names one MCMC chain file and the data subset it was sampled from.
type Chain struct {
	Subset string `koanf:"subset"`
	File   string `koanf:"file"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DataDir holds every input table; OutputDir receives LaTeX fragments and
	// result tables; FigureDir is the root of dated run folders.
	DataDir   string `koanf:"data_dir"`
	OutputDir string `koanf:"output_dir"`
	FigureDir string `koanf:"figure_dir"`

	StarID  int64 `koanf:"star_id"`
	Sectors []int `koanf:"sectors"`

	// Input file names relative to DataDir. LightCurvePattern takes the sector.
	LightCurvePattern string  `koanf:"light_curve_pattern"`
	FlareTable        string  `koanf:"flare_table"`
	FFDTable          string  `koanf:"ffd_table"`
	StellarTable      string  `koanf:"stellar_table"`
	EnergyTable       string  `koanf:"energy_table"`
	MCMCTable         string  `koanf:"mcmc_table"`
	XrayFitTable      string  `koanf:"xray_fit_table"`
	OMTimeseries      string  `koanf:"om_timeseries"`
	ResponseTable     string  `koanf:"response_table"`
	Chains            []Chain `koanf:"chains"`

	DistancePC        float64 `koanf:"distance_pc"`
	RadiusRsun        float64 `koanf:"radius_rsun"`
	TeffK             float64 `koanf:"teff_k"`
	FlareTemperatureK float64 `koanf:"flare_temperature_k"`

	// EnergyFactor converts equivalent durations to erg. Zero means the catalog
	// already lists bolometric energies. UseResponse derives it from the
	// passband table instead.
	EnergyFactor float64 `koanf:"energy_factor"`
	UseResponse  bool    `koanf:"use_response"`

	WindowPadDays float64 `koanf:"window_pad_days"`
	DropLargest   bool    `koanf:"drop_largest"`
	Iterations    int     `koanf:"iterations"`

	// OMStart and OMStop bracket the OM flare, in mission seconds.
	OMStart float64 `koanf:"om_start"`
	OMStop  float64 `koanf:"om_stop"`
	// OMEFoldSeconds places the OM flare on the B/L figure.
	OMEFoldSeconds float64 `koanf:"om_efold_s"`

	ParquetCompression string `koanf:"parquet_compression"`

	Densities          []float64 `koanf:"densities"`
	Psi                []float64 `koanf:"psi"`
	FieldGrid          []float64 `koanf:"field_grid"`
	LoopGrid           []float64 `koanf:"loop_grid"`
	BurnIn             int       `koanf:"burn_in"`
	LogThresholdEnergy float64   `koanf:"log_threshold_energy"`
}

// New returns a Config holding the defaults used for the paper.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		DataDir:           "data",
		OutputDir:         "output",
		FigureDir:         "plots",
		StarID:            DefaultStarID,
		Sectors:           []int{12, 37, 39, 64, 65},
		LightCurvePattern: "tic277539431_tess_detrended_%d.fits",
		FlareTable:        "tess_flares.csv",
		FFDTable:          "tess_ffd.csv",
		StellarTable:      "ilin2021updated_w_Rossby_Lbol.csv",
		EnergyTable:       "flare_energies.csv",
		MCMCTable:         "mcmc_results.csv",
		XrayFitTable:      "joint_vapec_chain_fits.csv",
		OMTimeseries:      "timeseries.csv",
		ResponseTable:     "TESS_response.csv",
		Chains: []Chain{
			{Subset: "full data set", File: "chain_joint_vapec_feo06.fits"},
			{Subset: "quiescent", File: "chain_joint_vapec_feo06_noflare.fits"},
			{Subset: "flaring", File: "chain_joint_vapec_feo06_flareonly.fits"},
		},
		DistancePC:         DefaultDistancePC,
		RadiusRsun:         DefaultStellarRadiusRsun,
		TeffK:              DefaultTeffK,
		FlareTemperatureK:  DefaultFlareTemperatureK,
		WindowPadDays:      DefaultWindowPadDays,
		DropLargest:        true,
		Iterations:         1000,
		OMStart:            7.76075e8,
		OMStop:             7.76077e8,
		OMEFoldSeconds:     10,
		ParquetCompression: "snappy",
		Densities:          []float64{1e11, 1e12, 1e13},
		Psi:                []float64{1.2, 2.0},
		FieldGrid:          []float64{30, 60, 100, 200},
		LoopGrid:           []float64{5e8, 1e9, 5e9, 1e10, 5e10, 1e11},
		BurnIn:             DefaultBurnIn,
		LogThresholdEnergy: DefaultLogThresholdEnergy,
	}
}

// DataPath joins name onto DataDir.
func (c *Config) DataPath(name string) string {
	return filepath.Join(c.DataDir, name)
}

// OutputPath joins name onto OutputDir.
func (c *Config) OutputPath(name string) string {
	return filepath.Join(c.OutputDir, name)
}

// LightCurvePath returns the detrended light curve file of one sector.
func (c *Config) LightCurvePath(sector int) string {
	return c.DataPath(fmt.Sprintf(c.LightCurvePattern, sector))
}

// Validate checks the values every script depends on.
func (c *Config) Validate() error {
	switch {
	case c.DataDir == "":
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	case c.OutputDir == "":
		return fmt.Errorf("%w: output_dir must not be empty", ErrInvalidConfig)
	case c.WindowPadDays <= 0 || c.WindowPadDays >= 1:
		return fmt.Errorf("%w: window_pad_days must lie in (0, 1), got %v", ErrInvalidConfig, c.WindowPadDays)
	case c.DistancePC <= 0:
		return fmt.Errorf("%w: distance_pc must be positive", ErrInvalidConfig)
	case c.RadiusRsun <= 0:
		return fmt.Errorf("%w: radius_rsun must be positive", ErrInvalidConfig)
	case c.EnergyFactor < 0:
		return fmt.Errorf("%w: energy_factor must not be negative", ErrInvalidConfig)
	case c.Iterations <= 0:
		return fmt.Errorf("%w: iterations must be positive", ErrInvalidConfig)
	case c.OMStop <= c.OMStart:
		return fmt.Errorf("%w: om_stop must be after om_start", ErrInvalidConfig)
	}
	return nil
}
