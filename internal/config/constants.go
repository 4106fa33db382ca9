package config

// Physical constants in cgs unless the name says otherwise. Values follow
// astropy's CODATA 2018 / IAU 2015 set so derived numbers match the paper.
const (
	SolarRadiusCM      = 6.957e10
	ParsecCM           = 3.0856775814913673e18
	SpeedOfLightCGS    = 2.99792458e10
	PlanckCGS          = 6.62607015e-27
	BoltzmannCGS       = 1.380649e-16
	StefanBoltzmannCGS = 5.6703744191844314e-5

	// SI, used by the reconnection timescale laws.
	ElectronMassKG     = 9.1093837015e-31
	VacuumPermeability = 1.25663706212e-6

	// KeVToMK converts a plasma temperature kT in keV to MK.
	KeVToMK = 11.604525

	SecondsPerDay = 86400.
	MinutesPerDay = 24. * 60.
)

// Analysis defaults.
const (
	DefaultFlareTemperatureK = 10000.
	DefaultDistancePC        = 13.7
	DefaultStellarRadiusRsun = 0.145
	DefaultTeffK             = 2680.

	// DefaultWindowPadDays is the baseline margin around a flare, in days.
	DefaultWindowPadDays = 0.03

	// DefaultAlfvenMach and DefaultCoronalDensity parametrise the reconnection
	// timescale grid (rho0 = n * m_e).
	DefaultAlfvenMach     = 0.01
	DefaultCoronalDensity = 1e11

	// DefaultBurnIn is the number of MCMC steps discarded before taking quantiles.
	DefaultBurnIn = 5000

	// DefaultLogThresholdEnergy is log10 of the energy used for the R31.5 rate.
	DefaultLogThresholdEnergy = 31.5

	DefaultStarID int64 = 277539431
)
