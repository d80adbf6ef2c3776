package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Platform   PlatformConfig     `yaml:"platform" mapstructure:"platform"`
	Region     RegionConfig       `yaml:"region" mapstructure:"region"`
	Analysis   AnalysisConfig     `yaml:"analysis" mapstructure:"analysis"`
	Thresholds ThresholdsConfig   `yaml:"thresholds" mapstructure:"thresholds"`
	Weights    map[string]float64 `yaml:"weights" mapstructure:"weights"`
	Datasets   []DatasetConfig    `yaml:"datasets" mapstructure:"datasets"`
	Fetch      FetchConfig        `yaml:"fetch" mapstructure:"fetch"`
	Store      StoreConfig        `yaml:"store" mapstructure:"store"`
	Server     ServerConfig       `yaml:"server" mapstructure:"server"`
	Log        LogConfig          `yaml:"log" mapstructure:"log"`
}

// PlatformConfig holds the grid-export API credentials.
type PlatformConfig struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// RegionConfig locates the administrative boundary and, optionally, a
// reference layer of existing vineyard sites.
type RegionConfig struct {
	Name               string `yaml:"name" mapstructure:"name"`
	ShapefilePath      string `yaml:"shapefile_path" mapstructure:"shapefile_path"`
	NameField          string `yaml:"name_field" mapstructure:"name_field"`
	VineyardsShapefile string `yaml:"vineyards_shapefile" mapstructure:"vineyards_shapefile"`
}

// AnalysisConfig sets the analysis period shared by every pipeline.
type AnalysisConfig struct {
	Year           int     `yaml:"year" mapstructure:"year"`
	SeasonMonthMin int     `yaml:"season_month_min" mapstructure:"season_month_min"`
	SeasonMonthMax int     `yaml:"season_month_max" mapstructure:"season_month_max"`
	MaxCloudPct    float64 `yaml:"max_cloud_pct" mapstructure:"max_cloud_pct"`
}

// RangeConfig is an inclusive numeric suitability band.
type RangeConfig struct {
	Lower float64 `yaml:"lower" mapstructure:"lower"`
	Upper float64 `yaml:"upper" mapstructure:"upper"`
}

// FlavorHoursConfig bounds the ripening-window hour count.
type FlavorHoursConfig struct {
	WindowStart string  `yaml:"window_start" mapstructure:"window_start"`
	WindowEnd   string  `yaml:"window_end" mapstructure:"window_end"`
	TempMin     float64 `yaml:"temp_min" mapstructure:"temp_min"`
	TempMax     float64 `yaml:"temp_max" mapstructure:"temp_max"`
	MinHours    float64 `yaml:"min_hours" mapstructure:"min_hours"`
}

// GDDConfig configures degree-day accumulation and its suitability band.
type GDDConfig struct {
	Range        RangeConfig `yaml:"range" mapstructure:"range"`
	BaseTemp     float64     `yaml:"base_temp" mapstructure:"base_temp"`
	DaysPerMonth float64     `yaml:"days_per_month" mapstructure:"days_per_month"`
}

// ThresholdsConfig carries every suitability bound. All values are
// user-tunable; the defaults are the premium-band settings.
type ThresholdsConfig struct {
	GST          RangeConfig       `yaml:"gst" mapstructure:"gst"`
	GDD          GDDConfig         `yaml:"gdd" mapstructure:"gdd"`
	GSP          RangeConfig       `yaml:"gsp" mapstructure:"gsp"`
	FlavorHours  FlavorHoursConfig `yaml:"flavor_hours" mapstructure:"flavor_hours"`
	SoilPH       RangeConfig       `yaml:"soil_ph" mapstructure:"soil_ph"`
	NDVIMin      float64           `yaml:"ndvi_min" mapstructure:"ndvi_min"`
	NDWIMax      float64           `yaml:"ndwi_max" mapstructure:"ndwi_max"`
	NDMIMin      float64           `yaml:"ndmi_min" mapstructure:"ndmi_min"`
	Slope        RangeConfig       `yaml:"slope" mapstructure:"slope"`
	Elevation    RangeConfig       `yaml:"elevation" mapstructure:"elevation"`
	RadiationMin float64           `yaml:"radiation_min" mapstructure:"radiation_min"`
	LandCover    []int             `yaml:"land_cover" mapstructure:"land_cover"`
}

// DatasetConfig overrides or extends the default dataset catalog.
type DatasetConfig struct {
	ID         string   `yaml:"id" mapstructure:"id"`
	Collection string   `yaml:"collection" mapstructure:"collection"`
	Kind       string   `yaml:"kind" mapstructure:"kind"`
	Bands      []string `yaml:"bands" mapstructure:"bands"`
	Mirror     string   `yaml:"mirror" mapstructure:"mirror"`
}

// FetchConfig throttles and retries the platform downloads.
type FetchConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
	MaxAttempts       int     `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// StoreConfig configures the run database.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the overlay server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TERROIR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("platform.base_url", "https://api.eogrid.io/v1")
	v.SetDefault("region.name_field", "NAME")
	v.SetDefault("analysis.year", 2024)
	v.SetDefault("analysis.season_month_min", 4)
	v.SetDefault("analysis.season_month_max", 10)
	v.SetDefault("analysis.max_cloud_pct", 20)
	v.SetDefault("thresholds.gst.lower", 14.1)
	v.SetDefault("thresholds.gst.upper", 15.5)
	v.SetDefault("thresholds.gdd.range.lower", 974)
	v.SetDefault("thresholds.gdd.range.upper", 1223)
	v.SetDefault("thresholds.gdd.base_temp", 10)
	v.SetDefault("thresholds.gdd.days_per_month", 30)
	v.SetDefault("thresholds.gsp.lower", 273)
	v.SetDefault("thresholds.gsp.upper", 449)
	v.SetDefault("thresholds.flavor_hours.window_start", "2024-07-20")
	v.SetDefault("thresholds.flavor_hours.window_end", "2024-09-20")
	v.SetDefault("thresholds.flavor_hours.temp_min", 16)
	v.SetDefault("thresholds.flavor_hours.temp_max", 22)
	v.SetDefault("thresholds.flavor_hours.min_hours", 800)
	v.SetDefault("thresholds.soil_ph.lower", 6.8)
	v.SetDefault("thresholds.soil_ph.upper", 7.2)
	v.SetDefault("thresholds.ndvi_min", 0.2)
	v.SetDefault("thresholds.ndwi_max", 0.3)
	v.SetDefault("thresholds.ndmi_min", 0.2)
	v.SetDefault("thresholds.slope.lower", 0)
	v.SetDefault("thresholds.slope.upper", 10)
	v.SetDefault("thresholds.elevation.lower", 50)
	v.SetDefault("thresholds.elevation.upper", 220)
	v.SetDefault("thresholds.radiation_min", 2700)
	v.SetDefault("thresholds.land_cover", []int{1, 2, 3, 4, 5, 6, 7, 10, 12})
	v.SetDefault("fetch.requests_per_second", 2)
	v.SetDefault("fetch.burst", 4)
	v.SetDefault("fetch.max_attempts", 4)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "terroir.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
