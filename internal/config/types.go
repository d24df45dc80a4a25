package config

// Config is the censustable command configuration, read from CENSUS_*
// environment variables and an optional .env file.
type Config struct {
	// Mode is production or development
	Mode string `json:"mode,omitempty" env:"CENSUS_ENV" envDefault:"production"`
	// DataDir holds the workbook, the bulk data files and the geography lookup
	DataDir string `json:"data_dir,omitempty" env:"CENSUS_DATA" envDefault:"data"`
	// Workbook is relative to DataDir unless absolute
	Workbook string `json:"workbook,omitempty" env:"CENSUS_WORKBOOK" envDefault:"Cell Numbered DC Tables 3.3.xlsx"`
	// Geography is relative to DataDir unless absolute
	Geography string `json:"geography,omitempty" env:"CENSUS_GEOGRAPHY" envDefault:"Ward_to_Census_Merged_Ward_to_Local_Authority_District_(December_2011)_Lookup_in_England_and_Wales.csv"`
	// HeaderRow is the 0-based first column header row of every table sheet
	HeaderRow int `json:"header_row,omitempty" env:"CENSUS_HEADER_ROW" envDefault:"6"`
	// StrictLevels fails on row level overflow instead of warning
	StrictLevels bool `json:"strict_levels,omitempty" env:"CENSUS_STRICT_LEVELS" envDefault:"false"`

	Log           string `json:"log,omitempty" env:"CENSUS_LOG"`                                 // log file, stderr when empty
	LogMode       string `json:"log_mode,omitempty" env:"CENSUS_LOG_MODE" envDefault:"TEXT"`     // JSON | TEXT
	LogLevel      string `json:"log_level,omitempty" env:"CENSUS_LOG_LEVEL" envDefault:"warn"`   // trace | debug | info | warn | error
	LogMaxSize    int    `json:"log_max_size,omitempty" env:"CENSUS_LOG_MAX_SIZE" envDefault:"20"` // megabytes
	LogMaxBackups int    `json:"log_max_backups,omitempty" env:"CENSUS_LOG_MAX_BACKUPS" envDefault:"3"`
	LogMaxAge     int    `json:"log_max_age,omitempty" env:"CENSUS_LOG_MAX_AGE" envDefault:"28"` // days
	LogLocalTime  bool   `json:"log_local_time,omitempty" env:"CENSUS_LOG_LOCAL_TIME" envDefault:"true"`
}
