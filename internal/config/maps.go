package config

type MapsConfig struct {
	ReverseGeocode bool              `yaml:"reverse_geocode"`
	GoogleMaps     *GoogleMapsConfig `yaml:"google_maps"`
}

type GoogleMapsConfig struct {
	APIKey string `yaml:"api_key"`
}

func loadMapsConfig() *MapsConfig {
	return &MapsConfig{
		ReverseGeocode: getEnvAsBool("MAPS_REVERSE_GEOCODE", false),
		GoogleMaps: &GoogleMapsConfig{
			APIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		},
	}
}
