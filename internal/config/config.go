package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env        string   `yaml:"env" env:"ENV" env-default:"prod"`
	HTTPServer `yaml:"http_server"`
	Sheets     `yaml:"sheets"`
	Pipeline   `yaml:"pipeline"`
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-default:"http://localhost:5173"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"60s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// Sheets addresses the spreadsheet API. Sheet and folder names are opaque to the service.
type Sheets struct {
	APIURL          string        `yaml:"api_url" env:"SHEET_API_URL" env-required:"true"`
	InventoryAPIURL string        `yaml:"inventory_api_url" env:"INVENTORY_API_URL"`
	Quotations      string        `yaml:"quotations" env:"SHEET_QUOTATIONS" env-default:"Quotations"`
	Customers       string        `yaml:"customers" env:"SHEET_CUSTOMER" env-default:"Customers"`
	Login           string        `yaml:"login" env:"SHEET_LOGIN_NAME" env-default:"Login Master"`
	Inventory       string        `yaml:"inventory" env:"SHEET_INVENTORY" env-default:"Inventory"`
	ImageFolderID   string        `yaml:"image_folder_id" env:"FOLDER_ID"`
	PDFFolderID     string        `yaml:"pdf_folder_id" env:"PDF_FOLDER_ID"`
	Timeout         time.Duration `yaml:"timeout" env:"SHEET_TIMEOUT" env-default:"30s"`
}

type Pipeline struct {
	UpdateBatchSize   int           `yaml:"update_batch_size" env:"UPDATE_BATCH_SIZE" env-default:"5"`
	CloseDelay        time.Duration `yaml:"close_delay" env:"CLOSE_DELAY" env-default:"5s"`
	PDFWait           time.Duration `yaml:"pdf_wait" env:"PDF_WAIT" env-default:"20s"`
	BackgroundTimeout time.Duration `yaml:"background_timeout" env:"BACKGROUND_TIMEOUT" env-default:"2m"`
}

func MustConfig() *Config {
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return cfg
}

// Load reads the YAML file at path when given, otherwise only the environment.
// A .env file in the working directory is loaded first if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, err
	}

	if cfg.InventoryAPIURL == "" {
		cfg.InventoryAPIURL = cfg.APIURL
	}
	if cfg.UpdateBatchSize <= 0 {
		cfg.UpdateBatchSize = 5
	}

	return &cfg, nil
}
