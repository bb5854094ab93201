package app

import (
	"strings"

	"github.com/aiig/deliverables-backend/internal/platform/envutil"
	"github.com/aiig/deliverables-backend/internal/platform/logger"
)

type Config struct {
	Port            string
	CORSOrigins     []string
	MaxUploadSizeMB int
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:            envutil.String("PORT", "8080"),
		MaxUploadSizeMB: envutil.Int("MAX_UPLOAD_SIZE_MB", 10),
	}
	for _, o := range strings.Split(envutil.String("CORS_ORIGINS", ""), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}
	log.Info("Config loaded", "port", cfg.Port, "max_upload_mb", cfg.MaxUploadSizeMB)
	return cfg
}

func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadSizeMB) << 20
}
