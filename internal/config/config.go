// Package config contains utilities for loading configs
package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"

	"github.com/go-playground/validator/v10"
)

const (
	configFilePath     = "/data/kulinaria.yaml"
	appSecretBytes     = 32
	appSecretFilePerms = 0o600
)

const (
	EnvProd = "PROD"
	EnvDev  = "DEV"
)

// PaginationStyle selects how list endpoints interpret their query
// parameters.
type PaginationStyle string

const (
	// PaginationPage paginates with ?page= and ?limit= (page numbers).
	PaginationPage PaginationStyle = "page"
	// PaginationLimitOffset paginates with raw ?limit= and ?offset=.
	PaginationLimitOffset PaginationStyle = "limit-offset"
)

const (
	defaultPageSize = 10
	defaultLimit    = 100
)

type ImageStoreBackend string

const (
	ImageStoreLocal ImageStoreBackend = "local"
	ImageStoreS3    ImageStoreBackend = "s3"
)

type AppSecretValue string

func (a *AppSecretValue) Validate() error {
	if a == nil {
		return errors.New("secret should not be nil")
	}
	if len([]byte(*a)) < appSecretBytes {
		return errors.New("secret should be at least 32 bytes")
	}
	return nil
}

type fieldValidator interface {
	Validate() error
}

// validateFn dispatches to the field's own Validate method.
func validateFn(fl validator.FieldLevel) bool {
	if v, ok := fl.Field().Interface().(fieldValidator); ok {
		return v.Validate() == nil
	}
	if fl.Field().CanAddr() {
		if v, ok := fl.Field().Addr().Interface().(fieldValidator); ok {
			return v.Validate() == nil
		}
	}
	return false
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("validateFn", validateFn)
	return v
}

type AppSecret struct {
	Value   *AppSecretValue `yaml:"value" validate:"omitempty,validateFn"`
	Path    string          `yaml:"path" validate:"omitempty,filepath"`
	Version string          `yaml:"version"`
}

type Database struct {
	Port     uint16 `yaml:"port"`
	Host     string `yaml:"host" validate:"omitempty,hostname_rfc1123"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type Fileserver struct {
	Volume    string `yaml:"volume"`
	URLPrefix string `yaml:"url_prefix"`
}

type S3 struct {
	Endpoint  string `yaml:"endpoint" validate:"omitempty,hostname_port"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	URLPrefix string `yaml:"url_prefix"`
}

type ImageStore struct {
	Backend ImageStoreBackend `yaml:"backend" validate:"oneof=local s3"`
}

type Pagination struct {
	Style    PaginationStyle `yaml:"style" validate:"oneof=page limit-offset"`
	PageSize int32           `yaml:"page_size" validate:"gt=0"`
	Limit    int32           `yaml:"limit" validate:"gt=0"`
}

// Recipes bounds the numeric recipe fields. Values outside the range are
// rejected at validation time, not clamped.
type Recipes struct {
	MinCookingTime int32 `yaml:"min_cooking_time" validate:"gt=0"`
	MaxCookingTime int32 `yaml:"max_cooking_time" validate:"gtefield=MinCookingTime"`
	MinAmount      int32 `yaml:"min_amount" validate:"gt=0"`
	MaxAmount      int32 `yaml:"max_amount" validate:"gtefield=MinAmount"`
}

type Config struct {
	AppSecret  AppSecret  `yaml:"app_secret"`
	Fileserver Fileserver `yaml:"fileserver"`
	S3         S3         `yaml:"s3"`
	ImageStore ImageStore `yaml:"image_store"`
	Pagination Pagination `yaml:"pagination"`
	Recipes    Recipes    `yaml:"recipes"`
	Database   Database   `yaml:"database"`
	HostOrigin string     `yaml:"host_origin" validate:"url"`
	Port       uint16     `yaml:"port" validate:"gt=0"`
	Env        string     `yaml:"env" validate:"omitempty,oneof=DEV PROD"`
}

func newAppSecret() (string, error) {
	token := make([]byte, appSecretBytes)
	if _, err := rand.Reader.Read(token); err != nil {
		return "", fmt.Errorf("creating app secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(token), nil
}

func loadAppSecret(config *Config) error {
	if config.AppSecret.Value != nil {
		return nil
	}

	var secret string
	if f1, err := os.Lstat(config.AppSecret.Path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("checking secret path: %w", err)
		}

		file, err := os.OpenFile(config.AppSecret.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, appSecretFilePerms)
		if err != nil {
			return fmt.Errorf("creating secret file: %w", err)
		}
		defer func() { _ = file.Close() }()

		secret, err = newAppSecret()
		if err != nil {
			return fmt.Errorf("generating new app secret: %w", err)
		}

		if _, err := file.WriteString(secret); err != nil {
			return fmt.Errorf("writing secret file: %w", err)
		}
	} else {
		if f1.IsDir() {
			return fmt.Errorf("expected file, got directory at %q", config.AppSecret.Path)
		}
		data, err := os.ReadFile(config.AppSecret.Path)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		secret = string(data)
	}
	val := AppSecretValue(secret)
	config.AppSecret.Value = &val
	return nil
}

func loadWithDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseUint16(key, raw string) (uint16, error) {
	v, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s (%q): %w", key, raw, err)
	}
	return uint16(v), nil
}

func parseInt32(key, raw string) (int32, error) {
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s (%q): %w", key, raw, err)
	}
	return int32(v), nil
}

func loadConfigFromEnv() (Config, error) {
	conf := Config{
		HostOrigin: loadWithDefault("HOST_ORIGIN", "http://localhost:8080"),
		Env:        loadWithDefault("ENV", EnvDev),
	}

	var err error
	if conf.Port, err = parseUint16("PORT", loadWithDefault("PORT", "8080")); err != nil {
		return conf, err
	}

	// AppSecret
	appSecretValue := AppSecretValue(loadWithDefault("APP_SECRET", ""))
	conf.AppSecret = AppSecret{
		Path:    loadWithDefault("APP_SECRET_PATH", "/data/secret"),
		Version: loadWithDefault("APP_SECRET_VERSION", "1"),
	}
	if appSecretValue != "" {
		conf.AppSecret.Value = &appSecretValue
	}

	// Database
	conf.Database = Database{
		Host:     loadWithDefault("DATABASE_HOST", "localhost"),
		Database: loadWithDefault("DATABASE", ""),
		User:     loadWithDefault("DATABASE_USER", ""),
		Password: loadWithDefault("DATABASE_PASSWORD", ""),
	}
	if conf.Database.Port, err = parseUint16("DATABASE_PORT", loadWithDefault("DATABASE_PORT", "5432")); err != nil {
		return conf, err
	}

	// Fileserver
	conf.Fileserver = Fileserver{
		Volume:    loadWithDefault("FILESERVER_VOLUME", "/data/files"),
		URLPrefix: loadWithDefault("FILESERVER_URL_PREFIX", "/files"),
	}

	// S3
	conf.S3 = S3{
		Endpoint:  loadWithDefault("S3_ENDPOINT", ""),
		AccessKey: loadWithDefault("S3_ACCESS_KEY", ""),
		SecretKey: loadWithDefault("S3_SECRET_KEY", ""),
		Bucket:    loadWithDefault("S3_BUCKET", ""),
		URLPrefix: loadWithDefault("S3_URL_PREFIX", ""),
	}
	if b, err := strconv.ParseBool(loadWithDefault("S3_USE_SSL", "false")); err != nil {
		return conf, fmt.Errorf("invalid S3_USE_SSL: %w", err)
	} else {
		conf.S3.UseSSL = b
	}

	conf.ImageStore = ImageStore{
		Backend: ImageStoreBackend(loadWithDefault("IMAGE_STORE", string(ImageStoreLocal))),
	}

	// Pagination
	conf.Pagination = Pagination{
		Style: PaginationStyle(loadWithDefault("PAGINATION_STYLE", string(PaginationPage))),
	}
	if conf.Pagination.PageSize, err = parseInt32("PAGE_SIZE",
		loadWithDefault("PAGE_SIZE", strconv.Itoa(defaultPageSize))); err != nil {
		return conf, err
	}
	if conf.Pagination.Limit, err = parseInt32("DEFAULT_LIMIT",
		loadWithDefault("DEFAULT_LIMIT", strconv.Itoa(defaultLimit))); err != nil {
		return conf, err
	}

	// Recipe bounds
	if conf.Recipes.MinCookingTime, err = parseInt32("MIN_COOKING_TIME",
		loadWithDefault("MIN_COOKING_TIME", "1")); err != nil {
		return conf, err
	}
	if conf.Recipes.MaxCookingTime, err = parseInt32("MAX_COOKING_TIME",
		loadWithDefault("MAX_COOKING_TIME", "32000")); err != nil {
		return conf, err
	}
	if conf.Recipes.MinAmount, err = parseInt32("MIN_AMOUNT",
		loadWithDefault("MIN_AMOUNT", "1")); err != nil {
		return conf, err
	}
	if conf.Recipes.MaxAmount, err = parseInt32("MAX_AMOUNT",
		loadWithDefault("MAX_AMOUNT", "32000")); err != nil {
		return conf, err
	}

	if err := newValidator().Struct(conf); err != nil {
		return conf, err
	}

	if err := loadAppSecret(&conf); err != nil {
		return conf, fmt.Errorf("loading app secret: %w", err)
	}

	return conf, nil
}

func loadConfigFromFile(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(contents, &config); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Set defaults
	if config.AppSecret.Path == "" {
		config.AppSecret.Path = "/data/secret"
	}
	if config.AppSecret.Version == "" {
		config.AppSecret.Version = "1"
	}
	if config.Env == "" {
		config.Env = EnvDev
	}
	if config.HostOrigin == "" {
		config.HostOrigin = "http://localhost:8080"
	}
	if config.Port == 0 {
		config.Port = 8080
	}
	if config.Database.Host == "" {
		config.Database.Host = "localhost"
	}
	if config.Database.Port == 0 {
		config.Database.Port = 5432
	}
	if config.Fileserver.Volume == "" {
		config.Fileserver.Volume = "/data/files"
	}
	if config.Fileserver.URLPrefix == "" {
		config.Fileserver.URLPrefix = "/files"
	}
	if config.ImageStore.Backend == "" {
		config.ImageStore.Backend = ImageStoreLocal
	}
	if config.Pagination.Style == "" {
		config.Pagination.Style = PaginationPage
	}
	if config.Pagination.PageSize == 0 {
		config.Pagination.PageSize = defaultPageSize
	}
	if config.Pagination.Limit == 0 {
		config.Pagination.Limit = defaultLimit
	}
	if config.Recipes.MinCookingTime == 0 {
		config.Recipes.MinCookingTime = 1
	}
	if config.Recipes.MaxCookingTime == 0 {
		config.Recipes.MaxCookingTime = 32000
	}
	if config.Recipes.MinAmount == 0 {
		config.Recipes.MinAmount = 1
	}
	if config.Recipes.MaxAmount == 0 {
		config.Recipes.MaxAmount = 32000
	}

	if err := newValidator().Struct(config); err != nil {
		return Config{}, err
	}

	if err := loadAppSecret(&config); err != nil {
		return Config{}, fmt.Errorf("loading app secret: %w", err)
	}

	return config, nil
}

func configFileExists(path string) bool {
	f, err := os.Lstat(path)
	if err != nil {
		return false
	}

	return !f.IsDir()
}

func LoadConfig() (Config, error) {
	if configFileExists(configFilePath) {
		return loadConfigFromFile(configFilePath)
	}

	return loadConfigFromEnv()
}
