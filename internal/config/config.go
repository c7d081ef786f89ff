// Package config loads nftrecon settings from flags, the environment,
// .env files and an optional YAML config file, validates them, and turns
// them into a reconcile.Config.
package config

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/nftrecon/internal/sources/subgraph"
	"github.com/agentstation/nftrecon/pkg/constants"
	"github.com/agentstation/nftrecon/pkg/errors"
	"github.com/agentstation/nftrecon/pkg/reconcile"
)

// Config mirrors every setting. Keys are the mapstructure tags; the
// matching environment variable is the upper-cased key.
type Config struct {
	Mode string `mapstructure:"mode" validate:"oneof=subgraphs contract"`

	LeftSubgraphURL   string `mapstructure:"left_subgraph_url" validate:"omitempty,url"`
	LeftAPIKey        string `mapstructure:"left_api_key"`
	LeftAPIKeyHeader  string `mapstructure:"left_api_key_header" validate:"omitempty,headername"`
	RightSubgraphURL  string `mapstructure:"right_subgraph_url" validate:"omitempty,url"`
	RightAPIKey       string `mapstructure:"right_api_key"`
	RightAPIKeyHeader string `mapstructure:"right_api_key_header" validate:"omitempty,headername"`

	Entity            string        `mapstructure:"entity" validate:"graphqlname"`
	FieldID           string        `mapstructure:"field_id" validate:"graphqlname"`
	FieldName         string        `mapstructure:"field_name" validate:"graphqlname"`
	FieldArtistName   string        `mapstructure:"field_artist_name" validate:"graphqlname"`
	FieldEditionCount string        `mapstructure:"field_edition_count" validate:"graphqlname"`
	PageSize          int           `mapstructure:"page_size" validate:"min=1,max=1000"`
	MaxRecords        int           `mapstructure:"max_records" validate:"min=1"`
	SortField         string        `mapstructure:"sort_field" validate:"graphqlname"`
	SortDirection     string        `mapstructure:"sort_direction" validate:"oneof=asc desc"`
	FetchDelay        time.Duration `mapstructure:"fetch_delay" validate:"gte=0"`

	RPCURL          string        `mapstructure:"rpc_url" validate:"omitempty,url"`
	ContractAddress string        `mapstructure:"contract_address" validate:"omitempty,eth_addr"`
	ContractABIFile string        `mapstructure:"contract_abi_file" validate:"omitempty,file"`
	ContractMethod  string        `mapstructure:"contract_method" validate:"graphqlname"`
	ContractDelay   time.Duration `mapstructure:"contract_delay" validate:"gte=0"`
	ContractSide    string        `mapstructure:"contract_side" validate:"oneof=left right"`

	OutputDir string `mapstructure:"output_dir" validate:"required"`
	Force     bool   `mapstructure:"force"`
	DryRun    bool   `mapstructure:"dry_run"`

	LogLevel  string `mapstructure:"log_level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic disabled"`
	LogFormat string `mapstructure:"log_format" validate:"omitempty,oneof=auto json console text"`
	LogOutput string `mapstructure:"log_output"`

	// ConfigFile is the config file that was read, if any.
	ConfigFile string `mapstructure:"-"`
}

var (
	validate    *validator.Validate
	graphqlName = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)
	headerName  = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("graphqlname", func(fl validator.FieldLevel) bool {
		return graphqlName.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("headername", func(fl validator.FieldLevel) bool {
		return headerName.MatchString(fl.Field().String())
	})
}

// SetDefaults registers every key with its default so that environment
// variables are seen by Unmarshal.
func SetDefaults(v *viper.Viper) {
	fields := subgraph.DefaultFields()

	v.SetDefault("mode", string(reconcile.ModeSubgraphs))
	v.SetDefault("left_subgraph_url", "")
	v.SetDefault("left_api_key", "")
	v.SetDefault("left_api_key_header", "")
	v.SetDefault("right_subgraph_url", "")
	v.SetDefault("right_api_key", "")
	v.SetDefault("right_api_key_header", "")
	v.SetDefault("entity", constants.DefaultEntity)
	v.SetDefault("field_id", fields.ID)
	v.SetDefault("field_name", fields.Name)
	v.SetDefault("field_artist_name", fields.ArtistName)
	v.SetDefault("field_edition_count", fields.EditionCount)
	v.SetDefault("page_size", constants.DefaultPageSize)
	v.SetDefault("max_records", constants.DefaultMaxRecords)
	v.SetDefault("sort_field", constants.DefaultSortField)
	v.SetDefault("sort_direction", constants.DefaultSortDirection)
	v.SetDefault("fetch_delay", constants.DefaultFetchDelay)
	v.SetDefault("rpc_url", "")
	v.SetDefault("contract_address", "")
	v.SetDefault("contract_abi_file", "")
	v.SetDefault("contract_method", constants.DefaultContractMethod)
	v.SetDefault("contract_delay", constants.DefaultContractDelay)
	v.SetDefault("contract_side", constants.SideLeft)
	v.SetDefault("output_dir", constants.DefaultOutputDir)
	v.SetDefault("force", false)
	v.SetDefault("dry_run", false)
	v.SetDefault("log_level", "")
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// Load reads settings in order of precedence:
//  1. Flags bound to v by the caller
//  2. Environment variables
//  3. .env and .env.local
//  4. Config file (configFile, or .nftrecon.yaml in the working or home directory)
//  5. Defaults
func Load(v *viper.Viper, configFile string) (*Config, error) {
	LoadEnvFiles()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config file", fmt.Sprintf("reading %s", configFile), err)
		}
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(constants.ConfigFileName)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("config file", "reading config", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewConfigError("config", "decoding settings", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every value against its constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.NewConfigError("config", err.Error(), err)
	}
	problems := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		problems[i] = describe(fe)
	}
	return errors.NewConfigError("config", strings.Join(problems, "; "), err)
}

// Reconcile converts the settings into the driver configuration. The ABI
// file, when set, is read here.
func (c *Config) Reconcile() (reconcile.Config, error) {
	var abiJSON string
	if c.ContractABIFile != "" {
		data, err := os.ReadFile(c.ContractABIFile)
		if err != nil {
			return reconcile.Config{}, errors.WrapIO("read", c.ContractABIFile, err)
		}
		abiJSON = string(data)
	}

	return reconcile.Config{
		Mode:  reconcile.Mode(c.Mode),
		Left:  reconcile.SourceConfig{URL: c.LeftSubgraphURL, APIKey: c.LeftAPIKey, APIKeyHeader: c.LeftAPIKeyHeader},
		Right: reconcile.SourceConfig{URL: c.RightSubgraphURL, APIKey: c.RightAPIKey, APIKeyHeader: c.RightAPIKeyHeader},
		Fetch: reconcile.FetchConfig{
			Entity: c.Entity,
			Fields: subgraph.Fields{
				ID:           c.FieldID,
				Name:         c.FieldName,
				ArtistName:   c.FieldArtistName,
				EditionCount: c.FieldEditionCount,
			},
			PageSize:      c.PageSize,
			MaxRecords:    c.MaxRecords,
			SortField:     c.SortField,
			SortDirection: c.SortDirection,
			Delay:         c.FetchDelay,
		},
		Contract: reconcile.ContractConfig{
			RPCURL:  c.RPCURL,
			Address: c.ContractAddress,
			ABI:     abiJSON,
			Method:  c.ContractMethod,
			Delay:   c.ContractDelay,
			Side:    c.ContractSide,
		},
		OutputDir: c.OutputDir,
		Force:     c.Force,
		DryRun:    c.DryRun,
	}, nil
}

// LoadEnvFiles loads .env then .env.local. Variables already set in the
// process environment are kept.
func LoadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "url":
		return fmt.Sprintf("%s must be a URL", fe.Field())
	case "eth_addr":
		return fmt.Sprintf("%s must be a 0x-prefixed 20-byte hex address", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "graphqlname":
		return fmt.Sprintf("%s must be a GraphQL name", fe.Field())
	case "headername":
		return fmt.Sprintf("%s must be an HTTP header name", fe.Field())
	case "file":
		return fmt.Sprintf("%s must be an existing file", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
