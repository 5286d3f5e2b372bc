package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/compose-network/bodycodec/server/api"
	"github.com/compose-network/bodycodec/x/codec"
)

// Config holds the complete application configuration
type Config struct {
	API     api.Config    `mapstructure:"api"     yaml:"api"`
	Codec   CodecConfig   `mapstructure:"codec"   yaml:"codec"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Log     LogConfig     `mapstructure:"log"     yaml:"log"`
}

// CodecConfig selects and tunes the codecs served by the gateway
type CodecConfig struct {
	// Default names the serializer used when a request names none, e.g. "gzip-json"
	Default   string `mapstructure:"default"    yaml:"default"    env:"CODEC_DEFAULT"`
	GzipLevel int    `mapstructure:"gzip_level" yaml:"gzip_level" env:"CODEC_GZIP_LEVEL"`
	// Trace logs every codec event at debug level
	Trace                  bool `mapstructure:"trace"                     yaml:"trace"                     env:"CODEC_TRACE"`
	EnableProtobuf         bool `mapstructure:"enable_protobuf"           yaml:"enable_protobuf"           env:"CODEC_ENABLE_PROTOBUF"`
	ProtobufMaxMessageSize int  `mapstructure:"protobuf_max_message_size" yaml:"protobuf_max_message_size" env:"CODEC_PROTOBUF_MAX_MESSAGE_SIZE"` //nolint: lll // tags

	JSON   JSONConfig   `mapstructure:"json"   yaml:"json"`
	XML    XMLConfig    `mapstructure:"xml"    yaml:"xml"`
	BSON   BSONConfig   `mapstructure:"bson"   yaml:"bson"`
	Binary BinaryConfig `mapstructure:"binary" yaml:"binary"`
}

// JSONConfig tunes the json and gzip-json codecs
type JSONConfig struct {
	Indent                string `mapstructure:"indent"                  yaml:"indent"                  env:"CODEC_JSON_INDENT"`
	EscapeHTML            bool   `mapstructure:"escape_html"             yaml:"escape_html"             env:"CODEC_JSON_ESCAPE_HTML"`
	UseNumber             bool   `mapstructure:"use_number"              yaml:"use_number"              env:"CODEC_JSON_USE_NUMBER"`
	DisallowUnknownFields bool   `mapstructure:"disallow_unknown_fields" yaml:"disallow_unknown_fields" env:"CODEC_JSON_DISALLOW_UNKNOWN_FIELDS"` //nolint: lll // tags
}

// XMLConfig tunes the xml and gzip-xml codecs
type XMLConfig struct {
	Indent      string `mapstructure:"indent"      yaml:"indent"      env:"CODEC_XML_INDENT"`
	Declaration bool   `mapstructure:"declaration" yaml:"declaration" env:"CODEC_XML_DECLARATION"`
	Lenient     bool   `mapstructure:"lenient"     yaml:"lenient"     env:"CODEC_XML_LENIENT"`
}

// BSONConfig tunes the bson and gzip-bson codecs
type BSONConfig struct {
	JSONStructTags bool `mapstructure:"json_struct_tags" yaml:"json_struct_tags" env:"CODEC_BSON_JSON_STRUCT_TAGS"`
	OmitZeroStruct bool `mapstructure:"omit_zero_struct" yaml:"omit_zero_struct" env:"CODEC_BSON_OMIT_ZERO_STRUCT"`
	DocumentM      bool `mapstructure:"document_m"       yaml:"document_m"       env:"CODEC_BSON_DOCUMENT_M"`
	LocalTimeZone  bool `mapstructure:"local_time_zone"  yaml:"local_time_zone"  env:"CODEC_BSON_LOCAL_TIME_ZONE"`
}

// BinaryConfig tunes the binary codec
type BinaryConfig struct {
	StructTag             string `mapstructure:"struct_tag"              yaml:"struct_tag"              env:"CODEC_BINARY_STRUCT_TAG"`
	DisallowUnknownFields bool   `mapstructure:"disallow_unknown_fields" yaml:"disallow_unknown_fields" env:"CODEC_BINARY_DISALLOW_UNKNOWN_FIELDS"` //nolint: lll // tags
	LocalTime             bool   `mapstructure:"local_time"              yaml:"local_time"              env:"CODEC_BINARY_LOCAL_TIME"`
}

// Settings converts the configuration into codec construction settings
func (c CodecConfig) Settings() codec.Settings {
	s := codec.Settings{
		GzipLevel:              c.GzipLevel,
		ProtobufMaxMessageSize: c.ProtobufMaxMessageSize,
	}

	if c.JSON.Indent != "" {
		s.JSON = append(s.JSON, codec.WithJSONIndent("", c.JSON.Indent))
	}
	if !c.JSON.EscapeHTML {
		s.JSON = append(s.JSON, codec.WithoutJSONHTMLEscape())
	}
	if c.JSON.UseNumber {
		s.JSON = append(s.JSON, codec.WithJSONUseNumber())
	}
	if c.JSON.DisallowUnknownFields {
		s.JSON = append(s.JSON, codec.WithJSONDisallowUnknownFields())
	}

	if c.XML.Indent != "" {
		s.XML = append(s.XML, codec.WithXMLIndent("", c.XML.Indent))
	}
	if !c.XML.Declaration {
		s.XML = append(s.XML, codec.WithoutXMLDeclaration())
	}
	if c.XML.Lenient {
		s.XML = append(s.XML, codec.WithXMLLenient())
	}

	if c.BSON.JSONStructTags {
		s.BSON = append(s.BSON, codec.WithBSONJSONStructTags())
	}
	if c.BSON.OmitZeroStruct {
		s.BSON = append(s.BSON, codec.WithBSONOmitZeroStruct())
	}
	if c.BSON.DocumentM {
		s.BSON = append(s.BSON, codec.WithBSONDocumentM())
	}
	if c.BSON.LocalTimeZone {
		s.BSON = append(s.BSON, codec.WithBSONLocalTimeZone())
	}

	if c.Binary.StructTag != "" {
		s.Binary = append(s.Binary, codec.WithBinaryStructTag(c.Binary.StructTag))
	}
	if c.Binary.DisallowUnknownFields {
		s.Binary = append(s.Binary, codec.WithBinaryDisallowUnknownFields())
	}
	if c.Binary.LocalTime {
		s.Binary = append(s.Binary, codec.WithBinaryLocalTime())
	}

	return s
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled" env:"METRICS_ENABLED"`
	Path    string `mapstructure:"path"    yaml:"path"    env:"METRICS_PATH"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  env:"LOG_LEVEL"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty" env:"LOG_PRETTY"`
}

// Load loads configuration from file and environment. An empty path skips
// the file and uses defaults plus environment overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Codec.Default = codec.NormalizeToken(cfg.Codec.Default)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.listen_addr", ":8081")
	v.SetDefault("api.read_header_timeout", "5s")
	v.SetDefault("api.read_timeout", "15s")
	v.SetDefault("api.write_timeout", "30s")
	v.SetDefault("api.idle_timeout", "120s")
	v.SetDefault("api.shutdown_timeout", "10s")
	v.SetDefault("api.max_header_bytes", 1048576)
	v.SetDefault("api.max_body_bytes", 4*1024*1024)
	v.SetDefault("api.enable_cors", false)

	v.SetDefault("codec.default", codec.NameBSON)
	v.SetDefault("codec.gzip_level", -1) // gzip.DefaultCompression
	v.SetDefault("codec.trace", false)
	v.SetDefault("codec.enable_protobuf", false)
	v.SetDefault("codec.protobuf_max_message_size", codec.DefaultMaxMessageSize)
	v.SetDefault("codec.json.indent", "")
	v.SetDefault("codec.json.escape_html", true)
	v.SetDefault("codec.json.use_number", false)
	v.SetDefault("codec.json.disallow_unknown_fields", false)
	v.SetDefault("codec.xml.indent", "")
	v.SetDefault("codec.xml.declaration", true)
	v.SetDefault("codec.xml.lenient", false)
	v.SetDefault("codec.bson.json_struct_tags", false)
	v.SetDefault("codec.bson.omit_zero_struct", false)
	v.SetDefault("codec.bson.document_m", false)
	v.SetDefault("codec.bson.local_time_zone", false)
	v.SetDefault("codec.binary.struct_tag", "")
	v.SetDefault("codec.binary.disallow_unknown_fields", false)
	v.SetDefault("codec.binary.local_time", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateCodec(); err != nil {
		return err
	}
	if err := c.validateMetrics(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAPI() error {
	if strings.TrimSpace(c.API.ListenAddr) == "" {
		return fmt.Errorf("api.listen_addr is required")
	}
	if c.API.ReadTimeout <= 0 {
		return fmt.Errorf("api.read_timeout must be positive")
	}
	if c.API.WriteTimeout <= 0 {
		return fmt.Errorf("api.write_timeout must be positive")
	}
	if c.API.MaxBodyBytes <= 0 {
		return fmt.Errorf("api.max_body_bytes must be positive, got %d", c.API.MaxBodyBytes)
	}
	return nil
}

func (c *Config) validateCodec() error {
	name := codec.NormalizeToken(c.Codec.Default)
	if _, err := codec.ByName(name); err != nil {
		return fmt.Errorf("codec.default: %w", err)
	}
	if name == codec.NameProtobuf && !c.Codec.EnableProtobuf {
		return fmt.Errorf("codec.default is protobuf but codec.enable_protobuf is false")
	}
	if _, err := codec.NewGzipLevel(codec.NewJSONCodec(), c.Codec.GzipLevel); err != nil {
		return fmt.Errorf("codec.gzip_level: %w", err)
	}
	if strings.TrimSpace(c.Codec.JSON.Indent) != "" {
		return fmt.Errorf("codec.json.indent must be whitespace, got %q", c.Codec.JSON.Indent)
	}
	if strings.TrimSpace(c.Codec.XML.Indent) != "" {
		return fmt.Errorf("codec.xml.indent must be whitespace, got %q", c.Codec.XML.Indent)
	}
	if c.Codec.EnableProtobuf && c.Codec.ProtobufMaxMessageSize <= 0 {
		return fmt.Errorf("codec.protobuf_max_message_size must be positive, got %d", c.Codec.ProtobufMaxMessageSize)
	}
	return nil
}

func (c *Config) validateMetrics() error {
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		API: api.DefaultConfig(),
		Codec: CodecConfig{
			Default:                codec.NameBSON,
			GzipLevel:              -1,
			ProtobufMaxMessageSize: codec.DefaultMaxMessageSize,
			JSON:                   JSONConfig{EscapeHTML: true},
			XML:                    XMLConfig{Declaration: true},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: false,
		},
	}
}

